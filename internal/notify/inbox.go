package notify

import (
	"context"

	"github.com/harambee/studentliving/internal/apiserver/database"
)

// InboxStore persists notifications
type InboxStore interface {
	CreateNotification(ctx context.Context, n *database.Notification) error
}

// Inbox keeps notifications in the database for the in-app inbox
type Inbox struct {
	store InboxStore
}

func NewInbox(store InboxStore) *Inbox {
	return &Inbox{store: store}
}

func (i *Inbox) Channel() Channel { return ChannelInbox }

func (i *Inbox) Send(ctx context.Context, to *database.User, msg Rendered) error {
	return i.store.CreateNotification(ctx, &database.Notification{
		UserID:  to.ID,
		Event:   string(msg.Event),
		Subject: msg.Subject,
		Message: msg.Body,
	})
}
