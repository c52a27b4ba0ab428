package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/harambee/studentliving/internal/apiserver/database"
	"github.com/harambee/studentliving/internal/common/cnst"
)

// Channel is a notification delivery channel
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelInbox Channel = "inbox"
	ChannelPush  Channel = "push"
)

// ParseChannel parses a channel name; "in_app" and "system" are accepted for the inbox
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "email":
		return ChannelEmail, nil
	case "sms":
		return ChannelSMS, nil
	case "inbox", "in_app", "system":
		return ChannelInbox, nil
	case "push":
		return ChannelPush, nil
	}
	return "", fmt.Errorf("unknown notification channel %q", s)
}

// Message is an event to announce to one recipient; Data fills the event's text template
type Message struct {
	Event cnst.Event
	Data  map[string]any
}

// Rendered is a message localized for its recipient
type Rendered struct {
	Event   cnst.Event
	Subject string
	Body    string
}

// Result reports which channels accepted the notification
type Result struct {
	EmailSent bool `json:"emailSent"`
	SMSSent   bool `json:"smsSent"`
	Persisted bool `json:"persisted"`
	Published bool `json:"published"`
}

// Delivered reports whether any channel succeeded
func (r Result) Delivered() bool {
	return r.EmailSent || r.SMSSent || r.Persisted || r.Published
}

func (r *Result) mark(ch Channel) {
	switch ch {
	case ChannelEmail:
		r.EmailSent = true
	case ChannelSMS:
		r.SMSSent = true
	case ChannelInbox:
		r.Persisted = true
	case ChannelPush:
		r.Published = true
	}
}

// Sender delivers a rendered message over one channel
type Sender interface {
	Channel() Channel
	Send(ctx context.Context, to *database.User, msg Rendered) error
}

// Notifier is what lifecycles use to announce transitions
type Notifier interface {
	Notify(ctx context.Context, userID uint, msg Message, hints ...Channel) (Result, error)
}
