package notify

import (
	"context"
	"time"

	"github.com/harambee/studentliving/internal/common/config"
	"github.com/harambee/studentliving/internal/i18n"
	"github.com/harambee/studentliving/pkg/metrics"
	"go.uber.org/zap"
)

// Store is what the dispatcher needs from the database
type Store interface {
	UserLookup
	InboxStore
}

// NewFromConfig wires the channels enabled in cfg
func NewFromConfig(ctx context.Context, logger *zap.Logger, cfg config.NotifierConfig, store Store,
	text *i18n.I18n, m *metrics.Metrics, timeout time.Duration) (*Dispatcher, error) {
	var senders []Sender
	if cfg.Inbox.Enabled {
		senders = append(senders, NewInbox(store))
	}
	if cfg.Email.Enabled {
		senders = append(senders, NewEmail(cfg.Email))
	}
	if cfg.SMS.Enabled {
		senders = append(senders, NewSMS(cfg.SMS))
	}
	if cfg.Redis.Enabled {
		stream, err := NewStream(ctx, logger, cfg.Redis)
		if err != nil {
			return nil, err
		}
		senders = append(senders, stream)
	}
	if len(senders) == 0 {
		logger.Warn("no notification channel is enabled, notifications will be reported as failed")
	}
	return NewDispatcher(logger, store, text, m, timeout, senders...), nil
}
