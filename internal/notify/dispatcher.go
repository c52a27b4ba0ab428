package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/harambee/studentliving/internal/apiserver/database"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/i18n"
	"github.com/harambee/studentliving/pkg/metrics"
	"github.com/harambee/studentliving/pkg/trace"
	"github.com/ifuryst/lol"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// UserLookup resolves recipients
type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*database.User, error)
}

// Dispatcher fans a notification out to the configured channels
type Dispatcher struct {
	logger  *zap.Logger
	users   UserLookup
	text    *i18n.I18n
	metrics *metrics.Metrics
	timeout time.Duration
	senders []Sender
}

// NewDispatcher creates a dispatcher over senders. Each Notify call is bounded by timeout when positive.
func NewDispatcher(logger *zap.Logger, users UserLookup, text *i18n.I18n, m *metrics.Metrics, timeout time.Duration, senders ...Sender) *Dispatcher {
	return &Dispatcher{
		logger:  logger.Named("notify"),
		users:   users,
		text:    text,
		metrics: m,
		timeout: timeout,
		senders: senders,
	}
}

// Channels lists the configured channels
func (d *Dispatcher) Channels() []Channel {
	out := make([]Channel, 0, len(d.senders))
	for _, s := range d.senders {
		out = append(out, s.Channel())
	}
	return out
}

// Notify renders msg in the recipient's language and sends it over the hinted channels,
// or over every configured channel when no hint is given. It fails only when no channel succeeded.
func (d *Dispatcher) Notify(ctx context.Context, userID uint, msg Message, hints ...Channel) (Result, error) {
	scope := trace.Tracer(cnst.TraceNotify).Start(ctx, cnst.SpanNotifyDispatch)
	defer scope.End()
	scope.WithAttrs(attribute.Int64("recipient.id", int64(userID)), attribute.String("notify.event", string(msg.Event)))
	ctx = scope.Ctx

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	var res Result
	user, err := d.users.GetUserByID(ctx, userID)
	if err != nil {
		scope.Fail(err)
		return res, fmt.Errorf("recipient %d: %w", userID, err)
	}

	subject, body := d.text.Event(msg.Event, user.Locale, msg.Data)
	rendered := Rendered{Event: msg.Event, Subject: subject, Body: body}

	var errs []error
	for _, ch := range d.selected(hints) {
		s := d.sender(ch)
		if s == nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch, cnst.ErrChannelDisabled))
			continue
		}
		start := time.Now()
		err := s.Send(ctx, user, rendered)
		d.metrics.Delivery(string(ch), start, err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch, err))
			continue
		}
		res.mark(ch)
	}

	if !res.Delivered() {
		if len(errs) == 0 {
			errs = append(errs, cnst.ErrNoChannel)
		}
		err := errors.Join(errs...)
		scope.Fail(err)
		return res, err
	}
	if len(errs) > 0 {
		d.logger.Warn("notification partially delivered",
			zap.Uint("user_id", userID),
			zap.String("event", string(msg.Event)),
			zap.Error(errors.Join(errs...)))
	}
	return res, nil
}

func (d *Dispatcher) selected(hints []Channel) []Channel {
	if len(hints) > 0 {
		return lol.UniqSlice(hints)
	}
	return d.Channels()
}

func (d *Dispatcher) sender(ch Channel) Sender {
	for _, s := range d.senders {
		if s.Channel() == ch {
			return s
		}
	}
	return nil
}

// Close releases senders holding connections
func (d *Dispatcher) Close() error {
	var errs []error
	for _, s := range d.senders {
		if c, ok := s.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
