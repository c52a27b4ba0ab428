package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/harambee/studentliving/internal/access"
	"github.com/harambee/studentliving/internal/apiserver/database"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/errorx"
	"github.com/harambee/studentliving/internal/document"
	"github.com/harambee/studentliving/internal/notify"
	"github.com/harambee/studentliving/pkg/metrics"
	"github.com/harambee/studentliving/pkg/trace"
	"github.com/ifuryst/lol"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Renderer produces the stored document of a lease or invoice
type Renderer interface {
	Render(ctx context.Context, kind document.Kind, id uint, data any) (string, error)
}

// Result is the outcome of a committed operation. Warnings list notifications
// that could not be delivered; they never undo the change.
type Result[T any] struct {
	Entity   T                            `json:"entity"`
	Warnings []errorx.NotificationFailure `json:"warnings,omitempty"`
}

// Service runs every lifecycle transition and directory operation
type Service struct {
	db       database.Database
	access   *access.Resolver
	notifier notify.Notifier
	docs     Renderer
	metrics  *metrics.Metrics
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(logger *zap.Logger, db database.Database, notifier notify.Notifier, docs Renderer, opts ...Option) *Service {
	s := &Service{
		db:       db,
		access:   access.NewResolver(db),
		notifier: notifier,
		docs:     docs,
		logger:   logger.Named("lifecycle"),
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Access exposes the scope resolver used by the service
func (s *Service) Access() *access.Resolver { return s.access }

func (s *Service) today() time.Time { return database.Day(s.now()) }

// op wraps one traced operation
type op struct {
	*trace.SpanScope
	s      *Service
	entity string
}

func (s *Service) start(ctx context.Context, span, entity string, p access.Principal) *op {
	sc := trace.Tracer(cnst.TraceLifecycle).Start(ctx, span)
	sc.WithAttrs(
		attribute.Int64(cnst.AttrActorID, int64(p.UserID)),
		attribute.String(cnst.AttrActorRole, string(p.Role)),
	)
	return &op{SpanScope: sc, s: s, entity: entity}
}

// done ends the span and counts refusals; DependencyFailure is a committed change and is not a refusal
func (o *op) done(errp *error) {
	defer o.End()
	err := *errp
	if err == nil {
		return
	}
	o.Fail(err)
	kind := errorx.KindOf(err)
	o.WithAttrs(attribute.String(cnst.AttrErrorReason, string(kind)))
	if kind != errorx.KindDependency {
		o.s.metrics.Rejected(o.entity, string(kind))
	}
}

func (o *op) target(accommodationID, entityID uint) {
	o.WithAttrs(
		attribute.Int64(cnst.AttrAccommodationID, int64(accommodationID)),
		attribute.Int64(cnst.AttrEntityID, int64(entityID)),
	)
}

func (o *op) transition(from, to string) {
	o.WithAttrs(attribute.String(cnst.AttrTransitionFrom, from), attribute.String(cnst.AttrTransitionTo, to))
	o.s.metrics.Transition(o.entity, from, to)
}

// announce sends msg to each recipient and collects failures as warnings
func (s *Service) announce(ctx context.Context, warnings *[]errorx.NotificationFailure, msg notify.Message, recipients ...uint) {
	for _, id := range unique(recipients) {
		if _, err := s.notifier.Notify(ctx, id, msg); err != nil {
			s.logger.Warn("notification not delivered",
				zap.Uint("user_id", id),
				zap.String("event", string(msg.Event)),
				zap.Error(err))
			*warnings = append(*warnings, errorx.NotificationFailure{
				RecipientID: id,
				Event:       string(msg.Event),
				Reason:      err.Error(),
			})
		}
	}
}

// adminsOf returns the admins assigned to the accommodation
func (s *Service) adminsOf(ctx context.Context, accommodationID uint, withMasters bool) ([]uint, error) {
	ids, err := s.db.ListAccommodationAdminIDs(ctx, accommodationID)
	if err != nil {
		return nil, err
	}
	if withMasters {
		masters, err := s.db.ListUsers(ctx, cnst.RoleMasterAdmin)
		if err != nil {
			return nil, err
		}
		for _, m := range masters {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

// authorizeView lets admins in scope and the owning student read an entity
func (s *Service) authorizeView(ctx context.Context, p access.Principal, accommodationID, studentID uint, action string) error {
	if p.IsStudent() {
		if studentID != p.UserID {
			return errorx.Forbidden(action, "")
		}
		return nil
	}
	return s.access.Authorize(ctx, p, accommodationID, action)
}

func (s *Service) dependencyFailure(entity string, id uint, err error) error {
	return &errorx.DependencyFailure{Dependency: "document renderer", Entity: entity, EntityID: id, Err: err}
}

// unique drops zero IDs and repeats
func unique(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != 0 {
			out = append(out, id)
		}
	}
	return lol.UniqSlice(out)
}

func money(v float64) string { return fmt.Sprintf("%.2f", v) }

func date(t time.Time) string { return t.Format(time.DateOnly) }
