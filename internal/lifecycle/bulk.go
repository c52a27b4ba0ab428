package lifecycle

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/harambee/studentliving/internal/access"
	"github.com/harambee/studentliving/internal/apiserver/database"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/errorx"
	"github.com/harambee/studentliving/internal/notify"
	"go.opentelemetry.io/otel/attribute"
)

// Target selects the recipients of a bulk notification
type Target string

const (
	TargetAll           Target = "all"
	TargetAccommodation Target = "accommodation"
	TargetSpecific      Target = "specific"
)

// BulkInput is an announcement to a group of students
type BulkInput struct {
	Target          Target
	AccommodationID uint
	StudentIDs      []uint
	Subject         string
	Message         string
	Channels        []notify.Channel
}

// BulkResult counts per-recipient outcomes
type BulkResult struct {
	Recipients int                          `json:"recipients"`
	Succeeded  int                          `json:"succeeded"`
	Failed     int                          `json:"failed"`
	Failures   []errorx.NotificationFailure `json:"failures,omitempty"`
}

// NotifyStudents sends an announcement. Everyone is reachable by master admins only;
// admins reach students holding a current lease in an accommodation assigned to them.
func (s *Service) NotifyStudents(ctx context.Context, p access.Principal, in BulkInput) (res BulkResult, err error) {
	o := s.start(ctx, cnst.SpanBulkNotify, "notification", p)
	defer o.done(&err)
	ctx = o.Ctx

	const action = "send notifications"
	if !p.IsAdmin() {
		return res, errorx.Forbidden(action, "administrator role required")
	}
	today := s.today()

	var recipients []uint
	switch in.Target {
	case TargetAll:
		if !p.IsMaster() {
			return res, errorx.Forbidden(action, "only the master administrator can notify every student")
		}
	case TargetAccommodation:
		if err := s.access.Authorize(ctx, p, in.AccommodationID, action); err != nil {
			return res, err
		}
	case TargetSpecific:
		if !p.IsMaster() {
			scope, err := s.access.Scope(ctx, p)
			if err != nil {
				return res, err
			}
			reachable, err := s.db.ActiveLeaseStudentIDs(ctx, scope, today)
			if err != nil {
				return res, err
			}
			for _, id := range in.StudentIDs {
				if !slices.Contains(reachable, id) {
					return res, errorx.Forbidden(action, fmt.Sprintf("student %d has no current lease in your accommodations", id))
				}
			}
		}
	}

	var v errorx.Violations
	v.Check(strings.TrimSpace(in.Subject) != "", "subject is required")
	v.Check(strings.TrimSpace(in.Message) != "", "message is required")
	v.Check(len(in.Channels) > 0, cnst.ErrNoChannel.Error())
	switch in.Target {
	case TargetAll:
	case TargetAccommodation:
		v.Check(in.AccommodationID != 0, "accommodation is required")
	case TargetSpecific:
		v.Check(len(in.StudentIDs) > 0, "at least one student is required")
	default:
		v.Add("target must be one of all, accommodation, specific")
	}
	if err := v.Err(); err != nil {
		return res, err
	}

	switch in.Target {
	case TargetAll:
		students, err := s.db.ListUsers(ctx, cnst.RoleStudent)
		if err != nil {
			return res, err
		}
		for _, u := range students {
			if u.IsActive {
				recipients = append(recipients, u.ID)
			}
		}
	case TargetAccommodation:
		recipients, err = s.db.ActiveLeaseStudentIDs(ctx, database.Scope{
			Restricted: true, AccommodationIDs: []uint{in.AccommodationID},
		}, today)
		if err != nil {
			return res, err
		}
	case TargetSpecific:
		users, err := s.db.GetUsersByIDs(ctx, unique(in.StudentIDs))
		if err != nil {
			return res, err
		}
		for _, u := range users {
			if u.Role == cnst.RoleStudent && u.IsActive {
				recipients = append(recipients, u.ID)
			}
		}
	}
	recipients = unique(recipients)
	if len(recipients) == 0 {
		return res, errorx.Invalid(cnst.ErrNoRecipients.Error())
	}
	o.WithAttrs(attribute.Int("notify.recipients", len(recipients)))

	msg := notify.Message{
		Event: cnst.EventAnnouncement,
		Data:  map[string]any{"Subject": in.Subject, "Message": in.Message},
	}
	res.Recipients = len(recipients)
	for _, id := range recipients {
		if _, err := s.notifier.Notify(ctx, id, msg, in.Channels...); err != nil {
			res.Failed++
			res.Failures = append(res.Failures, errorx.NotificationFailure{
				RecipientID: id, Event: string(msg.Event), Reason: err.Error(),
			})
			continue
		}
		res.Succeeded++
	}
	return res, nil
}
