package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/harambee/studentliving/internal/access"
	"github.com/harambee/studentliving/internal/apiserver/database"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/errorx"
	"github.com/harambee/studentliving/internal/document"
	"github.com/harambee/studentliving/internal/notify"
)

const entityLease = "lease"

// LeaseView is a lease with its state derived for the day it was read
type LeaseView struct {
	*database.Lease
	State cnst.LeaseState `json:"state"`
}

func (s *Service) leaseView(l *database.Lease) *LeaseView {
	return &LeaseView{Lease: l, State: l.State(s.now())}
}

// CreateLeaseInput describes a new lease. ApplicationID optionally links the
// application the lease fulfils.
type CreateLeaseInput struct {
	StudentID       uint
	AccommodationID uint
	StartDate       time.Time
	EndDate         time.Time
	MonthlyRent     float64
	SecurityDeposit float64
	ApplicationID   *uint
}

// CreateLease persists a lease, renders its document and notifies the student.
// The first lease for an approved application takes the room reserved at
// approval; any other lease reserves a room itself.
func (s *Service) CreateLease(ctx context.Context, p access.Principal, in CreateLeaseInput) (res Result[*LeaseView], err error) {
	o := s.start(ctx, cnst.SpanLeaseCreate, entityLease, p)
	defer o.done(&err)
	ctx = o.Ctx
	o.target(in.AccommodationID, 0)

	const action = "create lease"
	if err := s.access.Authorize(ctx, p, in.AccommodationID, action); err != nil {
		return res, err
	}
	acc, err := s.db.GetAccommodation(ctx, in.AccommodationID)
	if err != nil {
		return res, access.Missing(p, err, "accommodation", in.AccommodationID, action)
	}

	var v errorx.Violations
	start, end := database.Day(in.StartDate), database.Day(in.EndDate)
	v.Check(!in.StartDate.IsZero(), "start date is required")
	v.Check(!in.EndDate.IsZero(), "end date is required")
	v.Check(in.StartDate.IsZero() || in.EndDate.IsZero() || end.After(start), "end date must be after the start date")
	v.Check(in.MonthlyRent > 0, "monthly rent must be greater than 0")
	v.Check(in.SecurityDeposit >= 0, "security deposit cannot be negative")

	student, err := s.db.GetUserByID(ctx, in.StudentID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		v.Add("student %d does not exist", in.StudentID)
	case err != nil:
		return res, err
	case student.Role != cnst.RoleStudent:
		v.Add("user %d is not a student", in.StudentID)
	}

	var app *database.Application
	if in.ApplicationID != nil {
		app, err = s.db.GetApplication(ctx, *in.ApplicationID)
		switch {
		case errors.Is(err, database.ErrNotFound):
			v.Add("application %d does not exist", *in.ApplicationID)
		case err != nil:
			return res, err
		case app.StudentID != in.StudentID || app.AccommodationID != in.AccommodationID:
			v.Add("application %d belongs to another student or accommodation", app.ID)
		case app.Status == cnst.ApplicationRejected:
			v.Add("application %d was rejected", app.ID)
		}
	}
	if err := v.Err(); err != nil {
		return res, err
	}

	held := app != nil && app.Status == cnst.ApplicationApproved && app.LeasedAt == nil
	if !held && acc.RoomsAvailable <= 0 {
		return res, &errorx.CapacityError{AccommodationID: acc.ID}
	}

	lease := &database.Lease{
		StudentID:       in.StudentID,
		AccommodationID: acc.ID,
		ApplicationID:   in.ApplicationID,
		StartDate:       start,
		EndDate:         end,
		MonthlyRent:     in.MonthlyRent,
		SecurityDeposit: in.SecurityDeposit,
		CreatedBy:       p.UserID,
	}
	err = s.db.Transaction(ctx, func(ctx context.Context) error {
		reserved := false
		if app != nil {
			if app.Status == cnst.ApplicationPending {
				ok, err := s.db.TransitionApplication(ctx, app.ID, cnst.ApplicationPending, cnst.ApplicationApproved, p.UserID, s.now())
				if err != nil {
					return err
				}
				if !ok {
					return &errorx.InvalidTransitionError{Entity: entityApplication, From: "decided", To: string(cnst.ApplicationApproved)}
				}
			}
			// the room held at approval is taken at most once
			claimed, err := s.db.ClaimApplication(ctx, app.ID, s.now())
			if err != nil {
				return err
			}
			reserved = claimed && app.Status == cnst.ApplicationApproved
		}
		if !reserved {
			ok, err := s.db.ReserveRoom(ctx, acc.ID)
			if err != nil {
				return err
			}
			if !ok {
				return &errorx.CapacityError{AccommodationID: acc.ID}
			}
		}
		return s.db.CreateLease(ctx, lease)
	})
	if err != nil {
		return res, err
	}
	o.target(acc.ID, lease.ID)
	o.transition("", string(cnst.LeaseUnsigned))
	res.Entity = s.leaseView(lease)

	ref, err := s.docs.Render(ctx, document.KindLease, lease.ID, document.LeaseData{
		Lease: lease, Student: student, Accommodation: acc, GeneratedAt: s.now(),
	})
	s.metrics.Document(string(document.KindLease), err)
	if err != nil {
		return res, s.dependencyFailure(entityLease, lease.ID, err)
	}
	if err := s.db.SetLeaseDocument(ctx, lease.ID, ref); err != nil {
		return res, s.dependencyFailure(entityLease, lease.ID, err)
	}
	lease.DocumentRef = ref

	s.announce(ctx, &res.Warnings, s.leaseCreatedMessage(lease, acc), lease.StudentID)
	return res, nil
}

func (s *Service) leaseCreatedMessage(l *database.Lease, acc *database.Accommodation) notify.Message {
	return notify.Message{
		Event: cnst.EventLeaseCreated,
		Data: map[string]any{
			"Accommodation": acc.Name,
			"Start":         date(l.StartDate),
			"End":           date(l.EndDate),
			"Rent":          money(l.MonthlyRent),
		},
	}
}

// TerminateLeaseEarly moves the end date of a lease forward to newEnd.
// Only the end date changes.
func (s *Service) TerminateLeaseEarly(ctx context.Context, p access.Principal, id uint, newEnd time.Time) (res Result[*LeaseView], err error) {
	o := s.start(ctx, cnst.SpanLeaseTerminate, entityLease, p)
	defer o.done(&err)
	ctx = o.Ctx

	const action = "terminate lease"
	lease, err := s.db.GetLease(ctx, id)
	if err != nil {
		return res, access.Missing(p, err, entityLease, id, action)
	}
	o.target(lease.AccommodationID, lease.ID)
	if err := s.access.Authorize(ctx, p, lease.AccommodationID, action); err != nil {
		return res, err
	}

	end := database.Day(newEnd)
	var v errorx.Violations
	if newEnd.IsZero() {
		v.Add("new end date is required")
	} else {
		v.Check(end.After(database.Day(lease.StartDate)), "new end date must be after the lease start date")
		v.Check(end.Before(database.Day(lease.EndDate)), "new end date must be before the current end date")
	}
	if err := v.Err(); err != nil {
		return res, err
	}

	ok, err := s.db.ShortenLease(ctx, id, lease.EndDate, end)
	if err != nil {
		return res, err
	}
	if !ok {
		return res, &errorx.InvalidTransitionError{Entity: entityLease, From: "modified", To: "terminated"}
	}
	o.transition(date(lease.EndDate), date(end))

	if lease, err = s.db.GetLease(ctx, id); err != nil {
		return res, err
	}
	res.Entity = s.leaseView(lease)

	var name string
	if acc, err := s.db.GetAccommodation(ctx, lease.AccommodationID); err == nil {
		name = acc.Name
	}
	s.announce(ctx, &res.Warnings, notify.Message{
		Event: cnst.EventLeaseTerminated,
		Data:  map[string]any{"Accommodation": name, "End": date(end)},
	}, lease.StudentID)
	return res, nil
}

// SignLease records the student's signature. A lease is signed once.
func (s *Service) SignLease(ctx context.Context, p access.Principal, id uint) (res Result[*LeaseView], err error) {
	o := s.start(ctx, cnst.SpanLeaseSign, entityLease, p)
	defer o.done(&err)
	ctx = o.Ctx

	const action = "sign lease"
	if err := access.RequireRole(p, action, cnst.RoleStudent); err != nil {
		return res, err
	}
	lease, err := s.db.GetLease(ctx, id)
	if err != nil {
		return res, access.Missing(p, err, entityLease, id, action)
	}
	o.target(lease.AccommodationID, lease.ID)
	if lease.StudentID != p.UserID || lease.DocumentRef == "" {
		return res, errorx.Forbidden(action, "")
	}
	if lease.Signed {
		return res, &errorx.InvalidTransitionError{Entity: entityLease, From: string(cnst.LeaseSigned), To: string(cnst.LeaseSigned)}
	}

	ok, err := s.db.SignLease(ctx, id, s.now())
	if err != nil {
		return res, err
	}
	if !ok {
		return res, &errorx.InvalidTransitionError{Entity: entityLease, From: string(cnst.LeaseSigned), To: string(cnst.LeaseSigned)}
	}
	o.transition(string(cnst.LeaseUnsigned), string(cnst.LeaseSigned))

	if lease, err = s.db.GetLease(ctx, id); err != nil {
		return res, err
	}
	res.Entity = s.leaseView(lease)

	student, err := s.db.GetUserByID(ctx, lease.StudentID)
	if err != nil {
		return res, err
	}
	acc, err := s.db.GetAccommodation(ctx, lease.AccommodationID)
	if err != nil {
		return res, err
	}

	admins, err := s.adminsOf(ctx, lease.AccommodationID, false)
	if err != nil {
		return res, err
	}
	s.announce(ctx, &res.Warnings, notify.Message{
		Event: cnst.EventLeaseSigned,
		Data:  map[string]any{"Student": student.FullName(), "Accommodation": acc.Name, "LeaseID": lease.ID},
	}, admins...)

	// the stored document carries the signature block
	ref, err := s.docs.Render(ctx, document.KindLease, lease.ID, document.LeaseData{
		Lease: lease, Student: student, Accommodation: acc, GeneratedAt: s.now(),
	})
	s.metrics.Document(string(document.KindLease), err)
	if err != nil {
		return res, s.dependencyFailure(entityLease, lease.ID, err)
	}
	if ref != lease.DocumentRef {
		if err := s.db.SetLeaseDocument(ctx, lease.ID, ref); err != nil {
			return res, s.dependencyFailure(entityLease, lease.ID, err)
		}
		lease.DocumentRef = ref
	}
	return res, nil
}

// LeaseQuery narrows ListLeases
type LeaseQuery struct {
	// CurrentOnly keeps leases that have not ended
	CurrentOnly bool
}

// ListLeases lists the leases in the caller's scope. Students do not see leases
// whose document has not been generated.
func (s *Service) ListLeases(ctx context.Context, p access.Principal, q LeaseQuery) ([]*LeaseView, error) {
	scope, err := s.access.Scope(ctx, p)
	if err != nil {
		return nil, err
	}
	f := database.LeaseFilter{Scope: scope, DocumentedOnly: p.IsStudent()}
	if q.CurrentOnly {
		today := s.today()
		f.CurrentOn = &today
	}
	leases, err := s.db.ListLeases(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]*LeaseView, 0, len(leases))
	for _, l := range leases {
		out = append(out, s.leaseView(l))
	}
	return out, nil
}

// GetLease returns a lease visible to the caller
func (s *Service) GetLease(ctx context.Context, p access.Principal, id uint) (*LeaseView, error) {
	const action = "view lease"
	lease, err := s.db.GetLease(ctx, id)
	if err != nil {
		return nil, access.Missing(p, err, entityLease, id, action)
	}
	if err := s.authorizeView(ctx, p, lease.AccommodationID, lease.StudentID, action); err != nil {
		return nil, err
	}
	if p.IsStudent() && lease.DocumentRef == "" {
		return nil, errorx.Forbidden(action, "")
	}
	return s.leaseView(lease), nil
}

// GenerateInvoice bills a lease; scope is resolved against the lease's accommodation
func (s *Service) GenerateInvoice(ctx context.Context, p access.Principal, leaseID uint, in InvoiceInput) (Result[*InvoiceView], error) {
	in.LeaseID = leaseID
	return s.CreateInvoice(ctx, p, in)
}
