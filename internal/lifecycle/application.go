package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/harambee/studentliving/internal/access"
	"github.com/harambee/studentliving/internal/apiserver/database"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/errorx"
	"github.com/harambee/studentliving/internal/notify"
	"go.uber.org/zap"
)

const entityApplication = "application"

// SubmitApplicationInput is a student's request for a room
type SubmitApplicationInput struct {
	AccommodationID uint
	MoveInDate      time.Time
	Notes           string
}

// SubmitApplication files a pending application for the calling student
func (s *Service) SubmitApplication(ctx context.Context, p access.Principal, in SubmitApplicationInput) (res Result[*database.Application], err error) {
	o := s.start(ctx, cnst.SpanApplicationSubmit, entityApplication, p)
	defer o.done(&err)
	ctx = o.Ctx
	o.target(in.AccommodationID, 0)

	if err := access.RequireRole(p, "submit application", cnst.RoleStudent); err != nil {
		return res, err
	}

	today := s.today()
	var v errorx.Violations
	switch {
	case in.MoveInDate.IsZero():
		v.Add("move-in date is required")
	case database.Day(in.MoveInDate).Before(today):
		v.Add("move-in date cannot be in the past")
	}

	acc, err := s.db.GetAccommodation(ctx, in.AccommodationID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		v.Add("accommodation %d does not exist", in.AccommodationID)
	case err != nil:
		return res, err
	case acc.RoomsAvailable <= 0:
		v.Add("accommodation has no rooms available")
	}

	if acc != nil {
		pending, err := s.db.HasPendingApplication(ctx, p.UserID, acc.ID)
		if err != nil {
			return res, err
		}
		v.Check(!pending, "you already have a pending application for this accommodation")
	}

	current, err := s.db.CountLeases(ctx, database.LeaseFilter{
		Scope:     database.Scope{StudentID: p.UserID},
		CurrentOn: &today,
	})
	if err != nil {
		return res, err
	}
	v.Check(current == 0, "you already have an active lease")

	if err := v.Err(); err != nil {
		return res, err
	}

	app := &database.Application{
		StudentID:       p.UserID,
		AccommodationID: acc.ID,
		Status:          cnst.ApplicationPending,
		MoveInDate:      database.Day(in.MoveInDate),
		Notes:           in.Notes,
	}
	if err := s.db.CreateApplication(ctx, app); err != nil {
		return res, err
	}
	o.target(acc.ID, app.ID)
	o.transition("", string(cnst.ApplicationPending))
	res.Entity = app

	student, err := s.db.GetUserByID(ctx, p.UserID)
	if err != nil {
		return res, err
	}
	admins, err := s.adminsOf(ctx, acc.ID, true)
	if err != nil {
		s.logger.Warn("cannot resolve application reviewers", zap.Uint("application_id", app.ID), zap.Error(err))
		return res, nil
	}
	s.announce(ctx, &res.Warnings, notify.Message{
		Event: cnst.EventApplicationSubmitted,
		Data: map[string]any{
			"Student":       student.FullName(),
			"Accommodation": acc.Name,
			"MoveIn":        date(app.MoveInDate),
		},
	}, admins...)
	return res, nil
}

// ApproveApplication approves a pending application and reserves a room for it
func (s *Service) ApproveApplication(ctx context.Context, p access.Principal, id uint) (Result[*database.Application], error) {
	return s.decide(ctx, p, id, cnst.ApplicationApproved)
}

// RejectApplication rejects a pending application
func (s *Service) RejectApplication(ctx context.Context, p access.Principal, id uint) (Result[*database.Application], error) {
	return s.decide(ctx, p, id, cnst.ApplicationRejected)
}

func (s *Service) decide(ctx context.Context, p access.Principal, id uint, to cnst.ApplicationStatus) (res Result[*database.Application], err error) {
	o := s.start(ctx, cnst.SpanApplicationDecide, entityApplication, p)
	defer o.done(&err)
	ctx = o.Ctx

	action := "approve application"
	event := cnst.EventApplicationApproved
	if to == cnst.ApplicationRejected {
		action = "reject application"
		event = cnst.EventApplicationRejected
	}

	app, err := s.db.GetApplication(ctx, id)
	if err != nil {
		return res, access.Missing(p, err, entityApplication, id, action)
	}
	o.target(app.AccommodationID, app.ID)
	if err := s.access.Authorize(ctx, p, app.AccommodationID, action); err != nil {
		return res, err
	}
	if app.Status != cnst.ApplicationPending {
		return res, &errorx.InvalidTransitionError{Entity: entityApplication, From: string(app.Status), To: string(to)}
	}

	err = s.db.Transaction(ctx, func(ctx context.Context) error {
		ok, err := s.db.TransitionApplication(ctx, id, cnst.ApplicationPending, to, p.UserID, s.now())
		if err != nil {
			return err
		}
		if !ok {
			current, err := s.db.GetApplication(ctx, id)
			if err != nil {
				return err
			}
			return &errorx.InvalidTransitionError{Entity: entityApplication, From: string(current.Status), To: string(to)}
		}
		if to != cnst.ApplicationApproved {
			return nil
		}
		reserved, err := s.db.ReserveRoom(ctx, app.AccommodationID)
		if err != nil {
			return err
		}
		if !reserved {
			return &errorx.CapacityError{AccommodationID: app.AccommodationID}
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	o.transition(string(cnst.ApplicationPending), string(to))

	if res.Entity, err = s.db.GetApplication(ctx, id); err != nil {
		return res, err
	}

	var name string
	if acc, err := s.db.GetAccommodation(ctx, app.AccommodationID); err == nil {
		name = acc.Name
	}
	s.announce(ctx, &res.Warnings, notify.Message{
		Event: event,
		Data:  map[string]any{"Accommodation": name},
	}, app.StudentID)
	return res, nil
}

// ListApplications lists the applications in the caller's scope, newest first
func (s *Service) ListApplications(ctx context.Context, p access.Principal, status cnst.ApplicationStatus) ([]*database.Application, error) {
	if status != "" && !status.IsValid() {
		return nil, errorx.Invalid("unknown application status " + string(status))
	}
	scope, err := s.access.Scope(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.db.ListApplications(ctx, database.ApplicationFilter{Scope: scope, Status: status})
}

// GetApplication returns an application visible to the caller
func (s *Service) GetApplication(ctx context.Context, p access.Principal, id uint) (*database.Application, error) {
	app, err := s.db.GetApplication(ctx, id)
	if err != nil {
		return nil, access.Missing(p, err, entityApplication, id, "view application")
	}
	if err := s.authorizeView(ctx, p, app.AccommodationID, app.StudentID, "view application"); err != nil {
		return nil, err
	}
	return app, nil
}
