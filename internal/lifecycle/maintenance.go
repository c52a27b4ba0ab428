package lifecycle

import (
	"context"
	"strings"
	"time"

	"github.com/harambee/studentliving/internal/access"
	"github.com/harambee/studentliving/internal/apiserver/database"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/errorx"
	"github.com/harambee/studentliving/internal/notify"
	"go.uber.org/zap"
)

const entityMaintenance = "maintenance"

// maintenanceNext lists the statuses reachable from each open status.
// Staying in an open status is allowed so that notes can be updated.
var maintenanceNext = map[cnst.MaintenanceStatus][]cnst.MaintenanceStatus{
	cnst.MaintenancePending: {
		cnst.MaintenancePending, cnst.MaintenanceInProgress, cnst.MaintenanceCompleted, cnst.MaintenanceCancelled,
	},
	cnst.MaintenanceInProgress: {
		cnst.MaintenanceInProgress, cnst.MaintenanceCompleted, cnst.MaintenanceCancelled,
	},
}

// CanMoveMaintenance reports whether a request may go from one status to another
func CanMoveMaintenance(from, to cnst.MaintenanceStatus) bool {
	for _, s := range maintenanceNext[from] {
		if s == to {
			return true
		}
	}
	return false
}

// SubmitMaintenanceInput is a student's maintenance report
type SubmitMaintenanceInput struct {
	AccommodationID uint
	Title           string
	Description     string
	Priority        cnst.MaintenancePriority
}

// SubmitMaintenance files a request for an accommodation where the student holds a current lease
func (s *Service) SubmitMaintenance(ctx context.Context, p access.Principal, in SubmitMaintenanceInput) (res Result[*database.MaintenanceRequest], err error) {
	o := s.start(ctx, cnst.SpanMaintenanceSubmit, entityMaintenance, p)
	defer o.done(&err)
	ctx = o.Ctx
	o.target(in.AccommodationID, 0)

	if err := access.RequireRole(p, "submit maintenance request", cnst.RoleStudent); err != nil {
		return res, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Priority == "" {
		in.Priority = cnst.PriorityMedium
	}

	var v errorx.Violations
	v.Check(in.Title != "", "title is required")
	v.Check(in.Description != "", "description is required")
	v.Check(in.Priority.IsValid(), "priority must be one of low, medium, high, emergency")

	today := s.today()
	leases, err := s.db.CountLeases(ctx, database.LeaseFilter{
		Scope:     database.Scope{Restricted: true, AccommodationIDs: []uint{in.AccommodationID}, StudentID: p.UserID},
		CurrentOn: &today,
	})
	if err != nil {
		return res, err
	}
	v.Check(leases > 0, "you can only report issues for an accommodation where you hold a lease")
	if err := v.Err(); err != nil {
		return res, err
	}

	req := &database.MaintenanceRequest{
		StudentID:       p.UserID,
		AccommodationID: in.AccommodationID,
		Title:           in.Title,
		Description:     in.Description,
		Priority:        in.Priority,
		Status:          cnst.MaintenancePending,
	}
	if err := s.db.CreateMaintenance(ctx, req); err != nil {
		return res, err
	}
	o.target(in.AccommodationID, req.ID)
	o.transition("", string(cnst.MaintenancePending))
	res.Entity = req

	student, err := s.db.GetUserByID(ctx, p.UserID)
	if err != nil {
		return res, err
	}
	acc, err := s.db.GetAccommodation(ctx, in.AccommodationID)
	if err != nil {
		return res, err
	}
	admins, err := s.adminsOf(ctx, in.AccommodationID, false)
	if err != nil {
		s.logger.Warn("cannot resolve maintenance reviewers", zap.Uint("request_id", req.ID), zap.Error(err))
		return res, nil
	}
	s.announce(ctx, &res.Warnings, notify.Message{
		Event: cnst.EventMaintenanceSubmitted,
		Data: map[string]any{
			"Student":       student.FullName(),
			"Accommodation": acc.Name,
			"Title":         req.Title,
			"Priority":      string(req.Priority),
		},
	}, admins...)
	return res, nil
}

// SetMaintenanceStatus moves a request along its lifecycle. Non-nil notes replace
// the admin notes. Completed and cancelled requests are final.
func (s *Service) SetMaintenanceStatus(ctx context.Context, p access.Principal, id uint, to cnst.MaintenanceStatus, notes *string) (res Result[*database.MaintenanceRequest], err error) {
	o := s.start(ctx, cnst.SpanMaintenanceUpdate, entityMaintenance, p)
	defer o.done(&err)
	ctx = o.Ctx

	const action = "update maintenance request"
	req, err := s.db.GetMaintenance(ctx, id)
	if err != nil {
		return res, access.Missing(p, err, "maintenance request", id, action)
	}
	o.target(req.AccommodationID, req.ID)
	if err := s.access.Authorize(ctx, p, req.AccommodationID, action); err != nil {
		return res, err
	}
	if !to.IsValid() {
		return res, errorx.Invalid("status must be one of pending, in_progress, completed, cancelled")
	}
	if !CanMoveMaintenance(req.Status, to) {
		return res, &errorx.InvalidTransitionError{Entity: entityMaintenance, From: string(req.Status), To: string(to)}
	}

	var completedAt *time.Time
	if to == cnst.MaintenanceCompleted {
		now := s.now()
		completedAt = &now
	}
	ok, err := s.db.UpdateMaintenance(ctx, id, req.Status, to, notes, completedAt)
	if err != nil {
		return res, err
	}
	if !ok {
		current, err := s.db.GetMaintenance(ctx, id)
		if err != nil {
			return res, err
		}
		return res, &errorx.InvalidTransitionError{Entity: entityMaintenance, From: string(current.Status), To: string(to)}
	}
	o.transition(string(req.Status), string(to))

	if res.Entity, err = s.db.GetMaintenance(ctx, id); err != nil {
		return res, err
	}
	s.announce(ctx, &res.Warnings, notify.Message{
		Event: cnst.EventMaintenanceStatusChanged,
		Data: map[string]any{
			"Title":  res.Entity.Title,
			"Status": strings.ReplaceAll(string(to), "_", " "),
			"Notes":  res.Entity.AdminNotes,
		},
	}, res.Entity.StudentID)
	return res, nil
}

// MaintenanceQuery narrows ListMaintenance
type MaintenanceQuery struct {
	Status   cnst.MaintenanceStatus
	OpenOnly bool
}

// ListMaintenance lists requests in the caller's scope by priority, then newest first
func (s *Service) ListMaintenance(ctx context.Context, p access.Principal, q MaintenanceQuery) ([]*database.MaintenanceRequest, error) {
	if q.Status != "" && !q.Status.IsValid() {
		return nil, errorx.Invalid("unknown maintenance status " + string(q.Status))
	}
	scope, err := s.access.Scope(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.db.ListMaintenance(ctx, database.MaintenanceFilter{Scope: scope, Status: q.Status, OpenOnly: q.OpenOnly})
}

// GetMaintenance returns a request visible to the caller
func (s *Service) GetMaintenance(ctx context.Context, p access.Principal, id uint) (*database.MaintenanceRequest, error) {
	const action = "view maintenance request"
	req, err := s.db.GetMaintenance(ctx, id)
	if err != nil {
		return nil, access.Missing(p, err, "maintenance request", id, action)
	}
	if err := s.authorizeView(ctx, p, req.AccommodationID, req.StudentID, action); err != nil {
		return nil, err
	}
	return req, nil
}
