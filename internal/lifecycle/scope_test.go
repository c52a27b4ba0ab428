package lifecycle

import (
	"testing"
	"time"

	"github.com/harambee/studentliving/internal/access"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/errorx"
	"github.com/harambee/studentliving/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopedOperations_RefuseUnassignedAdmin(t *testing.T) {
	h := newHarness(t)
	owner := h.user("owner", cnst.RoleAdmin)
	outsider := h.user("outsider", cnst.RoleAdmin)
	student := h.user("s", cnst.RoleStudent)
	applicant := h.user("applicant", cnst.RoleStudent)
	acc := h.accommodation("Braam Lofts", 3, owner)
	lease := h.lease(student, acc, day(2024, 1, 1), day(2024, 12, 31))
	inv := h.invoice(lease, 4500, day(2024, 5, 1))
	app := h.apply(applicant, acc)
	res, err := h.svc.SubmitMaintenance(h.ctx, h.principal(student), SubmitMaintenanceInput{AccommodationID: acc.ID, Title: "t", Description: "d"})
	require.NoError(t, err)
	req := res.Entity
	rooms := h.rooms(acc.ID)

	ops := map[string]func(p access.Principal) error{
		"approve application": func(p access.Principal) error { _, err := h.svc.ApproveApplication(h.ctx, p, app.ID); return err },
		"reject application":  func(p access.Principal) error { _, err := h.svc.RejectApplication(h.ctx, p, app.ID); return err },
		"create lease": func(p access.Principal) error {
			_, err := h.svc.CreateLease(h.ctx, p, CreateLeaseInput{StudentID: applicant.ID, AccommodationID: acc.ID, StartDate: day(2024, 7, 1), EndDate: day(2025, 6, 30), MonthlyRent: 1})
			return err
		},
		"terminate lease": func(p access.Principal) error {
			_, err := h.svc.TerminateLeaseEarly(h.ctx, p, lease.ID, day(2024, 6, 30))
			return err
		},
		"create invoice": func(p access.Principal) error {
			_, err := h.svc.CreateInvoice(h.ctx, p, InvoiceInput{LeaseID: lease.ID, Amount: 1, DueDate: day(2024, 7, 1)})
			return err
		},
		"set invoice status": func(p access.Principal) error {
			_, err := h.svc.SetInvoiceStatus(h.ctx, p, inv.ID, cnst.InvoicePaid)
			return err
		},
		"send reminder": func(p access.Principal) error { _, err := h.svc.SendInvoiceReminder(h.ctx, p, inv.ID); return err },
		"update maintenance": func(p access.Principal) error {
			_, err := h.svc.SetMaintenanceStatus(h.ctx, p, req.ID, cnst.MaintenanceInProgress, nil)
			return err
		},
		"regenerate document": func(p access.Principal) error {
			_, err := h.svc.RegenerateDocument(h.ctx, p, document.KindInvoice, inv.ID)
			return err
		},
		"view lease":   func(p access.Principal) error { _, err := h.svc.GetLease(h.ctx, p, lease.ID); return err },
		"view invoice": func(p access.Principal) error { _, err := h.svc.GetInvoice(h.ctx, p, inv.ID); return err },
		"update accommodation": func(p access.Principal) error {
			_, err := h.svc.UpdateAccommodation(h.ctx, p, acc.ID, AccommodationInput{Name: "x", Address: "y", MonthlyRent: 1, RoomsAvailable: 9})
			return err
		},
		"delete accommodation": func(p access.Principal) error { return h.svc.DeleteAccommodation(h.ctx, p, acc.ID) },
		"notify accommodation": func(p access.Principal) error {
			_, err := h.svc.NotifyStudents(h.ctx, p, BulkInput{Target: TargetAccommodation, AccommodationID: acc.ID, Subject: "s", Message: "m", Channels: nil})
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			h.notifier.reset()
			requireKind(t, errorx.KindAuthorization, op(h.principal(outsider)))
			assert.Empty(t, h.notifier.sent)
		})
	}

	got, err := h.db.GetApplication(h.ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, cnst.ApplicationPending, got.Status)
	gotLease, err := h.db.GetLease(h.ctx, lease.ID)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 12, 31), gotLease.EndDate)
	gotInv, err := h.db.GetInvoice(h.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, cnst.InvoiceUnpaid, gotInv.Status)
	assert.Equal(t, rooms, h.rooms(acc.ID))

	t.Run("master and owner pass", func(t *testing.T) {
		_, err := h.svc.TerminateLeaseEarly(h.ctx, h.master, lease.ID, day(2024, 6, 30))
		require.NoError(t, err)
		_, err = h.svc.SetInvoiceStatus(h.ctx, h.principal(owner), inv.ID, cnst.InvoicePaid)
		require.NoError(t, err)
		_, err = h.svc.ApproveApplication(h.ctx, h.principal(owner), app.ID)
		require.NoError(t, err)
	})
}

func TestMissingEntities(t *testing.T) {
	h := newHarness(t)
	admin := h.user("warden", cnst.RoleAdmin)
	student := h.user("s", cnst.RoleStudent)

	_, err := h.svc.ApproveApplication(h.ctx, h.master, 404)
	requireKind(t, errorx.KindNotFound, err)
	_, err = h.svc.ApproveApplication(h.ctx, h.principal(admin), 404)
	requireKind(t, errorx.KindAuthorization, err)
	_, err = h.svc.GetInvoice(h.ctx, h.principal(student), 404)
	requireKind(t, errorx.KindAuthorization, err)
	_, err = h.svc.TerminateLeaseEarly(h.ctx, h.master, 404, time.Time{})
	requireKind(t, errorx.KindNotFound, err)
	_, err = h.svc.RegenerateDocument(h.ctx, h.master, "contract", 1)
	requireKind(t, errorx.KindValidation, err)
}
