package lifecycle

import (
	"context"

	"github.com/harambee/studentliving/internal/access"
	"github.com/harambee/studentliving/internal/apiserver/database"
	"github.com/harambee/studentliving/internal/common/cnst"
)

// Dashboard summarizes the caller's scope
type Dashboard struct {
	Accommodations      int      `json:"accommodations"`
	PendingApplications int64    `json:"pendingApplications"`
	ActiveLeases        int64    `json:"activeLeases"`
	UnpaidInvoices      int64    `json:"unpaidInvoices"`
	OverdueInvoices     int64    `json:"overdueInvoices"`
	OpenMaintenance     int64    `json:"openMaintenance"`
	TotalDue            *float64 `json:"totalDue,omitempty"`
}

// Dashboard counts the entities in the caller's scope. Active leases are those
// that have not ended.
func (s *Service) Dashboard(ctx context.Context, p access.Principal) (*Dashboard, error) {
	scope, err := s.access.Scope(ctx, p)
	if err != nil {
		return nil, err
	}
	today := s.today()
	d := &Dashboard{}

	accFilter := database.AccommodationFilter{Scope: scope}
	if p.IsStudent() {
		accFilter = database.AccommodationFilter{AvailableOnly: true}
	}
	accs, err := s.db.ListAccommodations(ctx, accFilter)
	if err != nil {
		return nil, err
	}
	d.Accommodations = len(accs)

	if d.PendingApplications, err = s.db.CountApplications(ctx, database.ApplicationFilter{Scope: scope, Status: cnst.ApplicationPending}); err != nil {
		return nil, err
	}
	if d.ActiveLeases, err = s.db.CountLeases(ctx, database.LeaseFilter{Scope: scope, CurrentOn: &today, DocumentedOnly: p.IsStudent()}); err != nil {
		return nil, err
	}
	invoices := database.InvoiceFilter{Scope: scope, Today: today, DocumentedOnly: p.IsStudent()}
	invoices.Status = cnst.InvoiceUnpaid
	if d.UnpaidInvoices, err = s.db.CountInvoices(ctx, invoices); err != nil {
		return nil, err
	}
	invoices.Status = cnst.InvoiceOverdue
	if d.OverdueInvoices, err = s.db.CountInvoices(ctx, invoices); err != nil {
		return nil, err
	}
	if d.OpenMaintenance, err = s.db.CountMaintenance(ctx, database.MaintenanceFilter{Scope: scope, OpenOnly: true}); err != nil {
		return nil, err
	}

	if p.IsStudent() {
		due, err := s.db.SumUnpaid(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		d.TotalDue = &due
	}
	return d, nil
}
