package lifecycle

import (
	"context"
	"time"

	"github.com/harambee/studentliving/internal/access"
	"github.com/harambee/studentliving/internal/apiserver/database"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/errorx"
	"github.com/harambee/studentliving/internal/document"
	"github.com/harambee/studentliving/internal/notify"
)

const entityInvoice = "invoice"

// InvoiceView is an invoice with its effective status. Status in JSON is the
// effective status; the stored value never says overdue.
type InvoiceView struct {
	*database.Invoice
	EffectiveStatus cnst.InvoiceStatus `json:"status"`
	Overdue         bool               `json:"isOverdue"`
}

// IsEffectivelyOverdue is the single overdue predicate: unpaid and due before now
func IsEffectivelyOverdue(inv *database.Invoice, now time.Time) bool {
	return inv.IsOverdue(now)
}

func (s *Service) invoiceView(inv *database.Invoice) *InvoiceView {
	now := s.now()
	return &InvoiceView{Invoice: inv, EffectiveStatus: inv.EffectiveStatus(now), Overdue: IsEffectivelyOverdue(inv, now)}
}

// InvoiceInput describes a charge against a lease
type InvoiceInput struct {
	LeaseID     uint
	Amount      float64
	DueDate     time.Time
	Description string
}

// CreateInvoice bills a lease, renders the invoice document and notifies the student
func (s *Service) CreateInvoice(ctx context.Context, p access.Principal, in InvoiceInput) (res Result[*InvoiceView], err error) {
	o := s.start(ctx, cnst.SpanInvoiceGenerate, entityInvoice, p)
	defer o.done(&err)
	ctx = o.Ctx

	const action = "create invoice"
	lease, err := s.db.GetLease(ctx, in.LeaseID)
	if err != nil {
		return res, access.Missing(p, err, entityLease, in.LeaseID, action)
	}
	o.target(lease.AccommodationID, 0)
	if err := s.access.Authorize(ctx, p, lease.AccommodationID, action); err != nil {
		return res, err
	}

	var v errorx.Violations
	v.Check(in.Amount > 0, "amount must be greater than 0")
	v.Check(!in.DueDate.IsZero(), "due date is required")
	if err := v.Err(); err != nil {
		return res, err
	}

	inv := &database.Invoice{
		LeaseID:         lease.ID,
		StudentID:       lease.StudentID,
		AccommodationID: lease.AccommodationID,
		Amount:          in.Amount,
		DueDate:         database.Day(in.DueDate),
		Description:     in.Description,
		Status:          cnst.InvoiceUnpaid,
		CreatedBy:       p.UserID,
	}
	if err := s.db.CreateInvoice(ctx, inv); err != nil {
		return res, err
	}
	o.target(lease.AccommodationID, inv.ID)
	o.transition("", string(cnst.InvoiceUnpaid))
	res.Entity = s.invoiceView(inv)

	if err := s.renderInvoice(ctx, inv, lease); err != nil {
		return res, err
	}
	s.announce(ctx, &res.Warnings, invoiceMessage(cnst.EventInvoiceCreated, inv), inv.StudentID)
	return res, nil
}

func (s *Service) renderInvoice(ctx context.Context, inv *database.Invoice, lease *database.Lease) error {
	data := document.InvoiceData{Invoice: inv, Lease: lease, GeneratedAt: s.now()}
	var err error
	if data.Lease == nil {
		if data.Lease, err = s.db.GetLease(ctx, inv.LeaseID); err != nil {
			return s.dependencyFailure(entityInvoice, inv.ID, err)
		}
	}
	if data.Student, err = s.db.GetUserByID(ctx, inv.StudentID); err != nil {
		return s.dependencyFailure(entityInvoice, inv.ID, err)
	}
	if data.Accommodation, err = s.db.GetAccommodation(ctx, inv.AccommodationID); err != nil {
		return s.dependencyFailure(entityInvoice, inv.ID, err)
	}

	ref, err := s.docs.Render(ctx, document.KindInvoice, inv.ID, data)
	s.metrics.Document(string(document.KindInvoice), err)
	if err != nil {
		return s.dependencyFailure(entityInvoice, inv.ID, err)
	}
	if ref != inv.DocumentRef {
		if err := s.db.SetInvoiceDocument(ctx, inv.ID, ref); err != nil {
			return s.dependencyFailure(entityInvoice, inv.ID, err)
		}
		inv.DocumentRef = ref
	}
	return nil
}

func invoiceMessage(event cnst.Event, inv *database.Invoice) notify.Message {
	return notify.Message{
		Event: event,
		Data: map[string]any{
			"InvoiceID": inv.ID,
			"Amount":    money(inv.Amount),
			"Due":       date(inv.DueDate),
		},
	}
}

// SetInvoiceStatus moves an invoice to paid, unpaid or overdue.
// Paid to paid changes nothing and sends nothing. Overdue is accepted only for an
// unpaid invoice past its due date and is not stored.
func (s *Service) SetInvoiceStatus(ctx context.Context, p access.Principal, id uint, to cnst.InvoiceStatus) (res Result[*InvoiceView], err error) {
	o := s.start(ctx, cnst.SpanInvoiceSetStatus, entityInvoice, p)
	defer o.done(&err)
	ctx = o.Ctx

	const action = "update invoice"
	inv, err := s.db.GetInvoice(ctx, id)
	if err != nil {
		return res, access.Missing(p, err, entityInvoice, id, action)
	}
	o.target(inv.AccommodationID, inv.ID)
	if err := s.access.Authorize(ctx, p, inv.AccommodationID, action); err != nil {
		return res, err
	}
	if !to.IsValid() {
		return res, errorx.Invalid("status must be one of unpaid, paid, overdue")
	}

	now := s.now()
	from := inv.EffectiveStatus(now)
	switch {
	case to == cnst.InvoiceOverdue && !IsEffectivelyOverdue(inv, now):
		return res, &errorx.InvalidTransitionError{Entity: entityInvoice, From: string(from), To: string(to)}
	case to == cnst.InvoicePaid && inv.Status == cnst.InvoicePaid,
		to == cnst.InvoiceUnpaid && inv.Status == cnst.InvoiceUnpaid:
		res.Entity = s.invoiceView(inv)
		return res, nil
	}

	if to != cnst.InvoiceOverdue {
		var paidAt *time.Time
		if to == cnst.InvoicePaid {
			paidAt = &now
		}
		if err := s.db.SetInvoiceStatus(ctx, id, to, paidAt); err != nil {
			return res, err
		}
		if inv, err = s.db.GetInvoice(ctx, id); err != nil {
			return res, err
		}
	}
	o.transition(string(from), string(to))
	res.Entity = s.invoiceView(inv)

	msg := invoiceMessage(cnst.EventInvoiceStatusChanged, inv)
	msg.Data["Status"] = string(to)
	s.announce(ctx, &res.Warnings, msg, inv.StudentID)
	if to == cnst.InvoicePaid {
		s.announce(ctx, &res.Warnings, invoiceMessage(cnst.EventPaymentConfirmed, inv), inv.StudentID)
	}

	if to != cnst.InvoiceOverdue {
		if err := s.renderInvoice(ctx, inv, nil); err != nil {
			return res, err
		}
	}
	return res, nil
}

// SendInvoiceReminder reminds the student of an unpaid invoice without changing it
func (s *Service) SendInvoiceReminder(ctx context.Context, p access.Principal, id uint) (res Result[*InvoiceView], err error) {
	o := s.start(ctx, cnst.SpanInvoiceReminder, entityInvoice, p)
	defer o.done(&err)
	ctx = o.Ctx

	const action = "send invoice reminder"
	inv, err := s.db.GetInvoice(ctx, id)
	if err != nil {
		return res, access.Missing(p, err, entityInvoice, id, action)
	}
	o.target(inv.AccommodationID, inv.ID)
	if err := s.access.Authorize(ctx, p, inv.AccommodationID, action); err != nil {
		return res, err
	}
	if inv.Status == cnst.InvoicePaid {
		return res, &errorx.InvalidTransitionError{Entity: entityInvoice, From: string(cnst.InvoicePaid), To: "reminded"}
	}

	res.Entity = s.invoiceView(inv)
	s.announce(ctx, &res.Warnings, invoiceMessage(cnst.EventInvoiceReminder, inv), inv.StudentID)
	return res, nil
}

// InvoiceQuery narrows ListInvoices. Status is matched against the effective status.
type InvoiceQuery struct {
	LeaseID uint
	Status  cnst.InvoiceStatus
}

// ListInvoices lists the invoices in the caller's scope
func (s *Service) ListInvoices(ctx context.Context, p access.Principal, q InvoiceQuery) ([]*InvoiceView, error) {
	if q.Status != "" && !q.Status.IsValid() {
		return nil, errorx.Invalid("unknown invoice status " + string(q.Status))
	}
	scope, err := s.access.Scope(ctx, p)
	if err != nil {
		return nil, err
	}
	invoices, err := s.db.ListInvoices(ctx, database.InvoiceFilter{
		Scope:          scope,
		LeaseID:        q.LeaseID,
		Status:         q.Status,
		Today:          s.today(),
		DocumentedOnly: p.IsStudent(),
	})
	if err != nil {
		return nil, err
	}
	out := make([]*InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, s.invoiceView(inv))
	}
	return out, nil
}

// GetInvoice returns an invoice visible to the caller
func (s *Service) GetInvoice(ctx context.Context, p access.Principal, id uint) (*InvoiceView, error) {
	const action = "view invoice"
	inv, err := s.db.GetInvoice(ctx, id)
	if err != nil {
		return nil, access.Missing(p, err, entityInvoice, id, action)
	}
	if err := s.authorizeView(ctx, p, inv.AccommodationID, inv.StudentID, action); err != nil {
		return nil, err
	}
	if p.IsStudent() && inv.DocumentRef == "" {
		return nil, errorx.Forbidden(action, "")
	}
	return s.invoiceView(inv), nil
}

// TotalDue sums the calling student's unpaid invoices, overdue ones included
func (s *Service) TotalDue(ctx context.Context, p access.Principal) (float64, error) {
	if err := access.RequireRole(p, "view amount due", cnst.RoleStudent); err != nil {
		return 0, err
	}
	return s.db.SumUnpaid(ctx, p.UserID)
}
