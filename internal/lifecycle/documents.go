package lifecycle

import (
	"context"

	"github.com/harambee/studentliving/internal/access"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/errorx"
	"github.com/harambee/studentliving/internal/document"
)

// DocumentResult names the stored document of an entity
type DocumentResult struct {
	Kind     document.Kind `json:"kind"`
	EntityID uint          `json:"entityId"`
	Ref      string        `json:"documentRef"`
}

// RegenerateDocument renders the document of a lease or invoice again without
// re-running its transition. The student is told about the entity the first time
// its document becomes available.
func (s *Service) RegenerateDocument(ctx context.Context, p access.Principal, kind document.Kind, id uint) (res Result[*DocumentResult], err error) {
	o := s.start(ctx, cnst.SpanDocumentRegenerate, string(kind), p)
	defer o.done(&err)
	ctx = o.Ctx

	const action = "regenerate document"
	switch kind {
	case document.KindLease:
		lease, err := s.db.GetLease(ctx, id)
		if err != nil {
			return res, access.Missing(p, err, entityLease, id, action)
		}
		o.target(lease.AccommodationID, lease.ID)
		if err := s.access.Authorize(ctx, p, lease.AccommodationID, action); err != nil {
			return res, err
		}
		student, err := s.db.GetUserByID(ctx, lease.StudentID)
		if err != nil {
			return res, err
		}
		acc, err := s.db.GetAccommodation(ctx, lease.AccommodationID)
		if err != nil {
			return res, err
		}
		first := lease.DocumentRef == ""

		ref, err := s.docs.Render(ctx, document.KindLease, lease.ID, document.LeaseData{
			Lease: lease, Student: student, Accommodation: acc, GeneratedAt: s.now(),
		})
		s.metrics.Document(string(kind), err)
		if err != nil {
			return res, s.dependencyFailure(entityLease, lease.ID, err)
		}
		if err := s.db.SetLeaseDocument(ctx, lease.ID, ref); err != nil {
			return res, s.dependencyFailure(entityLease, lease.ID, err)
		}
		res.Entity = &DocumentResult{Kind: kind, EntityID: lease.ID, Ref: ref}
		if first {
			s.announce(ctx, &res.Warnings, s.leaseCreatedMessage(lease, acc), lease.StudentID)
		}
		return res, nil

	case document.KindInvoice:
		inv, err := s.db.GetInvoice(ctx, id)
		if err != nil {
			return res, access.Missing(p, err, entityInvoice, id, action)
		}
		o.target(inv.AccommodationID, inv.ID)
		if err := s.access.Authorize(ctx, p, inv.AccommodationID, action); err != nil {
			return res, err
		}
		first := inv.DocumentRef == ""
		if err := s.renderInvoice(ctx, inv, nil); err != nil {
			return res, err
		}
		res.Entity = &DocumentResult{Kind: kind, EntityID: inv.ID, Ref: inv.DocumentRef}
		if first {
			s.announce(ctx, &res.Warnings, invoiceMessage(cnst.EventInvoiceCreated, inv), inv.StudentID)
		}
		return res, nil
	}
	return res, errorx.Invalid("document kind must be lease or invoice")
}

// DocumentRef returns the stored document reference of an entity visible to the caller
func (s *Service) DocumentRef(ctx context.Context, p access.Principal, kind document.Kind, id uint) (string, error) {
	var ref string
	switch kind {
	case document.KindLease:
		l, err := s.GetLease(ctx, p, id)
		if err != nil {
			return "", err
		}
		ref = l.DocumentRef
	case document.KindInvoice:
		inv, err := s.GetInvoice(ctx, p, id)
		if err != nil {
			return "", err
		}
		ref = inv.DocumentRef
	default:
		return "", errorx.Invalid("document kind must be lease or invoice")
	}
	if ref == "" {
		return "", &errorx.DependencyFailure{Dependency: "document renderer", Entity: string(kind), EntityID: id, Err: cnst.ErrDocumentMissing}
	}
	return ref, nil
}
