package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/dto"
	"github.com/harambee/studentliving/internal/common/errorx"
	"github.com/harambee/studentliving/internal/lifecycle"
)

func (h *Handler) SubmitApplication(c *gin.Context) {
	var req dto.SubmitApplicationRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.svc.SubmitApplication(c.Request.Context(), principal(c), lifecycle.SubmitApplicationInput{
		AccommodationID: req.AccommodationID,
		MoveInDate:      parseDay(req.MoveInDate),
		Notes:           req.Notes,
	})
	respond(h, c, http.StatusCreated, res, err)
}

func (h *Handler) ListApplications(c *gin.Context) {
	var status cnst.ApplicationStatus
	if s := c.Query("status"); s != "" {
		var err error
		if status, err = cnst.ParseApplicationStatus(s); err != nil {
			h.fail(c, errorx.Invalid(err.Error()))
			return
		}
	}
	apps, err := h.svc.ListApplications(c.Request.Context(), principal(c), status)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, apps)
}

func (h *Handler) GetApplication(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	app, err := h.svc.GetApplication(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, app)
}

func (h *Handler) ApproveApplication(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	res, err := h.svc.ApproveApplication(c.Request.Context(), principal(c), id)
	respond(h, c, http.StatusOK, res, err)
}

func (h *Handler) RejectApplication(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	res, err := h.svc.RejectApplication(c.Request.Context(), principal(c), id)
	respond(h, c, http.StatusOK, res, err)
}

func (h *Handler) CreateLease(c *gin.Context) {
	var req dto.CreateLeaseRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.svc.CreateLease(c.Request.Context(), principal(c), lifecycle.CreateLeaseInput{
		StudentID:       req.StudentID,
		AccommodationID: req.AccommodationID,
		ApplicationID:   req.ApplicationID,
		StartDate:       parseDay(req.StartDate),
		EndDate:         parseDay(req.EndDate),
		MonthlyRent:     req.MonthlyRent,
		SecurityDeposit: req.SecurityDeposit,
	})
	respond(h, c, http.StatusCreated, res, err)
}

// ListLeases accepts ?current=true to drop ended leases
func (h *Handler) ListLeases(c *gin.Context) {
	leases, err := h.svc.ListLeases(c.Request.Context(), principal(c), lifecycle.LeaseQuery{
		CurrentOnly: c.Query("current") == "true",
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, leases)
}

func (h *Handler) GetLease(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	lease, err := h.svc.GetLease(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, lease)
}

func (h *Handler) SignLease(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	res, err := h.svc.SignLease(c.Request.Context(), principal(c), id)
	respond(h, c, http.StatusOK, res, err)
}

func (h *Handler) TerminateLease(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	var req dto.TerminateLeaseRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.svc.TerminateLeaseEarly(c.Request.Context(), principal(c), id, parseDay(req.NewEndDate))
	respond(h, c, http.StatusOK, res, err)
}

func (h *Handler) CreateInvoice(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	var req dto.CreateInvoiceRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.svc.GenerateInvoice(c.Request.Context(), principal(c), id, lifecycle.InvoiceInput{
		Amount:      req.Amount,
		DueDate:     parseDay(req.DueDate),
		Description: req.Description,
	})
	respond(h, c, http.StatusCreated, res, err)
}

// ListInvoices accepts ?status= (unpaid, paid, overdue) and ?lease=
func (h *Handler) ListInvoices(c *gin.Context) {
	var q lifecycle.InvoiceQuery
	if s := c.Query("status"); s != "" {
		status, err := cnst.ParseInvoiceStatus(s)
		if err != nil {
			h.fail(c, errorx.Invalid(err.Error()))
			return
		}
		q.Status = status
	}
	if l := c.Query("lease"); l != "" {
		id, err := strconv.ParseUint(l, 10, 64)
		if err != nil {
			h.fail(c, errorx.Invalid("lease must be a positive integer"))
			return
		}
		q.LeaseID = uint(id)
	}
	invoices, err := h.svc.ListInvoices(c.Request.Context(), principal(c), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, invoices)
}

func (h *Handler) GetInvoice(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	inv, err := h.svc.GetInvoice(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, inv)
}

func (h *Handler) SetInvoiceStatus(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	var req dto.InvoiceStatusRequest
	if !h.bind(c, &req) {
		return
	}
	// unknown values pass through so the service rejects them after authorization
	status, err := cnst.ParseInvoiceStatus(req.Status)
	if err != nil {
		status = cnst.InvoiceStatus(req.Status)
	}
	res, err := h.svc.SetInvoiceStatus(c.Request.Context(), principal(c), id, status)
	respond(h, c, http.StatusOK, res, err)
}

func (h *Handler) SendInvoiceReminder(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	res, err := h.svc.SendInvoiceReminder(c.Request.Context(), principal(c), id)
	respond(h, c, http.StatusOK, res, err)
}

func (h *Handler) TotalDue(c *gin.Context) {
	total, err := h.svc.TotalDue(c.Request.Context(), principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, gin.H{"totalDue": total})
}

func (h *Handler) SubmitMaintenance(c *gin.Context) {
	var req dto.SubmitMaintenanceRequest
	if !h.bind(c, &req) {
		return
	}
	in := lifecycle.SubmitMaintenanceInput{
		AccommodationID: req.AccommodationID,
		Title:           req.Title,
		Description:     req.Description,
	}
	if req.Priority != "" {
		priority, err := cnst.ParseMaintenancePriority(req.Priority)
		if err != nil {
			priority = cnst.MaintenancePriority(req.Priority)
		}
		in.Priority = priority
	}
	res, err := h.svc.SubmitMaintenance(c.Request.Context(), principal(c), in)
	respond(h, c, http.StatusCreated, res, err)
}

// ListMaintenance accepts ?status= and ?open=true
func (h *Handler) ListMaintenance(c *gin.Context) {
	q := lifecycle.MaintenanceQuery{OpenOnly: c.Query("open") == "true"}
	if s := c.Query("status"); s != "" {
		status, err := cnst.ParseMaintenanceStatus(s)
		if err != nil {
			h.fail(c, errorx.Invalid(err.Error()))
			return
		}
		q.Status = status
	}
	reqs, err := h.svc.ListMaintenance(c.Request.Context(), principal(c), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, reqs)
}

func (h *Handler) GetMaintenance(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	req, err := h.svc.GetMaintenance(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, req)
}

func (h *Handler) SetMaintenanceStatus(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	var req dto.MaintenanceStatusRequest
	if !h.bind(c, &req) {
		return
	}
	status, err := cnst.ParseMaintenanceStatus(req.Status)
	if err != nil {
		status = cnst.MaintenanceStatus(req.Status)
	}
	res, err := h.svc.SetMaintenanceStatus(c.Request.Context(), principal(c), id, status, req.Notes)
	respond(h, c, http.StatusOK, res, err)
}
