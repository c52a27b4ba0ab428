package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/dto"
	"github.com/harambee/studentliving/internal/common/errorx"
	"github.com/harambee/studentliving/internal/lifecycle"
)

// CreateUser handles user creation by the master admin
func (h *Handler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.bind(c, &req) {
		return
	}
	in := userInput(req.RegisterRequest)
	in.Role = req.Role
	user, err := h.svc.CreateUser(c.Request.Context(), principal(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// ListUsers handles listing users, optionally by ?role=
func (h *Handler) ListUsers(c *gin.Context) {
	var role cnst.Role
	if r := c.Query("role"); r != "" {
		var err error
		if role, err = cnst.ParseRole(r); err != nil {
			h.fail(c, errorx.Invalid(err.Error()))
			return
		}
	}
	users, err := h.svc.ListUsers(c.Request.Context(), principal(c), role)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	user, err := h.svc.GetUser(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, user)
}

func accommodationInput(req dto.AccommodationRequest) lifecycle.AccommodationInput {
	return lifecycle.AccommodationInput{
		Name:           req.Name,
		Address:        req.Address,
		Description:    req.Description,
		MonthlyRent:    req.MonthlyRent,
		RoomsAvailable: req.RoomsAvailable,
		ImagePath:      req.ImagePath,
		AdminID:        req.AdminID,
	}
}

func (h *Handler) CreateAccommodation(c *gin.Context) {
	var req dto.AccommodationRequest
	if !h.bind(c, &req) {
		return
	}
	acc, err := h.svc.CreateAccommodation(c.Request.Context(), principal(c), accommodationInput(req))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, acc)
}

func (h *Handler) UpdateAccommodation(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	var req dto.AccommodationRequest
	if !h.bind(c, &req) {
		return
	}
	acc, err := h.svc.UpdateAccommodation(c.Request.Context(), principal(c), id, accommodationInput(req))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, acc)
}

// ListAccommodations is public; admins see the accommodations assigned to them
func (h *Handler) ListAccommodations(c *gin.Context) {
	accs, err := h.svc.ListAccommodations(c.Request.Context(), principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, accs)
}

func (h *Handler) GetAccommodation(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	acc, err := h.svc.GetAccommodation(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, acc)
}

func (h *Handler) DeleteAccommodation(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	if err := h.svc.DeleteAccommodation(c.Request.Context(), principal(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AssignAdmin(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	var req dto.AssignAdminRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.svc.AssignAdmin(c.Request.Context(), principal(c), req.AdminID, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UnassignAdmin(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	adminID, valid := h.id(c, "adminId")
	if !valid {
		return
	}
	if err := h.svc.UnassignAdmin(c.Request.Context(), principal(c), adminID, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListAdminAccommodations(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	accs, err := h.svc.ListAdminAccommodations(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, accs)
}
