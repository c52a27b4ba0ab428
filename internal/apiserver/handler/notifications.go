package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harambee/studentliving/internal/common/dto"
	"github.com/harambee/studentliving/internal/common/errorx"
	"github.com/harambee/studentliving/internal/lifecycle"
	"github.com/harambee/studentliving/internal/notify"
)

// NotifyStudents sends an announcement to a group of students
func (h *Handler) NotifyStudents(c *gin.Context) {
	var req dto.NotifyStudentsRequest
	if !h.bind(c, &req) {
		return
	}
	channels := make([]notify.Channel, 0, len(req.Channels))
	for _, name := range req.Channels {
		ch, err := notify.ParseChannel(name)
		if err != nil {
			h.fail(c, errorx.Invalid(err.Error()))
			return
		}
		channels = append(channels, ch)
	}
	res, err := h.svc.NotifyStudents(c.Request.Context(), principal(c), lifecycle.BulkInput{
		Target:          lifecycle.Target(req.Target),
		AccommodationID: req.AccommodationID,
		StudentIDs:      req.StudentIDs,
		Subject:         req.Subject,
		Message:         req.Message,
		Channels:        channels,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, res)
}

// Inbox lists the caller's in-app notifications; ?unread=true hides read ones
func (h *Handler) Inbox(c *gin.Context) {
	items, err := h.svc.Inbox(c.Request.Context(), principal(c), c.Query("unread") == "true")
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, items)
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), principal(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.svc.Dashboard(c.Request.Context(), principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, d)
}
