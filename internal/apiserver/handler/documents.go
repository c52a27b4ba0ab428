package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harambee/studentliving/internal/common/errorx"
	"github.com/harambee/studentliving/internal/document"
	"go.uber.org/zap"
)

func (h *Handler) kind(c *gin.Context) (document.Kind, bool) {
	kind, err := document.ParseKind(c.Param("kind"))
	if err != nil {
		h.fail(c, errorx.Invalid(err.Error()))
		return "", false
	}
	return kind, true
}

// RegenerateDocument re-renders a lease or invoice document
func (h *Handler) RegenerateDocument(c *gin.Context) {
	kind, valid := h.kind(c)
	if !valid {
		return
	}
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	res, err := h.svc.RegenerateDocument(c.Request.Context(), principal(c), kind, id)
	respond(h, c, http.StatusOK, res, err)
}

// DownloadDocument streams the stored document of an entity the caller can see
func (h *Handler) DownloadDocument(c *gin.Context) {
	kind, valid := h.kind(c)
	if !valid {
		return
	}
	id, valid := h.id(c, "id")
	if !valid {
		return
	}
	ref, err := h.svc.DocumentRef(c.Request.Context(), principal(c), kind, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	body, err := h.docs.Open(c.Request.Context(), ref)
	if err != nil {
		h.logger.Error("failed to open document", zap.String("ref", ref), zap.Error(err))
		h.fail(c, &errorx.DependencyFailure{Dependency: "document store", Entity: string(kind), EntityID: id, Err: err})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s-%d.html"`, kind, id))
	c.DataFromReader(http.StatusOK, body.Size(), document.ContentType(), body, nil)
}
