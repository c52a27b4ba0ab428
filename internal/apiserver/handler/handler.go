package handler

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harambee/studentliving/internal/access"
	"github.com/harambee/studentliving/internal/apiserver/middleware"
	"github.com/harambee/studentliving/internal/auth/jwt"
	"github.com/harambee/studentliving/internal/common/errorx"
	"github.com/harambee/studentliving/internal/lifecycle"
	"go.uber.org/zap"
)

// DocumentReader opens a stored document by reference
type DocumentReader interface {
	Open(ctx context.Context, ref string) (*bytes.Reader, error)
}

// Handler serves the housing API
type Handler struct {
	svc    *lifecycle.Service
	jwt    *jwt.Service
	docs   DocumentReader
	errs   *errorx.ErrorHandler
	logger *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(logger *zap.Logger, svc *lifecycle.Service, jwtService *jwt.Service, docs DocumentReader) *Handler {
	return &Handler{
		svc:    svc,
		jwt:    jwtService,
		docs:   docs,
		errs:   errorx.NewErrorHandler(logger),
		logger: logger.Named("handler"),
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.errs.HandleError(c, err)
}

// bind decodes the JSON body; shape errors become a ValidationError
func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.fail(c, errorx.FromBinding(err))
		return false
	}
	return true
}

func principal(c *gin.Context) access.Principal {
	p, _ := middleware.PrincipalFrom(c)
	return p
}

func (h *Handler) id(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		h.fail(c, errorx.Invalid(name+" must be a positive integer"))
		return 0, false
	}
	return uint(v), true
}

// parseDay reads YYYY-MM-DD; an empty string is the zero time
func parseDay(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// respond writes a lifecycle result. A DependencyFailure still carries the committed entity.
func respond[T any](h *Handler, c *gin.Context, status int, res lifecycle.Result[T], err error) {
	if err == nil {
		c.JSON(status, res)
		return
	}
	if !errorx.Changed(err) {
		h.fail(c, err)
		return
	}
	apiErr := errorx.ConvertToAPIError(err)
	apiErr.TraceID = errorx.ExtractTraceID(c)
	h.logger.Warn("change committed with a failed dependency",
		zap.String("trace_id", apiErr.TraceID),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	c.JSON(apiErr.HTTPStatus, gin.H{
		"error":    apiErr,
		"entity":   res.Entity,
		"warnings": res.Warnings,
	})
}

func ok(c *gin.Context, v any) {
	c.JSON(http.StatusOK, v)
}
