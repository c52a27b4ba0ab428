package errorx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const traceIDKey = "trace_id"

// ErrorHandler provides unified error handling capabilities
type ErrorHandler struct {
	logger *zap.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// HandleError converts any error to APIError and writes the HTTP response
func (h *ErrorHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	apiErr := ConvertToAPIError(err)
	apiErr.TraceID = ExtractTraceID(c)
	apiErr.Timestamp = time.Now().UTC().Format(time.RFC3339)

	h.logError(c, apiErr, err)

	c.AbortWithStatusJSON(apiErr.HTTPStatus, gin.H{
		"error": apiErr,
	})
}

// ConvertToAPIError maps the domain taxonomy onto APIError
func ConvertToAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	kind := KindOf(err)
	out := newAPIError(kind, err.Error())

	var (
		val *ValidationError
		tr  *InvalidTransitionError
		cp  *CapacityError
		dep *DependencyFailure
		nf  *NotFoundError
	)
	switch {
	case errors.As(err, &val):
		out.Message = "request failed validation"
		out.WithDetail("violations", val.Violations)
	case errors.As(err, &tr):
		out.WithDetail("entity", tr.Entity).WithDetail("from", tr.From).WithDetail("to", tr.To)
	case errors.As(err, &cp):
		out.WithDetail("accommodation_id", cp.AccommodationID)
	case errors.As(err, &dep):
		out.WithDetail("dependency", dep.Dependency).
			WithDetail("entity", dep.Entity).
			WithDetail("entity_id", dep.EntityID).
			WithDetail("committed", true)
	case errors.As(err, &nf):
		out.WithDetail("entity", nf.Entity).WithDetail("id", nf.ID)
	case kind == KindInternal:
		out.Message = "Internal server error occurred"
	}
	return out
}

// logError logs the error with request context, adding a stack trace for critical errors
func (h *ErrorHandler) logError(c *gin.Context, apiErr *APIError, originalErr error) {
	fields := []zap.Field{
		zap.String("trace_id", apiErr.TraceID),
		zap.String("error_code", apiErr.Code),
		zap.String("kind", string(apiErr.Kind)),
		zap.Int("http_status", apiErr.HTTPStatus),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("client_ip", c.ClientIP()),
	}
	if originalErr != nil {
		fields = append(fields, zap.Error(originalErr))
	}
	if len(apiErr.Details) > 0 {
		detailsJSON, _ := json.Marshal(apiErr.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	switch apiErr.Severity {
	case SeverityInfo:
		h.logger.Info(apiErr.Message, fields...)
	case SeverityWarning:
		h.logger.Warn(apiErr.Message, fields...)
	case SeverityCritical:
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		h.logger.Error(apiErr.Message, append(fields, zap.String("stack_trace", string(buf[:n])))...)
	default:
		h.logger.Error(apiErr.Message, fields...)
	}
}

// ErrorMiddleware writes the last error attached with c.Error
func (h *ErrorHandler) ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 && !c.Writer.Written() {
			h.HandleError(c, c.Errors.Last().Err)
		}
	}
}

// RecoveryMiddleware returns a gin middleware for panic recovery
func (h *ErrorHandler) RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		panicErr := newAPIError(KindInternal, "Server panic occurred").
			WithDetail("panic", fmt.Sprintf("%v", recovered))
		h.HandleError(c, panicErr)
	})
}

// ExtractTraceID returns the request trace id, creating one when absent
func ExtractTraceID(c *gin.Context) string {
	if traceID := c.GetString(traceIDKey); traceID != "" {
		return traceID
	}
	traceID := c.GetHeader("X-Trace-Id")
	if traceID == "" {
		traceID = uuid.New().String()
	}
	c.Set(traceIDKey, traceID)
	return traceID
}

// Unauthenticated is the error written by the auth middleware
func Unauthenticated(reason string) *APIError {
	e := newAPIError(KindUnauthenticated, reason)
	if reason == "" {
		e.Message = http.StatusText(http.StatusUnauthorized)
	}
	return e
}
