package errorx

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryValidation     ErrorCategory = "validation"
	CategoryAuthentication ErrorCategory = "authentication"
	CategoryAuthorization  ErrorCategory = "authorization"
	CategoryNotFound       ErrorCategory = "not_found"
	CategoryConflict       ErrorCategory = "conflict"
	CategoryExternal       ErrorCategory = "external"
	CategoryInternal       ErrorCategory = "internal"
)

// Severity represents the severity level of an error
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// APIError is the response body shape of every failed request
type APIError struct {
	Code       string         `json:"code"`
	Kind       Kind           `json:"kind"`
	Message    string         `json:"message"`
	Category   ErrorCategory  `json:"category"`
	Severity   Severity       `json:"severity"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	TraceID    string         `json:"trace_id,omitempty"`
	Timestamp  string         `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Category, e.Message)
}

// JSON returns the error as a JSON string
func (e *APIError) JSON() string {
	out, _ := json.Marshal(e)
	return string(out)
}

// WithDetail adds a detail to the error
func (e *APIError) WithDetail(key string, value any) *APIError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// codes for each Kind; E1xxx client input, E2xxx/E3xxx identity, E4xxx state, E5xxx server
var kindTable = map[Kind]struct {
	code     string
	category ErrorCategory
	severity Severity
	status   int
}{
	KindValidation:        {"E1001", CategoryValidation, SeverityInfo, http.StatusUnprocessableEntity},
	KindUnauthenticated:   {"E2001", CategoryAuthentication, SeverityInfo, http.StatusUnauthorized},
	KindAuthorization:     {"E3001", CategoryAuthorization, SeverityWarning, http.StatusForbidden},
	KindNotFound:          {"E4001", CategoryNotFound, SeverityInfo, http.StatusNotFound},
	KindInvalidTransition: {"E4091", CategoryConflict, SeverityInfo, http.StatusConflict},
	KindCapacity:          {"E4092", CategoryConflict, SeverityInfo, http.StatusConflict},
	KindDependency:        {"E5021", CategoryExternal, SeverityError, http.StatusBadGateway},
	KindInternal:          {"E5001", CategoryInternal, SeverityCritical, http.StatusInternalServerError},
}

// newAPIError builds a fresh APIError for kind
func newAPIError(kind Kind, message string) *APIError {
	row, ok := kindTable[kind]
	if !ok {
		row = kindTable[KindInternal]
		kind = KindInternal
	}
	return &APIError{
		Code:       row.code,
		Kind:       kind,
		Message:    message,
		Category:   row.category,
		Severity:   row.severity,
		HTTPStatus: row.status,
	}
}

// StatusOf returns the HTTP status for err
func StatusOf(err error) int {
	return newAPIError(KindOf(err), "").HTTPStatus
}
