package errorx

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies the outcome of a lifecycle operation
type Kind string

const (
	KindNone              Kind = ""
	KindUnauthenticated   Kind = "unauthenticated"
	KindAuthorization     Kind = "authorization"
	KindValidation        Kind = "validation"
	KindInvalidTransition Kind = "invalid_transition"
	KindCapacity          Kind = "capacity"
	KindDependency        Kind = "dependency_failure"
	KindNotFound          Kind = "not_found"
	KindInternal          Kind = "internal"
)

// ErrUnauthenticated is returned when no principal could be established
var ErrUnauthenticated = errors.New("authentication required")

// AuthorizationError means the principal may not act on the target.
// Missing targets are reported as AuthorizationError to non-master principals.
type AuthorizationError struct {
	Action string
	Reason string
}

func (e *AuthorizationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("not authorized to %s", e.Action)
	}
	return fmt.Sprintf("not authorized to %s: %s", e.Action, e.Reason)
}

// Forbidden builds an AuthorizationError
func Forbidden(action, reason string) error {
	return &AuthorizationError{Action: action, Reason: reason}
}

// ValidationError carries every violated rule of a request
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// Violations accumulates rule failures before a single ValidationError is returned
type Violations []string

// Add records a violation
func (v *Violations) Add(format string, args ...any) {
	*v = append(*v, fmt.Sprintf(format, args...))
}

// Check records msg when ok is false
func (v *Violations) Check(ok bool, msg string) {
	if !ok {
		*v = append(*v, msg)
	}
}

// Err returns nil when nothing was recorded
func (v Violations) Err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Violations: append([]string(nil), v...)}
}

// Invalid builds a ValidationError from the given violations
func Invalid(violations ...string) error {
	return &ValidationError{Violations: violations}
}

// InvalidTransitionError means the entity is not in a state that permits the change
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
}

// CapacityError means the accommodation has no room left
type CapacityError struct {
	AccommodationID uint
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("accommodation %d has no rooms available", e.AccommodationID)
}

// DependencyFailure means a committed change could not complete an external step.
// The entity change stands; Entity and EntityID identify it for retry.
type DependencyFailure struct {
	Dependency string
	Entity     string
	EntityID   uint
	Err        error
}

func (e *DependencyFailure) Error() string {
	return fmt.Sprintf("%s %d was saved but %s failed: %v", e.Entity, e.EntityID, e.Dependency, e.Err)
}

func (e *DependencyFailure) Unwrap() error { return e.Err }

// NotFoundError is only surfaced to master admins
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// NotificationFailure describes a recipient whose notification could not be delivered.
// It is reported alongside a successful result, never as the returned error.
type NotificationFailure struct {
	RecipientID uint   `json:"recipient_id"`
	Event       string `json:"event"`
	Reason      string `json:"reason"`
}

func (f NotificationFailure) Error() string {
	return fmt.Sprintf("notification %s to user %d failed: %s", f.Event, f.RecipientID, f.Reason)
}

// KindOf classifies err
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var (
		authz *AuthorizationError
		val   *ValidationError
		tr    *InvalidTransitionError
		cp    *CapacityError
		dep   *DependencyFailure
		nf    *NotFoundError
		api   *APIError
	)
	switch {
	case errors.As(err, &api):
		return api.Kind
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.As(err, &authz):
		return KindAuthorization
	case errors.As(err, &val):
		return KindValidation
	case errors.As(err, &tr):
		return KindInvalidTransition
	case errors.As(err, &cp):
		return KindCapacity
	case errors.As(err, &dep):
		return KindDependency
	case errors.As(err, &nf):
		return KindNotFound
	}
	return KindInternal
}

// Changed reports whether the operation that returned err committed its state change
func Changed(err error) bool {
	var dep *DependencyFailure
	return err == nil || errors.As(err, &dep)
}
