package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/harambee/studentliving/internal/apiserver/database"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/errorx"
)

// Principal is the authenticated caller of an operation
type Principal struct {
	UserID uint
	Role   cnst.Role
}

func (p Principal) IsMaster() bool  { return p.Role == cnst.RoleMasterAdmin }
func (p Principal) IsAdmin() bool   { return p.Role.IsAdmin() }
func (p Principal) IsStudent() bool { return p.Role == cnst.RoleStudent }

func (p Principal) String() string { return fmt.Sprintf("%s#%d", p.Role, p.UserID) }

// Directory is the subset of the store the resolver reads
type Directory interface {
	IsAdminAssigned(ctx context.Context, userID, accommodationID uint) (bool, error)
	ListAssignedAccommodationIDs(ctx context.Context, userID uint) ([]uint, error)
	StudentHasRelation(ctx context.Context, studentID, accommodationID uint) (bool, error)
}

// Resolver decides whether a principal may act on an accommodation
type Resolver struct {
	dir Directory
}

func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// CanAct reports whether p may act on the accommodation. Students only ever get read access.
func (r *Resolver) CanAct(ctx context.Context, p Principal, accommodationID uint) (bool, error) {
	switch p.Role {
	case cnst.RoleMasterAdmin:
		return true, nil
	case cnst.RoleAdmin:
		return r.dir.IsAdminAssigned(ctx, p.UserID, accommodationID)
	case cnst.RoleStudent:
		return r.dir.StudentHasRelation(ctx, p.UserID, accommodationID)
	}
	return false, nil
}

// Authorize returns an AuthorizationError unless p is an admin in scope of the accommodation
func (r *Resolver) Authorize(ctx context.Context, p Principal, accommodationID uint, action string) error {
	if !p.IsAdmin() {
		return errorx.Forbidden(action, "administrator role required")
	}
	ok, err := r.CanAct(ctx, p, accommodationID)
	if err != nil {
		return err
	}
	if !ok {
		return errorx.Forbidden(action, fmt.Sprintf("not assigned to accommodation %d", accommodationID))
	}
	return nil
}

// AuthorizeRead is Authorize extended to students related to the accommodation
func (r *Resolver) AuthorizeRead(ctx context.Context, p Principal, accommodationID uint, action string) error {
	ok, err := r.CanAct(ctx, p, accommodationID)
	if err != nil {
		return err
	}
	if !ok {
		return errorx.Forbidden(action, fmt.Sprintf("accommodation %d is out of scope", accommodationID))
	}
	return nil
}

// Scope returns the query scope of p
func (r *Resolver) Scope(ctx context.Context, p Principal) (database.Scope, error) {
	switch p.Role {
	case cnst.RoleMasterAdmin:
		return database.Scope{}, nil
	case cnst.RoleAdmin:
		ids, err := r.dir.ListAssignedAccommodationIDs(ctx, p.UserID)
		if err != nil {
			return database.Scope{}, err
		}
		return database.Scope{Restricted: true, AccommodationIDs: ids}, nil
	case cnst.RoleStudent:
		return database.Scope{StudentID: p.UserID}, nil
	}
	return database.Scope{Restricted: true}, nil
}

// RequireRole refuses principals outside roles
func RequireRole(p Principal, action string, roles ...cnst.Role) error {
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return errorx.Forbidden(action, fmt.Sprintf("role %s may not perform this action", p.Role))
}

// Missing converts a lookup miss. Only master admins learn that the entity does not exist.
func Missing(p Principal, err error, entity string, id uint, action string) error {
	if !errors.Is(err, database.ErrNotFound) {
		return err
	}
	if p.IsMaster() {
		return &errorx.NotFoundError{Entity: entity, ID: id}
	}
	return errorx.Forbidden(action, "")
}
