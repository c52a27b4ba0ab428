package cnst

import (
	"fmt"
	"strings"
)

// Role is the closed set of principal roles
type Role string

const (
	// RoleMasterAdmin may act on every accommodation
	RoleMasterAdmin Role = "MasterAdmin"
	// RoleAdmin may act on the accommodations it is assigned to
	RoleAdmin Role = "Admin"
	// RoleStudent is the end user role
	RoleStudent Role = "Student"
)

// Roles lists every valid role in rank order
var Roles = []Role{RoleMasterAdmin, RoleAdmin, RoleStudent}

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleMasterAdmin, RoleAdmin, RoleStudent:
		return true
	}
	return false
}

// IsAdmin reports whether r is an administrator of any tier
func (r Role) IsAdmin() bool {
	return r == RoleMasterAdmin || r == RoleAdmin
}

func (r Role) String() string { return string(r) }

// ParseRole accepts the boundary codes and the legacy snake_case spellings
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "")) {
	case "masteradmin":
		return RoleMasterAdmin, nil
	case "admin":
		return RoleAdmin, nil
	case "student":
		return RoleStudent, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
