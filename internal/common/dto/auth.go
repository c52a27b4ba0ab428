package dto

import "github.com/harambee/studentliving/internal/common/cnst"

// LoginRequest accepts a username or an email in Username
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest is a student's self-registration
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"firstName" binding:"max=100"`
	LastName  string `json:"lastName" binding:"max=100"`
	Phone     string `json:"phone,omitempty"`
	Locale    string `json:"locale,omitempty" binding:"omitempty,oneof=en zh"`
}

// CreateUserRequest represents a request to create a new user
type CreateUserRequest struct {
	RegisterRequest
	Role cnst.Role `json:"role" binding:"required"`
}

// AssignAdminRequest names the admin to assign
type AssignAdminRequest struct {
	AdminID uint `json:"adminId" binding:"required"`
}
