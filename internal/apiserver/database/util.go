package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/harambee/studentliving/internal/common/cnst"
	"golang.org/x/crypto/bcrypt"
)

// InitSuperAdmin creates the master admin if no user with that username exists yet.
// It reports whether a user was created.
func InitSuperAdmin(ctx context.Context, db Database, username, email, password string) (bool, error) {
	if username == "" || password == "" {
		return false, fmt.Errorf("super admin username and password are required")
	}

	_, err := db.GetUserByLogin(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}
	if email == "" {
		email = username + "@localhost"
	}

	user := &User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Role:     cnst.RoleMasterAdmin,
		IsActive: true,
	}
	if err := db.CreateUser(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}
