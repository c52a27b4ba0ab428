package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harambee/studentliving/internal/access"
	"github.com/harambee/studentliving/internal/apiserver/database"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/errorx"
	"golang.org/x/crypto/bcrypt"
)

const (
	entityUser          = "user"
	entityAccommodation = "accommodation"
)

// ErrBadCredentials hides whether the login or the password was wrong
var ErrBadCredentials = errors.New("invalid username or password")

// UserInput carries the fields of a new user
type UserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Locale    string
	Role      cnst.Role
}

// CreateUser adds an admin or a student. Only the master admin creates accounts for others.
func (s *Service) CreateUser(ctx context.Context, p access.Principal, in UserInput) (*database.User, error) {
	if err := access.RequireRole(p, "create users", cnst.RoleMasterAdmin); err != nil {
		return nil, err
	}
	return s.createUser(ctx, in, cnst.RoleAdmin, cnst.RoleStudent)
}

// Register creates a student account for an anonymous caller
func (s *Service) Register(ctx context.Context, in UserInput) (*database.User, error) {
	in.Role = cnst.RoleStudent
	return s.createUser(ctx, in, cnst.RoleStudent)
}

func (s *Service) createUser(ctx context.Context, in UserInput, allowed ...cnst.Role) (*database.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	var v errorx.Violations
	v.Check(in.Username != "", "username is required")
	if err := s.validate.Var(in.Email, "required,email"); err != nil {
		v.Add("a valid email is required")
	}
	v.Check(len(in.Password) >= 6, "password must be at least 6 characters")
	roleOK := false
	for _, r := range allowed {
		roleOK = roleOK || in.Role == r
	}
	v.Check(roleOK, fmt.Sprintf("role %q cannot be assigned", in.Role))
	if in.Phone != "" {
		if err := s.validate.Var(in.Phone, "e164"); err != nil {
			v.Add("phone must be in international format")
		}
	}
	for _, login := range []string{in.Username, in.Email} {
		if login == "" {
			continue
		}
		_, err := s.db.GetUserByLogin(ctx, login)
		switch {
		case err == nil:
			v.Add("%s is already taken", login)
		case !errors.Is(err, database.ErrNotFound):
			return nil, err
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &database.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hashed),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Locale:    in.Locale,
		Role:      in.Role,
		IsActive:  true,
	}
	if err := s.db.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks a username or email against the stored bcrypt hash
func (s *Service) Authenticate(ctx context.Context, login, password string) (*database.User, error) {
	u, err := s.db.GetUserByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	if !u.IsActive {
		return nil, errorx.Forbidden("sign in", "account is disabled")
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, p access.Principal, role cnst.Role) ([]*database.User, error) {
	if err := access.RequireRole(p, "list users", cnst.RoleMasterAdmin); err != nil {
		return nil, err
	}
	return s.db.ListUsers(ctx, role)
}

// GetUser returns the caller's own record, or any record for the master admin
func (s *Service) GetUser(ctx context.Context, p access.Principal, id uint) (*database.User, error) {
	if !p.IsMaster() && p.UserID != id {
		return nil, errorx.Forbidden("view user", "")
	}
	u, err := s.db.GetUserByID(ctx, id)
	if err != nil {
		return nil, access.Missing(p, err, entityUser, id, "view user")
	}
	return u, nil
}

// AccommodationInput carries the editable fields of an accommodation
type AccommodationInput struct {
	Name           string
	Address        string
	Description    string
	MonthlyRent    float64
	RoomsAvailable int
	ImagePath      string
	// AdminID assigns an admin on creation; only honoured for the master admin
	AdminID uint
}

func (in AccommodationInput) violations() errorx.Violations {
	var v errorx.Violations
	v.Check(strings.TrimSpace(in.Name) != "", "name is required")
	v.Check(strings.TrimSpace(in.Address) != "", "address is required")
	v.Check(in.MonthlyRent > 0, "monthly rent must be positive")
	v.Check(in.RoomsAvailable >= 0, "rooms available cannot be negative")
	return v
}

// CreateAccommodation adds a listing. An admin creator is assigned to it.
func (s *Service) CreateAccommodation(ctx context.Context, p access.Principal, in AccommodationInput) (*database.Accommodation, error) {
	if err := access.RequireRole(p, "create accommodations", cnst.RoleMasterAdmin, cnst.RoleAdmin); err != nil {
		return nil, err
	}
	v := in.violations()
	assignee := uint(0)
	switch {
	case p.Role == cnst.RoleAdmin:
		assignee = p.UserID
	case in.AdminID != 0:
		u, err := s.db.GetUserByID(ctx, in.AdminID)
		switch {
		case errors.Is(err, database.ErrNotFound):
			v.Add("admin %d does not exist", in.AdminID)
		case err != nil:
			return nil, err
		case u.Role != cnst.RoleAdmin:
			v.Add("user %d is not an admin", in.AdminID)
		default:
			assignee = u.ID
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	acc := &database.Accommodation{
		Name:           strings.TrimSpace(in.Name),
		Address:        strings.TrimSpace(in.Address),
		Description:    in.Description,
		MonthlyRent:    in.MonthlyRent,
		RoomsAvailable: in.RoomsAvailable,
		ImagePath:      in.ImagePath,
		CreatedBy:      p.UserID,
	}
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		if err := s.db.CreateAccommodation(ctx, acc); err != nil {
			return err
		}
		if assignee != 0 {
			return s.db.AssignAdmin(ctx, assignee, acc.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

func (s *Service) UpdateAccommodation(ctx context.Context, p access.Principal, id uint, in AccommodationInput) (*database.Accommodation, error) {
	const action = "update accommodation"
	acc, err := s.db.GetAccommodation(ctx, id)
	if err != nil {
		return nil, access.Missing(p, err, entityAccommodation, id, action)
	}
	if err := s.access.Authorize(ctx, p, id, action); err != nil {
		return nil, err
	}
	if err := in.violations().Err(); err != nil {
		return nil, err
	}
	acc.Name = strings.TrimSpace(in.Name)
	acc.Address = strings.TrimSpace(in.Address)
	acc.Description = in.Description
	acc.MonthlyRent = in.MonthlyRent
	acc.RoomsAvailable = in.RoomsAvailable
	if in.ImagePath != "" {
		acc.ImagePath = in.ImagePath
	}
	if err := s.db.UpdateAccommodation(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// ListAccommodations shows admins their assigned listings. Everyone else sees those with rooms left.
func (s *Service) ListAccommodations(ctx context.Context, p access.Principal) ([]*database.Accommodation, error) {
	if !p.IsAdmin() {
		return s.db.ListAccommodations(ctx, database.AccommodationFilter{AvailableOnly: true})
	}
	scope, err := s.access.Scope(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.db.ListAccommodations(ctx, database.AccommodationFilter{Scope: scope})
}

// GetAccommodation is public for listings with rooms; admins see their own regardless
func (s *Service) GetAccommodation(ctx context.Context, p access.Principal, id uint) (*database.Accommodation, error) {
	const action = "view accommodation"
	acc, err := s.db.GetAccommodation(ctx, id)
	if err != nil {
		return nil, access.Missing(p, err, entityAccommodation, id, action)
	}
	if acc.RoomsAvailable > 0 {
		return acc, nil
	}
	if err := s.access.AuthorizeRead(ctx, p, id, action); err != nil {
		return nil, err
	}
	return acc, nil
}

// DeleteAccommodation removes a listing with no current lease
func (s *Service) DeleteAccommodation(ctx context.Context, p access.Principal, id uint) error {
	const action = "delete accommodation"
	if _, err := s.db.GetAccommodation(ctx, id); err != nil {
		return access.Missing(p, err, entityAccommodation, id, action)
	}
	if err := s.access.Authorize(ctx, p, id, action); err != nil {
		return err
	}
	today := s.today()
	return s.db.Transaction(ctx, func(ctx context.Context) error {
		n, err := s.db.CountLeases(ctx, database.LeaseFilter{
			Scope:     database.Scope{Restricted: true, AccommodationIDs: []uint{id}},
			CurrentOn: &today,
		})
		if err != nil {
			return err
		}
		if n > 0 {
			return &errorx.InvalidTransitionError{Entity: entityAccommodation, From: "occupied", To: "deleted"}
		}
		return s.db.DeleteAccommodation(ctx, id)
	})
}

// AssignAdmin grants an admin authority over an accommodation
func (s *Service) AssignAdmin(ctx context.Context, p access.Principal, adminID, accommodationID uint) error {
	const action = "assign admins"
	if err := access.RequireRole(p, action, cnst.RoleMasterAdmin); err != nil {
		return err
	}
	if _, err := s.db.GetAccommodation(ctx, accommodationID); err != nil {
		return access.Missing(p, err, entityAccommodation, accommodationID, action)
	}
	u, err := s.db.GetUserByID(ctx, adminID)
	if err != nil {
		return access.Missing(p, err, entityUser, adminID, action)
	}
	if u.Role != cnst.RoleAdmin {
		return errorx.Invalid(fmt.Sprintf("user %d is not an admin", adminID))
	}
	ok, err := s.db.IsAdminAssigned(ctx, adminID, accommodationID)
	if err != nil || ok {
		return err
	}
	return s.db.AssignAdmin(ctx, adminID, accommodationID)
}

func (s *Service) UnassignAdmin(ctx context.Context, p access.Principal, adminID, accommodationID uint) error {
	if err := access.RequireRole(p, "unassign admins", cnst.RoleMasterAdmin); err != nil {
		return err
	}
	return s.db.UnassignAdmin(ctx, adminID, accommodationID)
}

// ListAdminAccommodations lists the accommodations assigned to an admin.
// Admins may only ask about themselves.
func (s *Service) ListAdminAccommodations(ctx context.Context, p access.Principal, adminID uint) ([]*database.Accommodation, error) {
	if !p.IsMaster() && !(p.Role == cnst.RoleAdmin && p.UserID == adminID) {
		return nil, errorx.Forbidden("list admin accommodations", "")
	}
	ids, err := s.db.ListAssignedAccommodationIDs(ctx, adminID)
	if err != nil {
		return nil, err
	}
	return s.db.ListAccommodations(ctx, database.AccommodationFilter{
		Scope: database.Scope{Restricted: true, AccommodationIDs: ids},
	})
}

// Inbox lists the caller's persisted notifications, newest first
func (s *Service) Inbox(ctx context.Context, p access.Principal, unreadOnly bool) ([]*database.Notification, error) {
	if p.UserID == 0 {
		return nil, errorx.ErrUnauthenticated
	}
	return s.db.ListNotifications(ctx, p.UserID, unreadOnly)
}

// MarkRead marks one of the caller's notifications read. Other users' entries look missing.
func (s *Service) MarkRead(ctx context.Context, p access.Principal, id uint) error {
	if p.UserID == 0 {
		return errorx.ErrUnauthenticated
	}
	ok, err := s.db.MarkNotificationRead(ctx, p.UserID, id, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return access.Missing(p, database.ErrNotFound, "notification", id, "read notification")
	}
	return nil
}
