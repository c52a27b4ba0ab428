package database

import (
	"context"
	"time"

	"github.com/harambee/studentliving/internal/common/cnst"
)

// Scope narrows a query to what a principal may see.
// A zero Scope sees everything.
type Scope struct {
	// Restricted limits rows to AccommodationIDs; an empty list then matches nothing
	Restricted       bool
	AccommodationIDs []uint
	// StudentID, when set, limits rows to the student's own
	StudentID uint
}

type ApplicationFilter struct {
	Scope
	Status cnst.ApplicationStatus
}

type LeaseFilter struct {
	Scope
	// CurrentOn keeps leases with end_date on or after the day
	CurrentOn      *time.Time
	DocumentedOnly bool
}

type InvoiceFilter struct {
	Scope
	LeaseID uint
	// Status is the effective status; overdue and unpaid are resolved against Today
	Status         cnst.InvoiceStatus
	Today          time.Time
	DocumentedOnly bool
}

type MaintenanceFilter struct {
	Scope
	Status   cnst.MaintenanceStatus
	OpenOnly bool
}

type AccommodationFilter struct {
	Scope
	AvailableOnly bool
}

// Database defines the methods for database operations.
type Database interface {
	// Close closes the database connection.
	Close() error

	// Transaction runs fn in a transaction carried by the context passed to fn.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uint) (*User, error)
	// GetUserByLogin finds a user by username or email.
	GetUserByLogin(ctx context.Context, login string) (*User, error)
	GetUsersByIDs(ctx context.Context, ids []uint) ([]*User, error)
	ListUsers(ctx context.Context, role cnst.Role) ([]*User, error)
	UpdateUser(ctx context.Context, user *User) error

	CreateAccommodation(ctx context.Context, acc *Accommodation) error
	GetAccommodation(ctx context.Context, id uint) (*Accommodation, error)
	UpdateAccommodation(ctx context.Context, acc *Accommodation) error
	ListAccommodations(ctx context.Context, filter AccommodationFilter) ([]*Accommodation, error)
	// DeleteAccommodation removes the accommodation and every row that references it.
	DeleteAccommodation(ctx context.Context, id uint) error
	// ReserveRoom decrements rooms_available if it is positive and reports whether it did.
	ReserveRoom(ctx context.Context, accommodationID uint) (bool, error)

	AssignAdmin(ctx context.Context, userID, accommodationID uint) error
	UnassignAdmin(ctx context.Context, userID, accommodationID uint) error
	IsAdminAssigned(ctx context.Context, userID, accommodationID uint) (bool, error)
	ListAssignedAccommodationIDs(ctx context.Context, userID uint) ([]uint, error)
	ListAccommodationAdminIDs(ctx context.Context, accommodationID uint) ([]uint, error)
	// StudentHasRelation reports whether the student owns an application or lease for the accommodation.
	StudentHasRelation(ctx context.Context, studentID, accommodationID uint) (bool, error)

	CreateApplication(ctx context.Context, app *Application) error
	GetApplication(ctx context.Context, id uint) (*Application, error)
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]*Application, error)
	CountApplications(ctx context.Context, filter ApplicationFilter) (int64, error)
	// TransitionApplication moves the application from one status to another and reports
	// whether the row was still in the expected status.
	TransitionApplication(ctx context.Context, id uint, from, to cnst.ApplicationStatus, decidedBy uint, at time.Time) (bool, error)
	HasPendingApplication(ctx context.Context, studentID, accommodationID uint) (bool, error)
	// ClaimApplication marks an approved application as leased and reports whether this call did it.
	ClaimApplication(ctx context.Context, id uint, at time.Time) (bool, error)

	CreateLease(ctx context.Context, lease *Lease) error
	GetLease(ctx context.Context, id uint) (*Lease, error)
	ListLeases(ctx context.Context, filter LeaseFilter) ([]*Lease, error)
	CountLeases(ctx context.Context, filter LeaseFilter) (int64, error)
	// SignLease sets signed once and reports whether this call did it.
	SignLease(ctx context.Context, id uint, at time.Time) (bool, error)
	// ShortenLease rewrites end_date only if it still equals currentEnd.
	ShortenLease(ctx context.Context, id uint, currentEnd, newEnd time.Time) (bool, error)
	SetLeaseDocument(ctx context.Context, id uint, ref string) error
	// ActiveLeaseStudentIDs returns the distinct students holding a lease current on the day.
	ActiveLeaseStudentIDs(ctx context.Context, scope Scope, today time.Time) ([]uint, error)

	CreateInvoice(ctx context.Context, invoice *Invoice) error
	GetInvoice(ctx context.Context, id uint) (*Invoice, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]*Invoice, error)
	CountInvoices(ctx context.Context, filter InvoiceFilter) (int64, error)
	SetInvoiceStatus(ctx context.Context, id uint, status cnst.InvoiceStatus, paidAt *time.Time) error
	SetInvoiceDocument(ctx context.Context, id uint, ref string) error
	// SumUnpaid totals the student's unpaid invoices, overdue ones included.
	SumUnpaid(ctx context.Context, studentID uint) (float64, error)

	CreateMaintenance(ctx context.Context, req *MaintenanceRequest) error
	GetMaintenance(ctx context.Context, id uint) (*MaintenanceRequest, error)
	// ListMaintenance orders by priority rank, then newest first.
	ListMaintenance(ctx context.Context, filter MaintenanceFilter) ([]*MaintenanceRequest, error)
	CountMaintenance(ctx context.Context, filter MaintenanceFilter) (int64, error)
	// UpdateMaintenance applies the change only if the status still equals from.
	UpdateMaintenance(ctx context.Context, id uint, from cnst.MaintenanceStatus, to cnst.MaintenanceStatus, notes *string, completedAt *time.Time) (bool, error)

	CreateNotification(ctx context.Context, n *Notification) error
	ListNotifications(ctx context.Context, userID uint, unreadOnly bool) ([]*Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id uint, at time.Time) (bool, error)
}
