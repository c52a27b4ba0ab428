package database

import (
	"time"

	"github.com/harambee/studentliving/internal/common/cnst"
)

// User is any principal: master admin, accommodation admin or student
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	FirstName string    `json:"firstName" gorm:"type:varchar(100)"`
	LastName  string    `json:"lastName" gorm:"type:varchar(100)"`
	Phone     string    `json:"phone,omitempty" gorm:"type:varchar(30)"`
	Locale    string    `json:"locale,omitempty" gorm:"type:varchar(10)"`
	Role      cnst.Role `json:"role" gorm:"type:varchar(20);not null;index"`
	IsActive  bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName joins first and last name, falling back to the username
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	}
	return u.Username
}

// Accommodation is a listing with a materialized room counter
type Accommodation struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name           string    `json:"name" gorm:"type:varchar(255);not null"`
	Address        string    `json:"address" gorm:"type:text;not null"`
	Description    string    `json:"description" gorm:"type:text"`
	MonthlyRent    float64   `json:"monthlyRent" gorm:"type:decimal(10,2);not null"`
	RoomsAvailable int       `json:"roomsAvailable" gorm:"not null;default:0"`
	ImagePath      string    `json:"imagePath,omitempty" gorm:"type:varchar(255)"`
	CreatedBy      uint      `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// AccommodationAdmin assigns an admin user to an accommodation
type AccommodationAdmin struct {
	ID              uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID          uint      `json:"userId" gorm:"not null;uniqueIndex:idx_admin_accommodation"`
	AccommodationID uint      `json:"accommodationId" gorm:"not null;uniqueIndex:idx_admin_accommodation;index"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Application is a student's request for a room
type Application struct {
	ID              uint                   `json:"id" gorm:"primaryKey;autoIncrement"`
	StudentID       uint                   `json:"studentId" gorm:"not null;index"`
	AccommodationID uint                   `json:"accommodationId" gorm:"not null;index"`
	Status          cnst.ApplicationStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	MoveInDate      time.Time              `json:"moveInDate" gorm:"not null"`
	Notes           string                 `json:"notes,omitempty" gorm:"type:text"`
	DecidedBy       *uint                  `json:"decidedBy,omitempty"`
	DecidedAt       *time.Time             `json:"decidedAt,omitempty"`
	LeasedAt        *time.Time             `json:"leasedAt,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// Lease binds a student to an accommodation for a date range.
// Its state (unsigned, signed, active, expired) is derived, see State.
type Lease struct {
	ID              uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	StudentID       uint       `json:"studentId" gorm:"not null;index"`
	AccommodationID uint       `json:"accommodationId" gorm:"not null;index"`
	ApplicationID   *uint      `json:"applicationId,omitempty"`
	StartDate       time.Time  `json:"startDate" gorm:"not null"`
	EndDate         time.Time  `json:"endDate" gorm:"not null;index"`
	MonthlyRent     float64    `json:"monthlyRent" gorm:"type:decimal(10,2);not null"`
	SecurityDeposit float64    `json:"securityDeposit" gorm:"type:decimal(10,2);not null;default:0"`
	Signed          bool       `json:"signed" gorm:"not null;default:false"`
	SignedAt        *time.Time `json:"signedAt,omitempty"`
	DocumentRef     string     `json:"documentRef,omitempty" gorm:"type:varchar(255)"`
	CreatedBy       uint       `json:"createdBy"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// State derives the lease state on the given day
func (l *Lease) State(today time.Time) cnst.LeaseState {
	today = Day(today)
	switch {
	case today.After(Day(l.EndDate)):
		return cnst.LeaseExpired
	case !l.Signed:
		return cnst.LeaseUnsigned
	case !today.Before(Day(l.StartDate)):
		return cnst.LeaseActive
	}
	return cnst.LeaseSigned
}

// IsCurrent reports whether the lease still occupies a room on the given day
func (l *Lease) IsCurrent(today time.Time) bool {
	return !Day(l.EndDate).Before(Day(today))
}

// Invoice is a charge against a lease. Status holds only unpaid or paid;
// overdue is derived by IsOverdue.
type Invoice struct {
	ID              uint               `json:"id" gorm:"primaryKey;autoIncrement"`
	LeaseID         uint               `json:"leaseId" gorm:"not null;index"`
	StudentID       uint               `json:"studentId" gorm:"not null;index"`
	AccommodationID uint               `json:"accommodationId" gorm:"not null;index"`
	Amount          float64            `json:"amount" gorm:"type:decimal(10,2);not null"`
	DueDate         time.Time          `json:"dueDate" gorm:"not null;index"`
	Description     string             `json:"description,omitempty" gorm:"type:text"`
	Status          cnst.InvoiceStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	PaidAt          *time.Time         `json:"paidAt,omitempty"`
	DocumentRef     string             `json:"documentRef,omitempty" gorm:"type:varchar(255)"`
	CreatedBy       uint               `json:"createdBy"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// IsOverdue is true iff the invoice is unpaid and its due date is strictly before now
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.Status == cnst.InvoiceUnpaid && Day(i.DueDate).Before(Day(now))
}

// EffectiveStatus is the status callers see
func (i *Invoice) EffectiveStatus(now time.Time) cnst.InvoiceStatus {
	if i.IsOverdue(now) {
		return cnst.InvoiceOverdue
	}
	return i.Status
}

// MaintenanceRequest is a repair ticket raised by a student
type MaintenanceRequest struct {
	ID              uint                     `json:"id" gorm:"primaryKey;autoIncrement"`
	StudentID       uint                     `json:"studentId" gorm:"not null;index"`
	AccommodationID uint                     `json:"accommodationId" gorm:"not null;index"`
	Title           string                   `json:"title" gorm:"type:varchar(255);not null"`
	Description     string                   `json:"description" gorm:"type:text;not null"`
	Priority        cnst.MaintenancePriority `json:"priority" gorm:"type:varchar(20);not null"`
	Status          cnst.MaintenanceStatus   `json:"status" gorm:"type:varchar(20);not null;index"`
	AdminNotes      string                   `json:"adminNotes,omitempty" gorm:"type:text"`
	CompletedAt     *time.Time               `json:"completedAt,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

// Notification is a persisted inbox entry
type Notification struct {
	ID        uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint       `json:"userId" gorm:"not null;index"`
	Event     string     `json:"event" gorm:"type:varchar(50)"`
	Subject   string     `json:"subject" gorm:"type:varchar(255);not null"`
	Message   string     `json:"message" gorm:"type:text;not null"`
	IsRead    bool       `json:"isRead" gorm:"not null;default:false"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Models lists every table in migration order
func Models() []any {
	return []any{
		&User{}, &Accommodation{}, &AccommodationAdmin{}, &Application{},
		&Lease{}, &Invoice{}, &MaintenanceRequest{}, &Notification{},
	}
}

// Day truncates t to a UTC calendar date. All date columns hold values normalized by Day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
