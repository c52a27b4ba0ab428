package database

import (
	"context"
	"errors"
	"time"

	"github.com/harambee/studentliving/internal/common/cnst"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned by single-row lookups that match nothing
var ErrNotFound = errors.New("record not found")

// store holds the gorm implementation shared by every driver
type store struct {
	db *gorm.DB
}

func (s *store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return getDBFromContext(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		return fn(ContextWithTransaction(ctx, tx))
	})
}

func first[T any](ctx context.Context, db *gorm.DB, query string, args ...any) (*T, error) {
	var out T
	err := getDBFromContext(ctx, db).Where(query, args...).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// applyScope restricts q to the scope; column prefixes are left to the caller's table
func applyScope(q *gorm.DB, sc Scope) *gorm.DB {
	if sc.Restricted {
		if len(sc.AccommodationIDs) == 0 {
			return q.Where("1 = 0")
		}
		q = q.Where("accommodation_id IN ?", sc.AccommodationIDs)
	}
	if sc.StudentID != 0 {
		q = q.Where("student_id = ?", sc.StudentID)
	}
	return q
}

// Users

func (s *store) CreateUser(ctx context.Context, user *User) error {
	return getDBFromContext(ctx, s.db).Create(user).Error
}

func (s *store) GetUserByID(ctx context.Context, id uint) (*User, error) {
	return first[User](ctx, s.db, "id = ?", id)
}

func (s *store) GetUserByLogin(ctx context.Context, login string) (*User, error) {
	return first[User](ctx, s.db, "username = ? OR email = ?", login, login)
}

func (s *store) GetUsersByIDs(ctx context.Context, ids []uint) ([]*User, error) {
	var users []*User
	if len(ids) == 0 {
		return users, nil
	}
	err := getDBFromContext(ctx, s.db).Where("id IN ?", ids).Order("id").Find(&users).Error
	return users, err
}

func (s *store) ListUsers(ctx context.Context, role cnst.Role) ([]*User, error) {
	var users []*User
	q := getDBFromContext(ctx, s.db).Order("id")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	err := q.Find(&users).Error
	return users, err
}

// UpdateUser saves contact fields; role is immutable after creation
func (s *store) UpdateUser(ctx context.Context, user *User) error {
	return getDBFromContext(ctx, s.db).Model(&User{}).Where("id = ?", user.ID).
		Updates(map[string]any{
			"email":      user.Email,
			"password":   user.Password,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"phone":      user.Phone,
			"locale":     user.Locale,
			"is_active":  user.IsActive,
			"updated_at": time.Now(),
		}).Error
}

// Accommodations

func (s *store) CreateAccommodation(ctx context.Context, acc *Accommodation) error {
	return getDBFromContext(ctx, s.db).Create(acc).Error
}

func (s *store) GetAccommodation(ctx context.Context, id uint) (*Accommodation, error) {
	return first[Accommodation](ctx, s.db, "id = ?", id)
}

func (s *store) UpdateAccommodation(ctx context.Context, acc *Accommodation) error {
	return getDBFromContext(ctx, s.db).Model(&Accommodation{}).Where("id = ?", acc.ID).
		Updates(map[string]any{
			"name":            acc.Name,
			"address":         acc.Address,
			"description":     acc.Description,
			"monthly_rent":    acc.MonthlyRent,
			"rooms_available": acc.RoomsAvailable,
			"image_path":      acc.ImagePath,
			"updated_at":      time.Now(),
		}).Error
}

func (s *store) ListAccommodations(ctx context.Context, filter AccommodationFilter) ([]*Accommodation, error) {
	var out []*Accommodation
	q := getDBFromContext(ctx, s.db).Model(&Accommodation{})
	if filter.Restricted {
		if len(filter.AccommodationIDs) == 0 {
			return out, nil
		}
		q = q.Where("id IN ?", filter.AccommodationIDs)
	}
	if filter.AvailableOnly {
		q = q.Where("rooms_available > 0")
	}
	err := q.Order("name, id").Find(&out).Error
	return out, err
}

func (s *store) DeleteAccommodation(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		tx := getDBFromContext(ctx, s.db)
		steps := []any{&Invoice{}, &MaintenanceRequest{}, &Lease{}, &Application{}, &AccommodationAdmin{}}
		for _, m := range steps {
			if err := tx.Where("accommodation_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&Accommodation{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *store) ReserveRoom(ctx context.Context, accommodationID uint) (bool, error) {
	res := getDBFromContext(ctx, s.db).Model(&Accommodation{}).
		Where("id = ? AND rooms_available > 0", accommodationID).
		Updates(map[string]any{
			"rooms_available": gorm.Expr("rooms_available - 1"),
			"updated_at":      time.Now(),
		})
	return res.RowsAffected == 1, res.Error
}

// Assignments

func (s *store) AssignAdmin(ctx context.Context, userID, accommodationID uint) error {
	return getDBFromContext(ctx, s.db).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&AccommodationAdmin{UserID: userID, AccommodationID: accommodationID}).Error
}

func (s *store) UnassignAdmin(ctx context.Context, userID, accommodationID uint) error {
	return getDBFromContext(ctx, s.db).
		Where("user_id = ? AND accommodation_id = ?", userID, accommodationID).
		Delete(&AccommodationAdmin{}).Error
}

func (s *store) IsAdminAssigned(ctx context.Context, userID, accommodationID uint) (bool, error) {
	var count int64
	err := getDBFromContext(ctx, s.db).Model(&AccommodationAdmin{}).
		Where("user_id = ? AND accommodation_id = ?", userID, accommodationID).
		Count(&count).Error
	return count > 0, err
}

func (s *store) ListAssignedAccommodationIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := getDBFromContext(ctx, s.db).Model(&AccommodationAdmin{}).
		Where("user_id = ?", userID).Order("accommodation_id").
		Pluck("accommodation_id", &ids).Error
	return ids, err
}

func (s *store) ListAccommodationAdminIDs(ctx context.Context, accommodationID uint) ([]uint, error) {
	ids := []uint{}
	err := getDBFromContext(ctx, s.db).Model(&AccommodationAdmin{}).
		Where("accommodation_id = ?", accommodationID).Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (s *store) StudentHasRelation(ctx context.Context, studentID, accommodationID uint) (bool, error) {
	db := getDBFromContext(ctx, s.db)
	for _, m := range []any{&Lease{}, &Application{}} {
		var count int64
		if err := db.Model(m).Where("student_id = ? AND accommodation_id = ?", studentID, accommodationID).
			Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

// Applications

func (s *store) CreateApplication(ctx context.Context, app *Application) error {
	return getDBFromContext(ctx, s.db).Create(app).Error
}

func (s *store) GetApplication(ctx context.Context, id uint) (*Application, error) {
	return first[Application](ctx, s.db, "id = ?", id)
}

func (s *store) applicationQuery(ctx context.Context, f ApplicationFilter) *gorm.DB {
	q := applyScope(getDBFromContext(ctx, s.db).Model(&Application{}), f.Scope)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

func (s *store) ListApplications(ctx context.Context, filter ApplicationFilter) ([]*Application, error) {
	var out []*Application
	err := s.applicationQuery(ctx, filter).Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (s *store) CountApplications(ctx context.Context, filter ApplicationFilter) (int64, error) {
	var n int64
	err := s.applicationQuery(ctx, filter).Count(&n).Error
	return n, err
}

func (s *store) TransitionApplication(ctx context.Context, id uint, from, to cnst.ApplicationStatus, decidedBy uint, at time.Time) (bool, error) {
	res := getDBFromContext(ctx, s.db).Model(&Application{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"decided_by": decidedBy,
			"decided_at": at,
			"updated_at": at,
		})
	return res.RowsAffected == 1, res.Error
}

func (s *store) ClaimApplication(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := getDBFromContext(ctx, s.db).Model(&Application{}).
		Where("id = ? AND status = ? AND leased_at IS NULL", id, cnst.ApplicationApproved).
		Updates(map[string]any{
			"leased_at":  at,
			"updated_at": at,
		})
	return res.RowsAffected == 1, res.Error
}

func (s *store) HasPendingApplication(ctx context.Context, studentID, accommodationID uint) (bool, error) {
	n, err := s.CountApplications(ctx, ApplicationFilter{
		Scope:  Scope{Restricted: true, AccommodationIDs: []uint{accommodationID}, StudentID: studentID},
		Status: cnst.ApplicationPending,
	})
	return n > 0, err
}

// Leases

func (s *store) CreateLease(ctx context.Context, lease *Lease) error {
	return getDBFromContext(ctx, s.db).Create(lease).Error
}

func (s *store) GetLease(ctx context.Context, id uint) (*Lease, error) {
	return first[Lease](ctx, s.db, "id = ?", id)
}

func (s *store) leaseQuery(ctx context.Context, f LeaseFilter) *gorm.DB {
	q := applyScope(getDBFromContext(ctx, s.db).Model(&Lease{}), f.Scope)
	if f.CurrentOn != nil {
		q = q.Where("end_date >= ?", Day(*f.CurrentOn))
	}
	if f.DocumentedOnly {
		q = q.Where("document_ref <> ''")
	}
	return q
}

func (s *store) ListLeases(ctx context.Context, filter LeaseFilter) ([]*Lease, error) {
	var out []*Lease
	err := s.leaseQuery(ctx, filter).Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (s *store) CountLeases(ctx context.Context, filter LeaseFilter) (int64, error) {
	var n int64
	err := s.leaseQuery(ctx, filter).Count(&n).Error
	return n, err
}

func (s *store) SignLease(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := getDBFromContext(ctx, s.db).Model(&Lease{}).
		Where("id = ? AND signed = ?", id, false).
		Updates(map[string]any{"signed": true, "signed_at": at, "updated_at": at})
	return res.RowsAffected == 1, res.Error
}

func (s *store) ShortenLease(ctx context.Context, id uint, currentEnd, newEnd time.Time) (bool, error) {
	res := getDBFromContext(ctx, s.db).Model(&Lease{}).
		Where("id = ? AND end_date = ?", id, Day(currentEnd)).
		Updates(map[string]any{"end_date": Day(newEnd), "updated_at": time.Now()})
	return res.RowsAffected == 1, res.Error
}

func (s *store) SetLeaseDocument(ctx context.Context, id uint, ref string) error {
	return getDBFromContext(ctx, s.db).Model(&Lease{}).Where("id = ?", id).
		Updates(map[string]any{"document_ref": ref, "updated_at": time.Now()}).Error
}

func (s *store) ActiveLeaseStudentIDs(ctx context.Context, scope Scope, today time.Time) ([]uint, error) {
	ids := []uint{}
	day := Day(today)
	err := s.leaseQuery(ctx, LeaseFilter{Scope: scope, CurrentOn: &day}).
		Distinct("student_id").Order("student_id").Pluck("student_id", &ids).Error
	return ids, err
}

// Invoices

func (s *store) CreateInvoice(ctx context.Context, invoice *Invoice) error {
	return getDBFromContext(ctx, s.db).Create(invoice).Error
}

func (s *store) GetInvoice(ctx context.Context, id uint) (*Invoice, error) {
	return first[Invoice](ctx, s.db, "id = ?", id)
}

func (s *store) invoiceQuery(ctx context.Context, f InvoiceFilter) *gorm.DB {
	q := applyScope(getDBFromContext(ctx, s.db).Model(&Invoice{}), f.Scope)
	if f.LeaseID != 0 {
		q = q.Where("lease_id = ?", f.LeaseID)
	}
	today := Day(f.Today)
	switch f.Status {
	case cnst.InvoicePaid:
		q = q.Where("status = ?", cnst.InvoicePaid)
	case cnst.InvoiceUnpaid:
		q = q.Where("status = ? AND due_date >= ?", cnst.InvoiceUnpaid, today)
	case cnst.InvoiceOverdue:
		q = q.Where("status = ? AND due_date < ?", cnst.InvoiceUnpaid, today)
	}
	if f.DocumentedOnly {
		q = q.Where("document_ref <> ''")
	}
	return q
}

func (s *store) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]*Invoice, error) {
	var out []*Invoice
	err := s.invoiceQuery(ctx, filter).Order("due_date DESC, id DESC").Find(&out).Error
	return out, err
}

func (s *store) CountInvoices(ctx context.Context, filter InvoiceFilter) (int64, error) {
	var n int64
	err := s.invoiceQuery(ctx, filter).Count(&n).Error
	return n, err
}

func (s *store) SetInvoiceStatus(ctx context.Context, id uint, status cnst.InvoiceStatus, paidAt *time.Time) error {
	return getDBFromContext(ctx, s.db).Model(&Invoice{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "paid_at": paidAt, "updated_at": time.Now()}).Error
}

func (s *store) SetInvoiceDocument(ctx context.Context, id uint, ref string) error {
	return getDBFromContext(ctx, s.db).Model(&Invoice{}).Where("id = ?", id).
		Updates(map[string]any{"document_ref": ref, "updated_at": time.Now()}).Error
}

func (s *store) SumUnpaid(ctx context.Context, studentID uint) (float64, error) {
	var total float64
	err := getDBFromContext(ctx, s.db).Model(&Invoice{}).
		Where("student_id = ? AND status = ?", studentID, cnst.InvoiceUnpaid).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}

// Maintenance

func (s *store) CreateMaintenance(ctx context.Context, req *MaintenanceRequest) error {
	return getDBFromContext(ctx, s.db).Create(req).Error
}

func (s *store) GetMaintenance(ctx context.Context, id uint) (*MaintenanceRequest, error) {
	return first[MaintenanceRequest](ctx, s.db, "id = ?", id)
}

func (s *store) maintenanceQuery(ctx context.Context, f MaintenanceFilter) *gorm.DB {
	q := applyScope(getDBFromContext(ctx, s.db).Model(&MaintenanceRequest{}), f.Scope)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.OpenOnly {
		q = q.Where("status IN ?", []cnst.MaintenanceStatus{cnst.MaintenancePending, cnst.MaintenanceInProgress})
	}
	return q
}

const priorityRankSQL = "CASE priority WHEN 'emergency' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC"

func (s *store) ListMaintenance(ctx context.Context, filter MaintenanceFilter) ([]*MaintenanceRequest, error) {
	var out []*MaintenanceRequest
	err := s.maintenanceQuery(ctx, filter).
		Order(priorityRankSQL).Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	return out, err
}

func (s *store) CountMaintenance(ctx context.Context, filter MaintenanceFilter) (int64, error) {
	var n int64
	err := s.maintenanceQuery(ctx, filter).Count(&n).Error
	return n, err
}

func (s *store) UpdateMaintenance(ctx context.Context, id uint, from, to cnst.MaintenanceStatus, notes *string, completedAt *time.Time) (bool, error) {
	updates := map[string]any{"status": to, "completed_at": completedAt, "updated_at": time.Now()}
	if notes != nil {
		updates["admin_notes"] = *notes
	}
	res := getDBFromContext(ctx, s.db).Model(&MaintenanceRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

// Notifications

func (s *store) CreateNotification(ctx context.Context, n *Notification) error {
	return getDBFromContext(ctx, s.db).Create(n).Error
}

func (s *store) ListNotifications(ctx context.Context, userID uint, unreadOnly bool) ([]*Notification, error) {
	var out []*Notification
	q := getDBFromContext(ctx, s.db).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (s *store) MarkNotificationRead(ctx context.Context, userID, id uint, at time.Time) (bool, error) {
	res := getDBFromContext(ctx, s.db).Model(&Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"is_read": true, "read_at": at})
	return res.RowsAffected == 1, res.Error
}
