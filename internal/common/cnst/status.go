package cnst

import (
	"fmt"
	"strings"
)

// ApplicationStatus is the stored state of an accommodation application
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// IsTerminal reports whether no further decision may be taken
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationApproved || s == ApplicationRejected
}

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationPending, ApplicationApproved, ApplicationRejected:
		return true
	}
	return false
}

// ParseApplicationStatus parses a case-insensitive application status
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	v := ApplicationStatus(normalize(s))
	if !v.IsValid() {
		return "", fmt.Errorf("unknown application status %q", s)
	}
	return v, nil
}

// LeaseState is derived at read time from the signed flag and the lease dates.
// It is never persisted.
type LeaseState string

const (
	LeaseUnsigned LeaseState = "unsigned"
	LeaseSigned   LeaseState = "signed"
	LeaseActive   LeaseState = "active"
	LeaseExpired  LeaseState = "expired"
)

// ParseLeaseState parses a case-insensitive lease state
func ParseLeaseState(s string) (LeaseState, error) {
	v := LeaseState(normalize(s))
	switch v {
	case LeaseUnsigned, LeaseSigned, LeaseActive, LeaseExpired:
		return v, nil
	}
	return "", fmt.Errorf("unknown lease state %q", s)
}

// InvoiceStatus is the payment state of an invoice.
// Only InvoiceUnpaid and InvoicePaid are persisted; InvoiceOverdue is the
// read-time view of an unpaid invoice whose due date has passed.
type InvoiceStatus string

const (
	InvoiceUnpaid  InvoiceStatus = "unpaid"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceUnpaid, InvoicePaid, InvoiceOverdue:
		return true
	}
	return false
}

// ParseInvoiceStatus parses a case-insensitive invoice status
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	v := InvoiceStatus(normalize(s))
	if !v.IsValid() {
		return "", fmt.Errorf("unknown invoice status %q", s)
	}
	return v, nil
}

// MaintenanceStatus is the stored state of a maintenance request
type MaintenanceStatus string

const (
	MaintenancePending    MaintenanceStatus = "pending"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
)

func (s MaintenanceStatus) IsValid() bool {
	switch s {
	case MaintenancePending, MaintenanceInProgress, MaintenanceCompleted, MaintenanceCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the request is closed
func (s MaintenanceStatus) IsTerminal() bool {
	return s == MaintenanceCompleted || s == MaintenanceCancelled
}

// ParseMaintenanceStatus parses a case-insensitive maintenance status
func ParseMaintenanceStatus(s string) (MaintenanceStatus, error) {
	v := MaintenanceStatus(normalize(s))
	if !v.IsValid() {
		return "", fmt.Errorf("unknown maintenance status %q", s)
	}
	return v, nil
}

// MaintenancePriority orders maintenance requests for display
type MaintenancePriority string

const (
	PriorityLow       MaintenancePriority = "low"
	PriorityMedium    MaintenancePriority = "medium"
	PriorityHigh      MaintenancePriority = "high"
	PriorityEmergency MaintenancePriority = "emergency"
)

// Rank returns a sort key, higher is more urgent
func (p MaintenancePriority) Rank() int {
	switch p {
	case PriorityEmergency:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

func (p MaintenancePriority) IsValid() bool { return p.Rank() > 0 }

// ParseMaintenancePriority parses a case-insensitive priority
func ParseMaintenancePriority(s string) (MaintenancePriority, error) {
	v := MaintenancePriority(normalize(s))
	if !v.IsValid() {
		return "", fmt.Errorf("unknown maintenance priority %q", s)
	}
	return v, nil
}

// normalize lowercases and maps "InProgress" / "in-progress" to "in_progress"
func normalize(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "inprogress") {
		return string(MaintenanceInProgress)
	}
	return strings.ReplaceAll(strings.ToLower(s), "-", "_")
}
