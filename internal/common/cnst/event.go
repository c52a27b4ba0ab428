package cnst

// Event names a notification raised by a lifecycle transition.
// The value doubles as the message id prefix in the translation catalogue.
type Event string

const (
	EventApplicationSubmitted     Event = "application_submitted"
	EventApplicationApproved      Event = "application_approved"
	EventApplicationRejected      Event = "application_rejected"
	EventLeaseCreated             Event = "lease_created"
	EventLeaseSigned              Event = "lease_signed"
	EventLeaseTerminated          Event = "lease_terminated"
	EventInvoiceCreated           Event = "invoice_created"
	EventInvoiceStatusChanged     Event = "invoice_status_changed"
	EventPaymentConfirmed         Event = "payment_confirmed"
	EventInvoiceReminder          Event = "invoice_reminder"
	EventMaintenanceSubmitted     Event = "maintenance_submitted"
	EventMaintenanceStatusChanged Event = "maintenance_status_changed"
	EventAnnouncement             Event = "announcement"
)

// Events lists every event with a catalogue entry
var Events = []Event{
	EventApplicationSubmitted,
	EventApplicationApproved,
	EventApplicationRejected,
	EventLeaseCreated,
	EventLeaseSigned,
	EventLeaseTerminated,
	EventInvoiceCreated,
	EventInvoiceStatusChanged,
	EventPaymentConfirmed,
	EventInvoiceReminder,
	EventMaintenanceSubmitted,
	EventMaintenanceStatusChanged,
	EventAnnouncement,
}

func (e Event) String() string { return string(e) }
