package cnst

// Tracer names used across the services
const (
	TraceLifecycle = "studentliving/lifecycle"
	TraceNotify    = "studentliving/notify"
	TraceDocument  = "studentliving/document"
)

// Span names
const (
	SpanApplicationDecide  = "application.decide"
	SpanApplicationSubmit  = "application.submit"
	SpanLeaseCreate        = "lease.create"
	SpanLeaseSign          = "lease.sign"
	SpanLeaseTerminate     = "lease.terminate"
	SpanInvoiceGenerate    = "invoice.generate"
	SpanInvoiceSetStatus   = "invoice.set_status"
	SpanInvoiceReminder    = "invoice.reminder"
	SpanMaintenanceUpdate  = "maintenance.update"
	SpanMaintenanceSubmit  = "maintenance.submit"
	SpanDocumentRegenerate = "document.regenerate"
	SpanBulkNotify         = "notification.bulk"
	SpanNotifyDispatch     = "notify.dispatch"
	SpanDocumentRender     = "document.render"
)

// Common attribute keys
const (
	AttrActorID         = "actor.id"
	AttrActorRole       = "actor.role"
	AttrAccommodationID = "accommodation.id"
	AttrEntityID        = "entity.id"
	AttrTransitionFrom  = "transition.from"
	AttrTransitionTo    = "transition.to"
	AttrChannel         = "notify.channel"
	AttrDocumentKey     = "document.key"
	AttrErrorReason     = "error.reason"
)
