package cnst

import "errors"

var (
	// ErrNoChannel is returned when a bulk notification selects no delivery channel
	ErrNoChannel = errors.New("at least one notification channel is required")
	// ErrNoRecipients is returned when a bulk notification resolves to nobody
	ErrNoRecipients = errors.New("no recipients match the notification target")
	// ErrChannelDisabled is returned by a channel that is not configured
	ErrChannelDisabled = errors.New("notification channel is disabled")
	// ErrDocumentMissing is returned when an entity has no stored document
	ErrDocumentMissing = errors.New("document has not been generated")
)
