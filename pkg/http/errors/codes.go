package errors

// Error codes for standardized error responses
const (
	// Identity errors
	ErrCodeClientIDRequired = "client_id_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"
	ErrCodeLimitOutOfRange  = "limit_out_of_range"

	// Resource errors
	ErrCodeInvalidSessionID = "invalid_session_id"
	ErrCodeSessionNotFound  = "session_not_found"
	ErrCodeSessionBusy      = "session_busy"

	// Business logic errors
	ErrCodeCatalogFetchFailed = "catalog_fetch_failed"
	ErrCodeDrawFailed         = "draw_failed"
	ErrCodeSessionStartFailed = "session_start_failed"
	ErrCodeNextFailed         = "next_failed"
	ErrCodeResetFailed        = "reset_failed"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"
)
