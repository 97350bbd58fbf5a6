package errors

// Error codes for standardized error responses
const (
	// Request errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Store errors
	ErrCodeUnprocessable = "unprocessable_entity"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)

// Default messages, matching the wording clients already rely on.
const (
	MsgBadRequest          = "Bad request"
	MsgNotFound            = "Resource not found"
	MsgMethodNotAllowed    = "Method not allowed"
	MsgUnprocessable       = "Unprocessable entity"
	MsgInternalServerError = "Internal server error"
)
