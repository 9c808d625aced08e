package httputil

// Machine-readable error codes returned alongside error messages so clients
// can branch on failures without parsing human-readable text.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeEmailAlreadyExists = "email_already_exists"
	CodeValidationFailed   = "validation_failed"
	CodeMissingAuth        = "missing_authentication"
	CodeInvalidToken       = "invalid_token"
	CodeUserNotFound       = "user_not_found"
	CodeTooManyRequests    = "too_many_requests"
	CodeInternalError      = "internal_error"
)
