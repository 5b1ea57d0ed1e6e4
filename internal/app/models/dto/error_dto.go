package dto

// ErrorCode is a stable machine-readable error identifier
type ErrorCode string

// Error codes grouped by category
const (
	// Authentication errors
	ErrorCodeInvalidCredentials ErrorCode = "AUTH_001"
	ErrorCodeUnauthenticated    ErrorCode = "AUTH_002"
	ErrorCodeSessionExpired     ErrorCode = "AUTH_003"
	ErrorCodeForbidden          ErrorCode = "AUTH_004"
	ErrorCodeOTPInvalid         ErrorCode = "AUTH_005"
	ErrorCodeOTPCooldown        ErrorCode = "AUTH_006"
	ErrorCodeOTPAttemptsLimit   ErrorCode = "AUTH_007"

	// Resource errors
	ErrorCodeResourceNotFound ErrorCode = "RES_001"
	ErrorCodeResourceExists   ErrorCode = "RES_002"
	ErrorCodeConflict         ErrorCode = "RES_003"

	// Validation errors
	ErrorCodeValidationFailed ErrorCode = "VAL_001"
	ErrorCodeInvalidRequest   ErrorCode = "VAL_002"

	// Business rule errors
	ErrorCodeInsufficientBalance ErrorCode = "BIZ_001"
	ErrorCodeInvalidTransaction  ErrorCode = "BIZ_002"

	// Server errors
	ErrorCodeInternalError ErrorCode = "SRV_001"
)

// ErrorSeverity indicates how serious an error is
type ErrorSeverity string

const (
	SeverityWarning ErrorSeverity = "warning"
	SeverityError   ErrorSeverity = "error"
)

// ErrorDetail carries a single error with its code and message
type ErrorDetail struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Severity ErrorSeverity          `json:"severity"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse is the standard error envelope returned by the API
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// NewErrorDetail creates an ErrorDetail with error severity
func NewErrorDetail(code ErrorCode, message string) ErrorDetail {
	return ErrorDetail{
		Code:     code,
		Message:  message,
		Severity: SeverityError,
	}
}

// WithSeverity sets the severity on the detail
func (e ErrorDetail) WithSeverity(severity ErrorSeverity) ErrorDetail {
	e.Severity = severity
	return e
}

// WithDetails attaches structured context to the detail
func (e ErrorDetail) WithDetails(details map[string]interface{}) ErrorDetail {
	e.Details = details
	return e
}

// NewErrorResponse wraps a detail in the standard envelope
func NewErrorResponse(detail ErrorDetail) ErrorResponse {
	return ErrorResponse{Error: detail}
}
