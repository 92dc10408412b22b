package errors

// Error codes for categorizing errors.
// These codes map to HTTP status codes where applicable.
const (
	// CodeOK indicates success (not an error).
	CodeOK = "OK"

	// CodeCancelled indicates the operation was cancelled by the caller.
	CodeCancelled = "CANCELLED"

	// CodeDeadlineExceeded indicates operation deadline was exceeded.
	CodeDeadlineExceeded = "DEADLINE_EXCEEDED"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound = "NOT_FOUND"

	// CodeInternal indicates internal errors.
	CodeInternal = "INTERNAL"

	// CodeValidation indicates input validation failed.
	CodeValidation = "VALIDATION_ERROR"

	// CodeConflict indicates a resource conflict (e.g., duplicate cache name).
	CodeConflict = "CONFLICT"

	// CodeServiceUnavailable indicates a cache backend is unavailable.
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"

	// CodePayloadTooLarge indicates a value exceeded the accepted size.
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// IsClientError returns true if the code describes a caller mistake (4xx).
func IsClientError(code string) bool {
	switch code {
	case CodeValidation, CodeNotFound, CodeConflict, CodeCancelled, CodePayloadTooLarge:
		return true
	default:
		return false
	}
}
