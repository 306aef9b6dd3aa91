package errors

import "net/http"

// ErrorCode identifies a failure category.
type ErrorCode string

func (c ErrorCode) String() string { return string(c) }

const (
	CodeInternal ErrorCode = "INTERNAL"

	// validation class: returned to the caller as retryable 422s
	CodeUnsupportedMethod ErrorCode = "UNSUPPORTED_METHOD"
	CodeMissingParameter  ErrorCode = "MISSING_PARAMETER"
	CodeValidation        ErrorCode = "VALIDATION"

	// recovered locally by substituting defaults; never surfaced
	CodeInvalidDateFormat ErrorCode = "INVALID_DATE_FORMAT"

	CodeComputation ErrorCode = "COMPUTATION_ERROR"
	CodeNoData      ErrorCode = "NO_DATA"
	CodePersistence ErrorCode = "PERSISTENCE_ERROR"
	CodeNotFound    ErrorCode = "NOT_FOUND"
	CodeConflict    ErrorCode = "CONFLICT"
)

// IsValidation reports whether code belongs to the retryable validation class.
func IsValidation(code ErrorCode) bool {
	switch code {
	case CodeUnsupportedMethod, CodeMissingParameter, CodeValidation:
		return true
	}
	return false
}

// HTTPStatus maps an error code to the status the HTTP adapter responds with.
func HTTPStatus(code ErrorCode) int {
	switch {
	case IsValidation(code):
		return http.StatusUnprocessableEntity
	case code == CodeNoData, code == CodeNotFound:
		return http.StatusNotFound
	case code == CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
