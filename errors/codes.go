package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Input errors
const (
	// ErrCodeInvalidInput indicates a fixture source or configuration value is unusable.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInvalidFormat indicates a fixture file could not be parsed.
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	// ErrCodeOutOfRange indicates a row or column access outside a table's bounds.
	ErrCodeOutOfRange ErrorCode = "OUT_OF_RANGE"
)

// Database errors
const (
	// ErrCodeConnectionFailed indicates the database connection is unusable.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeStatementError indicates a statement was rejected by the database.
	ErrCodeStatementError ErrorCode = "STATEMENT_ERROR"
)

// Assertion errors
const (
	// ErrCodeAssertionFailed indicates expected and actual datasets differ.
	ErrCodeAssertionFailed ErrorCode = "ASSERTION_FAILED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Nothing in the pipeline retries on its own; the flag only informs callers
// that re-running the enclosing test may succeed.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionFailed: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
