package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"

	// Sync domain
	CodeSourceUnavailable = "SOURCE_UNAVAILABLE"
	CodeSyncInProgress    = "SYNC_IN_PROGRESS"

	// Server errors (5xx)
	CodeInternalError = "INTERNAL_ERROR"
)
