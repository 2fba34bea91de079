package errors

import "errors"

// This package defines a centralized set of sentinel errors for the application.
// Using sentinel errors allows services to return specific, recognizable error types
// without coupling them to implementation details like HTTP status codes. The API
// layer can then use `errors.Is()` to check for these specific errors and map
// them to the correct HTTP responses.

var (
	// ErrValidation signifies that input data provided by a client failed
	// validation. Rejected before any side effect; mapped to 400.
	ErrValidation = errors.New("validation failed")

	// ErrRateLimited signifies that the caller exceeded the local per-session
	// throttle. No upstream call was made. Mapped to 429.
	ErrRateLimited = errors.New("too many requests")

	// ErrRateLimitExceeded signifies that the upstream provider kept rate
	// limiting us after the full retry schedule. Mapped to 503.
	ErrRateLimitExceeded = errors.New("upstream rate limit exceeded")

	// ErrModelNotFound signifies that the upstream provider rejected the
	// configured model even after falling back to the default. Mapped to 503.
	ErrModelNotFound = errors.New("model not found")

	// ErrTimeout signifies that the upstream call exceeded its deadline.
	// Mapped to 504.
	ErrTimeout = errors.New("upstream request timed out")

	// ErrUpstream signifies any other upstream provider failure. Mapped to 503.
	ErrUpstream = errors.New("upstream service error")

	// ErrNotFound signifies that a requested resource could not be located.
	// Mapped to 404.
	ErrNotFound = errors.New("resource not found")

	// ErrInternal signifies an unexpected error on the server. This is a generic
	// error used to prevent leaking sensitive implementation details to the
	// client. Mapped to 500.
	ErrInternal = errors.New("internal server error")
)
