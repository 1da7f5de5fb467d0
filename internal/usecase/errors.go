package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrQuotaExceeded         = errors.New("provider request quota exceeded")
	ErrProviderResponse      = errors.New("provider response has errors")
)

// MissingCriticalDataError reports a provider payload without a field the
// pipeline cannot work without.
type MissingCriticalDataError struct {
	Field string
}

func (e *MissingCriticalDataError) Error() string {
	return "response is missing critical data: " + e.Field
}
