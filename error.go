package retryfetch

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration matches, via errors.Is, every error returned before
// a single request is sent because the arguments to a fetch were unusable
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrNoResponse is returned, and retried like any transport error, when a
// Doer returns neither a response nor an error
var ErrNoResponse = errors.New("sender returned no response and no error")

// InvalidMaxTriesError is returned when a fetch is asked to make fewer than two
// attempts; there's no point calling something a retry if it never retries
type InvalidMaxTriesError struct {
	MaxTries int
}

// Error implements the `Error` interface
func (e *InvalidMaxTriesError) Error() string {
	return fmt.Sprintf("maxTries must be at least 2, received %d", e.MaxTries)
}

// Is allows errors.Is(err, ErrInvalidConfiguration)
func (e *InvalidMaxTriesError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// StatusError is returned when a server answered, but with a status outside
// of the 2xx range
type StatusError struct {
	StatusCode int
	Status     string
}

// Error implements the `Error` interface
func (e *StatusError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("unsuccessful status code %d", e.StatusCode)
	}

	return fmt.Sprintf("unsuccessful status code %s", e.Status)
}
