package llm

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyCompletion is returned when a vendor response has no completion text
// at the expected path.
var ErrEmptyCompletion = errors.New("empty completion in provider response")

// RateLimitError is returned when a provider was called again inside its
// minimum interval. Callers should wait RetryAfter and try again.
type RateLimitError struct {
	Provider   Provider
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, please wait", e.Provider)
}

// UnknownProviderError is returned for identifiers outside the supported set.
type UnknownProviderError struct {
	ID string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider: %s", e.ID)
}

// APIError is a non-success answer from a vendor, either an HTTP status
// outside 2xx or a job the vendor reported as failed.
type APIError struct {
	Provider   Provider
	StatusCode int
	// Status is the HTTP status text, e.g. "Internal Server Error".
	Status  string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s api error: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s api error: %s", e.Provider, e.Status)
}

// PollTimeoutError is returned when an asynchronous job is still running after
// the configured number of polls.
type PollTimeoutError struct {
	Provider Provider
	Attempts int
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("%s job still running after %d polls", e.Provider, e.Attempts)
}
