package extraction

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotConfigured means the extraction backend cannot be called at all.
	ErrNotConfigured = errors.New("extraction not configured")
	// ErrRateLimited is the kind of every RateLimitError.
	ErrRateLimited = errors.New("extraction rate limited")
	// ErrParse means the backend answered but no ranking could be read from it.
	ErrParse = errors.New("extraction response unparsable")
	// ErrUpstream covers any other non-success answer from the backend.
	ErrUpstream = errors.New("extraction backend error")
)

// RateLimitError is returned when the backend asks the caller to slow down.
// RetryAfter is zero when the backend did not say how long to wait.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry in %s: %s", e.RetryAfter, e.Message)
	}
	return "rate limited: " + e.Message
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }
