package domain

import (
	"errors"
	"fmt"
	"time"
)

// RateLimitError signals an explicit too-many-requests response. The wait
// it prescribes is authoritative: honoring it does not count toward
// exponential backoff escalation.
type RateLimitError struct {
	// RetryAfter is the server-provided wait hint; zero means the server
	// gave none and the caller's configured default applies.
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// TransientError wraps a failure worth retrying: network errors, timeouts,
// 5xx responses.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient remote failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError is a remote rejection that retrying cannot fix (4xx other
// than rate limiting). It is surfaced immediately.
type PermanentError struct {
	StatusCode int
	Body       string
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent remote failure: status %d: %s", e.StatusCode, e.Body)
}

// ExhaustedRetriesError wraps the last underlying failure after the retry
// budget ran out.
type ExhaustedRetriesError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedRetriesError) Unwrap() error { return e.Last }

// IsRetryable reports whether err may succeed on a later attempt.
func IsRetryable(err error) bool {
	var rl *RateLimitError
	var tr *TransientError
	return errors.As(err, &rl) || errors.As(err, &tr)
}
