package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ProviderError is a classified provider failure. Transient errors (rate
// limits, quota, 5xx) are retried by the gateway; everything else is fatal to
// the stage immediately.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("provider error (status %d): %s", e.Status, e.Message)
	}
	return "provider error: " + e.Message
}

// Transient reports whether the error is worth retrying.
func (e *ProviderError) Transient() bool {
	if e.Status == 429 || e.Status >= 500 {
		return true
	}
	lower := strings.ToLower(e.Message)
	return strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "rate_limit") ||
		strings.Contains(lower, "quota") ||
		strings.Contains(lower, "overloaded")
}

// RetriesExhaustedError wraps the last transient error after the retry budget
// is spent. It is recoverable: the pipeline degrades the stage to its empty
// default instead of aborting the run.
type RetriesExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("llm call failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetriesExhaustedError) Unwrap() error { return e.Last }

// Recoverable satisfies the pipeline's stage-degradation check.
func (e *RetriesExhaustedError) Recoverable() bool { return true }

func isTransient(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Transient()
}
