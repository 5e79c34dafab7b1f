package genjob

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoOutput indicates a provider reported success without an output
// reference. It is a reportable anomaly distinct from a generation failure.
var ErrNoOutput = errors.New("generation succeeded with no output reference")

// ProviderError preserves a provider's non-2xx response verbatim so the
// boundary can relay the original status and body for diagnostics.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       []byte
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: provider returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// FailedError carries the provider-reported failure detail for a job that
// reached the Failed state on the provider side.
type FailedError struct {
	Detail string
}

func (e *FailedError) Error() string {
	return e.Detail
}

// TimeoutError indicates the polling attempt budget was exhausted before a
// terminal state was observed.
type TimeoutError struct {
	Attempts int
	Interval time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generation timed out after %d polls at %s intervals", e.Attempts, e.Interval)
}

// UnexpectedStatusError indicates a provider returned a status outside its
// declared vocabulary. The literal value is echoed for diagnosis instead of
// looping forever on it.
type UnexpectedStatusError struct {
	RawStatus string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected provider status %q", e.RawStatus)
}
