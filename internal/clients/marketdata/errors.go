package marketdata

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownSource is returned when the rate limiter is consulted about
// a source that has no configuration. Unknown sources fail closed.
var ErrUnknownSource = errors.New("unknown market data source")

// ErrRepositoryUnavailable wraps stock/opportunity store failures.
var ErrRepositoryUnavailable = errors.New("repository unavailable")

// RateLimitedError signals that a source is over its per-minute budget.
// Callers abort the fetch; Wait hints how long until the window frees up.
type RateLimitedError struct {
	Source string
	Wait   time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited on %s, wait %dms", e.Source, e.Wait.Milliseconds())
}

// TransportError signals a non-2xx HTTP response or a network failure.
type TransportError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport failure from %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s returned HTTP %d", e.Source, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DataFormatError signals a payload missing required numeric fields or
// otherwise unparsable. Distinct from TransportError so callers can tell
// a dead provider from a changed wire format.
type DataFormatError struct {
	Source string
	Reason string
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("malformed payload from %s: %s", e.Source, e.Reason)
}

// IsRateLimited reports whether err is a rate limit rejection.
func IsRateLimited(err error) bool {
	var rl *RateLimitedError
	return errors.As(err, &rl)
}
