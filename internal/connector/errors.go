package connector

import (
	"errors"
	"fmt"
	"time"
)

// ErrAuthRequired is returned by Connect when the platform client has no
// valid authorization yet. The caller resolves the login through its own
// I/O channel; connectors never prompt.
var ErrAuthRequired = errors.New("authorization required")

// SetupError reports bad or missing credentials. It is fatal only to that
// platform's registration: the orchestrator skips the platform and moves on.
type SetupError struct {
	Platform string
	Reason   string
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("%s: setup failed: %s", e.Platform, e.Reason)
}

// ResolutionError reports a source that is missing, private, or invalid.
// It aborts that source's call; the connector returns an empty result.
type ResolutionError struct {
	Source string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %s", e.Source, e.Reason)
}

// TransientError reports a network or generic API failure. Pagination for
// the current call stops and whatever was accumulated is kept.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// RateLimitError reports an explicit upstream rate limit carrying the exact
// duration to wait before the same request may be retried.
type RateLimitError struct {
	Wait time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: wait %s", e.Wait)
}

// IsSetup reports whether err marks bad or missing credentials.
func IsSetup(err error) bool {
	var se *SetupError
	return errors.As(err, &se)
}

// IsResolution reports whether err marks an unresolvable source.
func IsResolution(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re)
}

// AsRateLimit extracts the wait duration from an explicit rate-limit error.
func AsRateLimit(err error) (time.Duration, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.Wait, true
	}
	return 0, false
}

// IsTransient reports whether err is a generic network/API failure that
// should end pagination but keep partial results.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
