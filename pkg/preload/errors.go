package preload

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEmptyURL = errors.New("descriptor has an empty url")

	// ErrUnsupportedScheme is returned by the generic fetch adapter for URL
	// schemes it has no fetch path for.
	ErrUnsupportedScheme = errors.New("unsupported fetch scheme")

	ErrUnknownRoute    = errors.New("no descriptors registered for route")
	ErrPreloadStarted  = errors.New("preload sequence has already been started")
	ErrCriticalPreload = errors.New("critical preload group failed")
)

// LoadError is an adapter-reported failure. Retried up to the descriptor's
// MaxRetries. Use errors.As to extract it from a handle outcome.
type LoadError struct {
	URL   string
	Type  ResourceType
	Cause error
}

// Error implements the error interface. Format: "load type url: cause"
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load %s %s: %s", e.Type, e.URL, e.Cause.Error())
	}
	return fmt.Sprintf("load %s %s", e.Type, e.URL)
}

// Unwrap returns the underlying cause, enabling errors.Is/As chaining.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// TimeoutError reports that the per-attempt deadline elapsed before the
// adapter settled. Treated identically to a LoadError for retry purposes.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("load %s: timed out after %s", e.URL, e.Timeout)
}

// UnsupportedTypeError reports a descriptor whose Type has no registered
// adapter. Fatal immediately — never enqueued, never retried.
type UnsupportedTypeError struct {
	Type      ResourceType
	Supported []string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("no adapter registered for resource type %q — supported: %s",
		e.Type, strings.Join(e.Supported, ", "))
}
