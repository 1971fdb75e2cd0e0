package preload

import (
	"fmt"
	"strings"
	"time"
)

// Default scheduler configuration values
const (
	DEF_MAX_CONCURRENT = 6
	DEF_TIMEOUT        = 10 * time.Second
	DEF_RETRY_DELAY    = time.Second
)

// Priority is the admission class of a descriptor. Higher values are admitted
// ahead of lower values; within one class admission is FIFO by arrival.
// Priority never preempts in-flight loads — it orders the queue only.
type Priority int

const (
	// PriorityPrefetch is for speculative loads (e.g. route prefetch).
	PriorityPrefetch Priority = iota
	// PriorityLow is for resources that can wait for idle capacity.
	PriorityLow
	// PriorityMedium is the default priority for submitted resources.
	PriorityMedium
	// PriorityHigh is for resources needed soon after start-up.
	PriorityHigh
	// PriorityCritical is for resources the application cannot start without.
	PriorityCritical
)

// String returns the lowercase name of the priority class.
func (p Priority) String() string {
	switch p {
	case PriorityPrefetch:
		return "prefetch"
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// ParsePriority converts a priority name (case-insensitive) to a Priority.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(s) {
	case "prefetch":
		return PriorityPrefetch, nil
	case "low":
		return PriorityLow, nil
	case "medium", "":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	case "critical":
		return PriorityCritical, nil
	default:
		return 0, fmt.Errorf("unknown priority %q", s)
	}
}

// ResourceType selects which adapter materializes a resource.
// New types may be registered on an AdapterSet without scheduler changes.
type ResourceType string

const (
	TypeScript ResourceType = "script"
	TypeStyle  ResourceType = "style"
	TypeFont   ResourceType = "font"
	TypeImage  ResourceType = "image"
	TypeFetch  ResourceType = "fetch"
)

// CrossOriginMode controls whether ambient credentials accompany a fetch.
type CrossOriginMode string

const (
	// CrossOriginAnonymous strips credential-bearing headers from the request.
	CrossOriginAnonymous CrossOriginMode = "anonymous"
	// CrossOriginUseCredentials sends the request headers unmodified.
	CrossOriginUseCredentials CrossOriginMode = "use-credentials"
)

// Options carries adapter-specific load parameters.
// The zero value is valid for every adapter.
type Options struct {
	// CrossOrigin controls credential handling for HTTP fetches.
	// Empty is treated as CrossOriginUseCredentials.
	CrossOrigin CrossOriginMode
	// Headers are added to HTTP requests.
	Headers map[string]string
	// SSHKeyPath is the private key used by the sftp fetch path — never persisted.
	SSHKeyPath string
}

// Descriptor names one resource to load. It is immutable once submitted;
// the scheduler and supervisor copy it and never mutate the caller's value.
type Descriptor struct {
	// URL is the dedup key. Two descriptors with the same URL share one
	// in-flight attempt and one outcome.
	URL string
	// Priority is the admission class.
	Priority Priority
	// Type selects the adapter. Unregistered types fail fatally on Submit.
	Type ResourceType
	// Timeout is the per-attempt deadline. Zero means DEF_TIMEOUT.
	Timeout time.Duration
	// MaxRetries is the number of additional attempts after the first failure.
	MaxRetries int
	// Options are passed through to the adapter.
	Options Options
}

// timeout returns the effective per-attempt deadline.
func (d Descriptor) timeout() time.Duration {
	if d.Timeout <= 0 {
		return DEF_TIMEOUT
	}
	return d.Timeout
}

// LoadState is the lifecycle of one URL inside the scheduler.
// unknown → queued → loading → {loaded | failed}; failed may re-enter
// queued on a fresh submit, loaded is sticky.
type LoadState int

const (
	StateUnknown LoadState = iota
	StateQueued
	StateLoading
	StateLoaded
	StateFailed
)

// String returns the lowercase name of the state.
func (s LoadState) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
