package preload

import (
	"context"
	"sync"
)

// Handle is the shared completion handle for one URL. All submitters of the
// same in-flight URL receive the same Handle and observe one identical
// outcome. A Handle settles exactly once.
type Handle struct {
	done chan struct{}
	err  error
	once sync.Once
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// resolvedHandle returns an already-settled successful handle.
// Used for submits of URLs that are already in the loaded set.
func resolvedHandle() *Handle {
	h := newHandle()
	h.settle(nil)
	return h
}

// rejectedHandle returns an already-settled failed handle.
func rejectedHandle(err error) *Handle {
	h := newHandle()
	h.settle(err)
	return h
}

// settle records the outcome and closes the done channel.
// Later calls are no-ops; the first settlement wins.
func (h *Handle) settle(err error) {
	h.once.Do(func() {
		h.err = err
		close(h.done)
	})
}

// Done returns a channel closed when the load settles.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the settlement outcome: nil for success, the load error for
// failure. It returns nil while the handle is unsettled; use Done or Wait
// to observe settlement first.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Settled reports whether the handle has settled.
func (h *Handle) Settled() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the load settles or ctx is done, returning the
// settlement outcome or the context error.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
