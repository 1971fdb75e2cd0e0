package preload

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// supervisor wraps adapter invocations with a per-attempt deadline and a
// bounded retry policy: up to MaxRetries additional attempts with a fixed
// delay between them (no backoff growth), each attempt receiving a fresh
// full-length deadline.
type supervisor struct {
	retryDelay time.Duration
	l          *log.Logger
}

func newSupervisor(retryDelay time.Duration, l *log.Logger) supervisor {
	if retryDelay <= 0 {
		retryDelay = DEF_RETRY_DELAY
	}
	return supervisor{retryDelay: retryDelay, l: l}
}

// run executes the descriptor through its adapter until a successful attempt
// or retry exhaustion. It returns the number of attempts made and the final
// outcome. A MaxRetries=2 descriptor with an always-failing adapter makes
// exactly 3 attempts.
func (sv supervisor) run(ctx context.Context, d Descriptor, a Adapter) (attempts int, err error) {
	total := d.MaxRetries + 1
	if total < 1 {
		total = 1
	}
	for attempt := 1; ; attempt++ {
		err = sv.attempt(ctx, d, a)
		if err == nil || attempt >= total {
			return attempt, err
		}
		if sv.l != nil {
			sv.l.Printf("preload: %s attempt %d/%d failed, retrying in %s: %v",
				d.URL, attempt, total, sv.retryDelay, err)
		}
		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-time.After(sv.retryDelay):
		}
	}
}

// attempt races one adapter invocation against the descriptor deadline.
// Whichever settles first wins; the loser's later settlement is discarded
// (the result channel is buffered so an abandoned adapter goroutine never
// blocks). A deadline win yields a TimeoutError.
func (sv supervisor) attempt(ctx context.Context, d Descriptor, a Adapter) error {
	actx, cancel := context.WithTimeout(ctx, d.timeout())
	defer cancel()

	res := make(chan error, 1)
	safeGo(sv.l, nil, "adapter "+d.URL, func(r interface{}) {
		res <- &LoadError{URL: d.URL, Type: d.Type, Cause: fmt.Errorf("adapter panic: %v", r)}
	}, func() {
		res <- a.Load(actx, d.URL, d.Options)
	})

	select {
	case err := <-res:
		if err == nil {
			return nil
		}
		var te *TimeoutError
		var le *LoadError
		if errors.As(err, &te) || errors.As(err, &le) {
			return err
		}
		return &LoadError{URL: d.URL, Type: d.Type, Cause: err}
	case <-actx.Done():
		if ctx.Err() != nil {
			// The caller's context ended, not the per-attempt deadline.
			return ctx.Err()
		}
		return &TimeoutError{URL: d.URL, Timeout: d.timeout()}
	}
}
