package preload

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
)

// NetworkQuality is the externally supplied network signal used to throttle
// admission. Absence of a signal is valid — the default cap applies.
type NetworkQuality int

const (
	NetworkSlow NetworkQuality = iota
	NetworkMedium
	NetworkFast
)

// SettleRecord describes one finished load, successful or not.
// Delivered to the optional OnSettle hook after the handle settles.
type SettleRecord struct {
	URL      string
	Type     ResourceType
	Attempts int
	Duration time.Duration
	Err      error
}

// SchedulerOpts configures a Scheduler. The zero value of every field is
// usable: defaults are filled in by NewScheduler.
type SchedulerOpts struct {
	// MaxConcurrent caps overlapping in-flight loads. Zero means DEF_MAX_CONCURRENT.
	MaxConcurrent int
	// Adapters services descriptor types. Nil means NewAdapterSet(nil).
	Adapters *AdapterSet
	// RetryDelay is the fixed delay between attempts. Zero means DEF_RETRY_DELAY.
	RetryDelay time.Duration
	// Logger receives diagnostics. Nil means silent.
	Logger *log.Logger
	// OnSettle, when non-nil, is called once per finished load.
	OnSettle func(SettleRecord)
}

// queuedLoad is one descriptor waiting for admission.
type queuedLoad struct {
	d Descriptor
	h *Handle
}

// Scheduler is the priority admission controller. It owns the queue, the
// dedup registry and the stats snapshot exclusively; everything else talks
// to it through its exported operations or the stats subscription.
//
// Admission order: strictly higher priority ahead of queued lower priority,
// FIFO within one class. In-flight loads are never preempted — priority
// affects queue order only.
type Scheduler struct {
	mu          sync.Mutex
	queue       []queuedLoad
	inflight    map[string]*Handle
	state       map[string]LoadState
	failed      map[string]error
	loadedCount int
	active      int

	maxConcurrent int
	defaultMax    int

	adapters *AdapterSet
	sv       supervisor
	pub      *statsPublisher
	l        *log.Logger
	onSettle func(SettleRecord)
}

// NewScheduler creates a Scheduler from opts. Construction is explicit —
// there is no package-level instance; the application start-up owns the one
// it builds.
func NewScheduler(opts *SchedulerOpts) *Scheduler {
	if opts == nil {
		opts = &SchedulerOpts{}
	}
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = DEF_MAX_CONCURRENT
	}
	adapters := opts.Adapters
	if adapters == nil {
		adapters = NewAdapterSet(nil)
	}
	return &Scheduler{
		inflight:      make(map[string]*Handle),
		state:         make(map[string]LoadState),
		failed:        make(map[string]error),
		maxConcurrent: maxConcurrent,
		defaultMax:    maxConcurrent,
		adapters:      adapters,
		sv:            newSupervisor(opts.RetryDelay, opts.Logger),
		pub:           newStatsPublisher(),
		l:             opts.Logger,
		onSettle:      opts.OnSettle,
	}
}

// Submit enqueues one descriptor and returns its completion handle.
// Submits are idempotent per URL: a loaded URL resolves immediately, an
// in-flight URL returns the shared handle of the existing attempt. A
// descriptor with no registered adapter is rejected immediately and never
// enqueued or retried.
func (s *Scheduler) Submit(d Descriptor) *Handle {
	if d.URL == "" {
		return rejectedHandle(ErrEmptyURL)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state[d.URL] == StateLoaded {
		// Sticky success: never re-attempted.
		return resolvedHandle()
	}
	if h, ok := s.inflight[d.URL]; ok {
		return h
	}
	if _, ok := s.adapters.Lookup(d.Type); !ok {
		return rejectedHandle(&UnsupportedTypeError{
			Type:      d.Type,
			Supported: s.adapters.Supported(),
		})
	}

	h := newHandle()
	s.inflight[d.URL] = h
	s.state[d.URL] = StateQueued
	// A fresh submit after exhaustion restarts the full attempt sequence.
	delete(s.failed, d.URL)
	s.enqueueLocked(queuedLoad{d: d, h: h})
	s.admitLocked()
	return h
}

// enqueueLocked inserts before the first queued item with strictly lower
// priority. Ties keep arrival order: FIFO within a class.
func (s *Scheduler) enqueueLocked(q queuedLoad) {
	insertIdx := len(s.queue)
	for i, item := range s.queue {
		if item.d.Priority < q.d.Priority {
			insertIdx = i
			break
		}
	}
	s.queue = append(s.queue, queuedLoad{})
	copy(s.queue[insertIdx+1:], s.queue[insertIdx:])
	s.queue[insertIdx] = q
}

// admitLocked pops queue heads into free concurrency slots and dispatches
// them. Items satisfied while waiting are skipped.
func (s *Scheduler) admitLocked() {
	for len(s.queue) > 0 && s.active < s.maxConcurrent {
		q := s.queue[0]
		s.queue = s.queue[1:]
		if s.state[q.d.URL] != StateQueued {
			continue
		}
		s.state[q.d.URL] = StateLoading
		s.active++
		s.dispatch(q)
	}
	s.publishLocked()
}

// dispatch hands one admitted load to the supervisor on its own goroutine.
func (s *Scheduler) dispatch(q queuedLoad) {
	d, h := q.d, q.h
	adapter, _ := s.adapters.Lookup(d.Type)
	safeGo(s.l, nil, "dispatch "+d.URL, func(r interface{}) {
		s.settle(d, h, 1, 0, &LoadError{
			URL:   d.URL,
			Type:  d.Type,
			Cause: fmt.Errorf("dispatch panic: %v", r),
		})
	}, func() {
		start := time.Now()
		attempts, err := s.sv.run(context.Background(), d, adapter)
		s.settle(d, h, attempts, time.Since(start), err)
	})
}

// settle records one outcome, settles the shared handle and schedules
// re-admission on a fresh goroutine — never synchronously, so settlement
// never re-enters admission on its own call path.
func (s *Scheduler) settle(d Descriptor, h *Handle, attempts int, dur time.Duration, err error) {
	s.mu.Lock()
	delete(s.inflight, d.URL)
	if err != nil {
		s.state[d.URL] = StateFailed
		s.failed[d.URL] = err
	} else {
		s.state[d.URL] = StateLoaded
		s.loadedCount++
	}
	s.active--
	s.publishLocked()
	onSettle := s.onSettle
	s.mu.Unlock()

	h.settle(err)
	if onSettle != nil {
		onSettle(SettleRecord{
			URL:      d.URL,
			Type:     d.Type,
			Attempts: attempts,
			Duration: dur,
			Err:      err,
		})
	}
	safeGo(s.l, nil, "admit", nil, s.kick)
}

func (s *Scheduler) kick() {
	s.mu.Lock()
	s.admitLocked()
	s.mu.Unlock()
}

// SetConcurrencyLimit updates the admission cap and immediately re-runs
// admission so freed capacity is used. Lowering the cap throttles future
// admission only — active loads are never cancelled.
func (s *Scheduler) SetConcurrencyLimit(n int) {
	if n < 1 {
		n = 1
	}
	s.mu.Lock()
	s.maxConcurrent = n
	s.admitLocked()
	s.mu.Unlock()
}

// ApplyNetworkQuality maps a network-quality signal to a concurrency cap:
// slow→1, medium→2, fast→the configured default. It returns the cap that
// is now in effect.
func (s *Scheduler) ApplyNetworkQuality(q NetworkQuality) int {
	var n int
	switch q {
	case NetworkSlow:
		n = 1
	case NetworkMedium:
		n = 2
	default:
		s.mu.Lock()
		n = s.defaultMax
		s.mu.Unlock()
	}
	s.SetConcurrencyLimit(n)
	return n
}

// IsLoaded reports whether url is in the loaded set.
func (s *Scheduler) IsLoaded(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state[url] == StateLoaded
}

// HasFailed reports whether url is in the failed set. Failure is advisory:
// a fresh Submit of the url restarts the full attempt sequence.
func (s *Scheduler) HasFailed(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.failed[url]
	return ok
}

// State returns the current lifecycle state of url.
func (s *Scheduler) State(url string) LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state[url]
}

// Stats returns the current snapshot.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Scheduler) snapshotLocked() Stats {
	return Stats{
		LoadedCount:   s.loadedCount,
		FailedCount:   len(s.failed),
		QueuedCount:   len(s.queue),
		ActiveCount:   s.active,
		MaxConcurrent: s.maxConcurrent,
	}
}

func (s *Scheduler) publishLocked() {
	s.pub.publish(s.snapshotLocked())
}

// OnStatsChange registers a stats listener. The listener receives one
// synchronous snapshot immediately, then one call per real change.
// Listeners run on scheduler goroutines and must not block or call back
// into the Scheduler. The returned function unsubscribes.
func (s *Scheduler) OnStatsChange(fn func(Stats)) func() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	return s.pub.subscribe(fn, snap)
}

// PreloadBatch submits every descriptor and returns a handle that settles
// once all members settle. The batch is best-effort: it never rejects as a
// whole — individual failures are aggregated and logged, so callers must
// not infer member success from its settlement.
func (s *Scheduler) PreloadBatch(ctx context.Context, descs []Descriptor) *Handle {
	batch := newHandle()
	handles := make([]*Handle, len(descs))
	for i, d := range descs {
		handles[i] = s.Submit(d)
	}
	safeGo(s.l, nil, "preload batch", func(r interface{}) {
		batch.settle(nil)
	}, func() {
		var merr *multierror.Error
		for i, h := range handles {
			if err := h.Wait(ctx); err != nil {
				merr = multierror.Append(merr, fmt.Errorf("%s: %w", descs[i].URL, err))
			}
		}
		if merr != nil && s.l != nil {
			s.l.Printf("preload: batch: %d of %d failed: %v", len(merr.Errors), len(descs), merr)
		}
		batch.settle(nil)
	})
	return batch
}
