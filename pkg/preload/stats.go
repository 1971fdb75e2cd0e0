package preload

import (
	"sync"
)

// Stats is a point-in-time snapshot of scheduler state. It is recomputed on
// every mutation and broadcast only when a field differs from the last
// broadcast snapshot.
type Stats struct {
	LoadedCount   int
	FailedCount   int
	QueuedCount   int
	ActiveCount   int
	MaxConcurrent int
}

// statsPublisher maintains subscriber callbacks and performs the
// change-suppressed broadcast. A newly registered subscriber receives one
// synchronous snapshot immediately, so it never observes "no data".
type statsPublisher struct {
	mu   sync.Mutex
	subs map[int]func(Stats)
	next int
	last Stats
	sent bool
}

func newStatsPublisher() *statsPublisher {
	return &statsPublisher{
		subs: make(map[int]func(Stats)),
	}
}

// publish broadcasts the snapshot unless it is field-for-field identical to
// the last broadcast one. Callbacks run synchronously on the caller's
// goroutine and must not block.
func (p *statsPublisher) publish(s Stats) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent && s == p.last {
		return
	}
	p.last = s
	p.sent = true
	for _, fn := range p.subs {
		fn(s)
	}
}

// subscribe registers a callback and delivers the current snapshot to it
// synchronously. The returned function unsubscribes; it is idempotent.
func (p *statsPublisher) subscribe(fn func(Stats), current Stats) func() {
	p.mu.Lock()
	id := p.next
	p.next++
	p.subs[id] = fn
	p.mu.Unlock()

	fn(current)

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}
