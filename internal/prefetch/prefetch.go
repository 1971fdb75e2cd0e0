package prefetch

import (
	"container/heap"
	"context"
	"time"

	"github.com/adhocore/gronx"
)

const maxSleepCap = 60 * time.Second

// Prefetcher manages scheduled route-prefetch events using a min-heap.
// It runs a background goroutine that sleeps until the next event's
// trigger time, then calls the onTrigger callback with the route name.
type Prefetcher struct {
	addChan    chan Event
	removeChan chan string
	ctx        context.Context
}

// New creates and starts a new Prefetcher.
// The onTrigger callback is invoked when a scheduled event fires.
// The prefetcher goroutine exits when ctx is cancelled.
func New(ctx context.Context, onTrigger func(route string)) *Prefetcher {
	p := &Prefetcher{
		addChan:    make(chan Event, 64),
		removeChan: make(chan string, 64),
		ctx:        ctx,
	}
	go p.run(onTrigger)
	return p
}

// Add enqueues a new prefetch event.
func (p *Prefetcher) Add(event Event) {
	select {
	case p.addChan <- event:
	case <-p.ctx.Done():
	}
}

// Remove cancels a scheduled prefetch by route name.
func (p *Prefetcher) Remove(route string) {
	select {
	case p.removeChan <- route:
	case <-p.ctx.Done():
	}
}

// run is the core prefetcher goroutine implementing the active-object
// pattern. It maintains a min-heap of events and sleeps with a 60s
// max-sleep-cap. For recurring events (CronExpr != ""), after firing it
// computes the next occurrence and re-adds it to the heap automatically.
func (p *Prefetcher) run(onTrigger func(string)) {
	h := &eventHeap{}
	heap.Init(h)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		if h.Len() == 0 {
			// No events — block indefinitely on channels
			return nil
		}
		next := (*h)[0].TriggerAt
		dur := time.Until(next)
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()

	for {
		select {
		case <-p.ctx.Done():
			return

		case event := <-p.addChan:
			heapPush(h, event)
			timerCh = resetTimer()

		case route := <-p.removeChan:
			heapRemoveByRoute(h, route)
			timerCh = resetTimer()

		case <-timerCh:
			// Check and fire all events whose time has arrived
			now := time.Now()
			for h.Len() > 0 && !(*h)[0].TriggerAt.After(now) {
				event := heapPop(h)
				onTrigger(event.Route)
				if event.CronExpr != "" {
					next, err := NextOccurrence(event.CronExpr, time.Now())
					if err == nil {
						heapPush(h, Event{
							Route:     event.Route,
							TriggerAt: next,
							CronExpr:  event.CronExpr,
						})
					}
				}
			}
			timerCh = resetTimer()
		}
	}
}

// NextOccurrence returns the next time the cron expression fires strictly
// after start. Uses gronx.NextTickAfter with inclRefTime=false.
func NextOccurrence(expr string, start time.Time) (time.Time, error) {
	return gronx.NextTickAfter(expr, start, false)
}

// ValidExpr reports whether expr is a parseable cron expression.
func ValidExpr(expr string) bool {
	return gronx.New().IsValid(expr)
}
