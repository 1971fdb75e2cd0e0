package prefetch

import "time"

// Event represents a pending route prefetch in the scheduler heap.
// It is an in-memory only type — callers rebuild the heap on restart.
type Event struct {
	// Route is the named route to prefetch when TriggerAt is reached.
	Route string
	// TriggerAt is the wall-clock time when this prefetch should fire.
	TriggerAt time.Time
	// CronExpr is the cron expression for recurring prefetches.
	// Empty string means one-shot — no re-scheduling after firing.
	CronExpr string
}
