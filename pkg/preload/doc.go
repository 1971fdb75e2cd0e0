// Package preload implements an adaptive, priority-based resource-loading
// scheduler for application start-up. Callers submit immutable descriptors;
// the Scheduler orders them by priority class (FIFO within a class), admits
// up to a concurrency cap, dispatches each through a timeout/retry
// supervisor to a type-matched adapter, deduplicates concurrent submits of
// one URL onto a shared completion handle, and publishes change-suppressed
// stats snapshots to subscribers.
//
// The Preloader sequences named descriptor groups (critical, essential,
// non-critical) on top of the Scheduler for start-up ordering and route
// prefetch. The Monitor is an independent observer of externally supplied
// timing measurements compared against static targets; it never influences
// scheduling.
package preload
