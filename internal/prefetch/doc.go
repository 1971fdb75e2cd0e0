// Package prefetch provides scheduled route prefetching for preflight.
// It implements a single-goroutine scheduler using a min-heap of Events
// sorted by trigger time, with a 60-second max-sleep-cap to handle NTP
// steps, DST transitions, and system sleep (macOS monotonic clock pause).
//
// The prefetcher fires events and calls a registered onTrigger callback
// with the route name so the caller can run the preloader's route prefetch.
// It does not persist state — callers rebuild the heap on restart.
package prefetch
