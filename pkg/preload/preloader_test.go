package preload

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testPlan() Plan {
	return Plan{
		Critical:    []Descriptor{desc("crit://a", PriorityCritical), desc("crit://b", PriorityCritical)},
		Essential:   []Descriptor{desc("ess://a", PriorityHigh)},
		NonCritical: []Descriptor{desc("non://a", PriorityLow)},
		Routes: map[string][]Descriptor{
			"dashboard": {desc("route://dash/a", PriorityPrefetch), desc("route://dash/b", PriorityPrefetch)},
		},
	}
}

func TestPreloader_StageSequence(t *testing.T) {
	s := newTestScheduler(4, AdapterFunc(func(ctx context.Context, url string, opts Options) error {
		return nil
	}))

	var mu sync.Mutex
	type transition struct {
		stage   Stage
		percent int
	}
	var seen []transition
	pl := NewPreloader(s, testPlan(), nil, func(st Stage, pct int) {
		mu.Lock()
		seen = append(seen, transition{st, pct})
		mu.Unlock()
	})

	if pl.Stage() != StageNotStarted {
		t.Fatalf("expected not-started, got %s", pl.Stage())
	}
	if err := pl.Run(context.Background()); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if pl.Stage() != StageComplete {
		t.Fatalf("expected complete, got %s", pl.Stage())
	}

	mu.Lock()
	defer mu.Unlock()
	want := []transition{
		{StageLoadingCritical, 0},
		{StageCriticalReady, ProgressCritical},
		{StageLoadingEssential, ProgressCritical},
		{StageLoadingNonCritical, ProgressEssential},
		{StageComplete, ProgressComplete},
	}
	if len(seen) != len(want) {
		t.Fatalf("expected %d transitions, got %v", len(want), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transition %d: got %+v, want %+v", i, seen[i], want[i])
		}
	}
}

// TestPreloader_CriticalFailureAborts: a critical failure aborts the run
// before the essential group dispatches.
func TestPreloader_CriticalFailureAborts(t *testing.T) {
	var essentialStarted int32
	a := AdapterFunc(func(ctx context.Context, url string, opts Options) error {
		if strings.HasPrefix(url, "ess://") || strings.HasPrefix(url, "non://") {
			atomic.StoreInt32(&essentialStarted, 1)
		}
		if url == "crit://b" {
			return errors.New("boom")
		}
		return nil
	})
	s := newTestScheduler(4, a)
	pl := NewPreloader(s, testPlan(), nil, nil)

	err := pl.Run(context.Background())
	if !errors.Is(err, ErrCriticalPreload) {
		t.Fatalf("expected ErrCriticalPreload, got %v", err)
	}
	if !strings.Contains(err.Error(), "crit://b") {
		t.Fatalf("expected the failing url named, got %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	if atomic.LoadInt32(&essentialStarted) == 1 {
		t.Fatal("later groups must not dispatch after a critical failure")
	}
	if st := pl.Stage(); st == StageComplete {
		t.Fatalf("expected an aborted stage, got %s", st)
	}
}

// TestPreloader_EssentialFailureDoesNotBlock: best-effort group failures are
// absorbed and the sequence completes.
func TestPreloader_EssentialFailureDoesNotBlock(t *testing.T) {
	a := AdapterFunc(func(ctx context.Context, url string, opts Options) error {
		if url == "ess://a" {
			return errors.New("boom")
		}
		return nil
	})
	s := newTestScheduler(4, a)
	pl := NewPreloader(s, testPlan(), nil, nil)

	if err := pl.Run(context.Background()); err != nil {
		t.Fatalf("a best-effort failure must not fail the run: %v", err)
	}
	if pl.Stage() != StageComplete {
		t.Fatalf("expected complete, got %s", pl.Stage())
	}
	if !s.HasFailed("ess://a") {
		t.Fatal("expected the essential failure recorded")
	}
	if !s.IsLoaded("non://a") {
		t.Fatal("expected the non-critical group to have run")
	}
}

func TestPreloader_RunOnlyOnce(t *testing.T) {
	s := newTestScheduler(4, AdapterFunc(func(ctx context.Context, url string, opts Options) error {
		return nil
	}))
	pl := NewPreloader(s, Plan{}, nil, nil)

	if err := pl.Run(context.Background()); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if err := pl.Run(context.Background()); !errors.Is(err, ErrPreloadStarted) {
		t.Fatalf("expected ErrPreloadStarted on the second run, got %v", err)
	}
}

func TestPreloader_PreloadRoute(t *testing.T) {
	s := newTestScheduler(4, AdapterFunc(func(ctx context.Context, url string, opts Options) error {
		return nil
	}))
	pl := NewPreloader(s, testPlan(), nil, nil)

	if err := pl.PreloadRoute(context.Background(), "dashboard"); err != nil {
		t.Fatalf("unexpected route error: %v", err)
	}
	if !s.IsLoaded("route://dash/a") || !s.IsLoaded("route://dash/b") {
		t.Fatal("expected the route descriptors loaded")
	}

	if err := pl.PreloadRoute(context.Background(), "settings"); !errors.Is(err, ErrUnknownRoute) {
		t.Fatalf("expected ErrUnknownRoute, got %v", err)
	}
}
