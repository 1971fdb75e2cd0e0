package preload

import (
	"context"
	"sync"
	"testing"
)

func TestStatsPublisher_SuppressesIdenticalSnapshots(t *testing.T) {
	p := newStatsPublisher()
	var got []Stats
	p.subscribe(func(s Stats) { got = append(got, s) }, Stats{})
	got = got[:0] // drop the registration snapshot

	s := Stats{LoadedCount: 1, MaxConcurrent: 6}
	p.publish(s)
	p.publish(s)
	p.publish(s)
	if len(got) != 1 {
		t.Fatalf("expected 1 broadcast for identical snapshots, got %d", len(got))
	}

	s.QueuedCount = 2
	p.publish(s)
	if len(got) != 2 {
		t.Fatalf("expected a broadcast after a field changed, got %d", len(got))
	}
}

func TestStatsPublisher_InitialSnapshotIsSynchronous(t *testing.T) {
	p := newStatsPublisher()
	current := Stats{LoadedCount: 3, ActiveCount: 1}

	var got []Stats
	p.subscribe(func(s Stats) { got = append(got, s) }, current)
	if len(got) != 1 || got[0] != current {
		t.Fatalf("expected the current snapshot delivered at registration, got %v", got)
	}
}

// The registration snapshot must not update the publisher's change-detection
// state: the next publish of a differing snapshot still broadcasts.
func TestStatsPublisher_RegistrationDoesNotAffectSuppression(t *testing.T) {
	p := newStatsPublisher()
	first := Stats{LoadedCount: 1}
	p.publish(first)

	var got []Stats
	p.subscribe(func(s Stats) { got = append(got, s) }, Stats{LoadedCount: 5})

	p.publish(first)
	if len(got) != 1 {
		t.Fatalf("expected the repeat publish suppressed, got %d broadcasts", len(got))
	}

	p.publish(Stats{LoadedCount: 2})
	if len(got) != 2 {
		t.Fatalf("expected the changed publish broadcast, got %d", len(got))
	}
}

func TestStatsPublisher_Unsubscribe(t *testing.T) {
	p := newStatsPublisher()
	var a, b int
	unsubA := p.subscribe(func(Stats) { a++ }, Stats{})
	p.subscribe(func(Stats) { b++ }, Stats{})
	a, b = 0, 0

	unsubA()
	unsubA() // idempotent
	p.publish(Stats{LoadedCount: 1})
	if a != 0 {
		t.Fatalf("expected the removed subscriber silent, got %d calls", a)
	}
	if b != 1 {
		t.Fatalf("expected the remaining subscriber notified, got %d calls", b)
	}
}

func TestScheduler_OnStatsChange(t *testing.T) {
	gate := make(chan struct{})
	s := newTestScheduler(1, AdapterFunc(func(ctx context.Context, url string, opts Options) error {
		<-gate
		return nil
	}))

	var mu sync.Mutex
	var got []Stats
	unsub := s.OnStatsChange(func(st Stats) {
		mu.Lock()
		got = append(got, st)
		mu.Unlock()
	})
	defer unsub()

	mu.Lock()
	if len(got) != 1 {
		mu.Unlock()
		t.Fatalf("expected a synchronous initial snapshot, got %d", len(got))
	}
	if got[0].MaxConcurrent != 1 {
		mu.Unlock()
		t.Fatalf("unexpected initial snapshot %+v", got[0])
	}
	mu.Unlock()

	h := s.Submit(desc("https://cdn.test/a", PriorityHigh))
	close(gate)
	if err := waitHandle(t, h); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 2 && got[len(got)-1].LoadedCount == 1
	}, "expected a final snapshot with LoadedCount=1")

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(got); i++ {
		if got[i] == got[i-1] {
			t.Fatalf("consecutive identical snapshots broadcast: %+v", got[i])
		}
	}
	last := got[len(got)-1]
	if last.ActiveCount != 0 || last.QueuedCount != 0 || last.FailedCount != 0 {
		t.Fatalf("unexpected final snapshot %+v", last)
	}
}
