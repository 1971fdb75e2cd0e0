package preload

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// Exercises concurrent submits, stats subscriptions and cap changes under
// the race detector.
func TestScheduler_ConcurrentSubmits(t *testing.T) {
	s := newTestScheduler(4, AdapterFunc(func(ctx context.Context, url string, opts Options) error {
		time.Sleep(time.Millisecond)
		return nil
	}))

	unsub := s.OnStatsChange(func(Stats) {})
	defer unsub()

	var wg sync.WaitGroup
	handles := make(chan *Handle, 200)
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				// Half the urls collide across goroutines to exercise dedup.
				url := fmt.Sprintf("https://cdn.test/shared/%d", i)
				if i%2 == 1 {
					url = fmt.Sprintf("https://cdn.test/g%d/%d", g, i)
				}
				handles <- s.Submit(desc(url, Priority(i%5)))
			}
		}(g)
	}
	go func() {
		for i := 0; i < 20; i++ {
			s.SetConcurrencyLimit(1 + i%6)
			time.Sleep(time.Millisecond)
		}
	}()

	wg.Wait()
	close(handles)
	for h := range handles {
		if err := waitHandle(t, h); err != nil {
			t.Fatalf("unexpected load error: %v", err)
		}
	}

	st := s.Stats()
	if st.ActiveCount != 0 || st.QueuedCount != 0 {
		t.Fatalf("expected a drained scheduler, got %+v", st)
	}
}

func TestMonitor_ConcurrentObserve(t *testing.T) {
	m := NewMonitor(nil)
	unsub := m.Subscribe(func(Breach) {})
	defer unsub()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				m.Observe("first-contentful-paint", float64(1000+i))
				m.GetBreaches()
				m.GetReport()
			}
		}(g)
	}
	wg.Wait()
}
