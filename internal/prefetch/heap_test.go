package prefetch

import (
	"container/heap"
	"testing"
	"time"
)

func TestEventHeapOrdering(t *testing.T) {
	h := &eventHeap{}
	heap.Init(h)

	now := time.Now()
	heapPush(h, Event{Route: "c", TriggerAt: now.Add(3 * time.Hour)})
	heapPush(h, Event{Route: "a", TriggerAt: now.Add(1 * time.Hour)})
	heapPush(h, Event{Route: "b", TriggerAt: now.Add(2 * time.Hour)})

	// Pop should return in ascending TriggerAt order (min-heap)
	want := []string{"a", "b", "c"}
	for _, route := range want {
		e := heapPop(h)
		if e.Route != route {
			t.Fatalf("expected route %s, got %s", route, e.Route)
		}
	}
	if h.Len() != 0 {
		t.Fatalf("expected empty heap, got len %d", h.Len())
	}
}

func TestEventHeapRemoveByRoute(t *testing.T) {
	h := &eventHeap{}
	heap.Init(h)

	now := time.Now()
	heapPush(h, Event{Route: "a", TriggerAt: now.Add(1 * time.Hour)})
	heapPush(h, Event{Route: "b", TriggerAt: now.Add(2 * time.Hour)})
	heapPush(h, Event{Route: "c", TriggerAt: now.Add(3 * time.Hour)})

	if !heapRemoveByRoute(h, "b") {
		t.Fatal("expected removal of route b to succeed")
	}
	if heapRemoveByRoute(h, "b") {
		t.Fatal("expected second removal of route b to fail")
	}
	if h.Len() != 2 {
		t.Fatalf("expected 2 events left, got %d", h.Len())
	}

	// Remaining events still pop in order
	if e := heapPop(h); e.Route != "a" {
		t.Fatalf("expected route a, got %s", e.Route)
	}
	if e := heapPop(h); e.Route != "c" {
		t.Fatalf("expected route c, got %s", e.Route)
	}
}

func TestEventHeapRemoveMissing(t *testing.T) {
	h := &eventHeap{}
	heap.Init(h)
	if heapRemoveByRoute(h, "nope") {
		t.Fatal("expected removal from an empty heap to fail")
	}
}
