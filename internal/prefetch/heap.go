package prefetch

import "container/heap"

// eventHeap implements container/heap.Interface for Event,
// sorted by TriggerAt (earliest first — min-heap).
type eventHeap []Event

func (h eventHeap) Len() int           { return len(h) }
func (h eventHeap) Less(i, j int) bool { return h[i].TriggerAt.Before(h[j].TriggerAt) }
func (h eventHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// heapPush adds an Event to the heap, maintaining heap invariant.
func heapPush(h *eventHeap, e Event) {
	heap.Push(h, e)
}

// heapPop removes and returns the Event with the earliest TriggerAt.
// Panics if the heap is empty.
func heapPop(h *eventHeap) Event {
	return heap.Pop(h).(Event)
}

// heapRemoveByRoute removes the first Event for the given route.
// Returns true if an event was found and removed, false otherwise.
func heapRemoveByRoute(h *eventHeap, route string) bool {
	for i, e := range *h {
		if e.Route == route {
			heap.Remove(h, i)
			return true
		}
	}
	return false
}
