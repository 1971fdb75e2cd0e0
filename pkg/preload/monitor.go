package preload

import (
	"sort"
	"sync"
	"time"
)

// Breach records one instance of an observed metric exceeding its target.
// Breaches are derived on demand and never persisted across calls.
type Breach struct {
	Metric string
	Value  float64
	Target float64
}

// Report is a point-in-time view over the observed metric set.
type Report struct {
	GeneratedAt time.Time
	Metrics     map[string]float64
	Breaches    []Breach
}

// DefaultTargets returns the static threshold table (milliseconds) used when
// NewMonitor is given none.
func DefaultTargets() map[string]float64 {
	return map[string]float64{
		"first-contentful-paint":   1800,
		"largest-contentful-paint": 2500,
		"time-to-interactive":      3800,
		"first-input-delay":        100,
		"critical-path-loaded":     3000,
	}
}

// Monitor is a purely observational store of externally delivered timing
// measurements: last-write-wins per metric, no history. It compares values
// against a static target table and never gates or influences the scheduler.
type Monitor struct {
	targets map[string]float64
	latest  VMap[string, float64]

	mu   sync.Mutex
	subs map[int]func(Breach)
	next int
}

// NewMonitor creates a Monitor. A nil targets table means DefaultTargets.
func NewMonitor(targets map[string]float64) *Monitor {
	if targets == nil {
		targets = DefaultTargets()
	}
	return &Monitor{
		targets: targets,
		latest:  NewVMap[string, float64](),
		subs:    make(map[int]func(Breach)),
	}
}

// Observe stores the latest value for metric, replacing any earlier one.
// If the value exceeds the metric's target, subscribers are notified with
// the derived Breach.
func (m *Monitor) Observe(metric string, value float64) {
	m.latest.Set(metric, value)

	target, ok := m.targets[metric]
	if !ok || value <= target {
		return
	}
	b := Breach{Metric: metric, Value: value, Target: target}
	m.mu.Lock()
	subs := make([]func(Breach), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()
	for _, fn := range subs {
		fn(b)
	}
}

// GetBreaches derives the current breach list: every observed metric whose
// latest value exceeds its target, sorted by metric name.
func (m *Monitor) GetBreaches() []Breach {
	var breaches []Breach
	for metric, value := range m.latest.Dump() {
		target, ok := m.targets[metric]
		if ok && value > target {
			breaches = append(breaches, Breach{Metric: metric, Value: value, Target: target})
		}
	}
	sort.Slice(breaches, func(i, j int) bool {
		return breaches[i].Metric < breaches[j].Metric
	})
	return breaches
}

// GetReport returns a point-in-time report over the observed metric set.
func (m *Monitor) GetReport() Report {
	return Report{
		GeneratedAt: time.Now(),
		Metrics:     m.latest.Dump(),
		Breaches:    m.GetBreaches(),
	}
}

// Subscribe registers a breach listener, fired on each Observe that exceeds
// a target. The returned function unsubscribes.
func (m *Monitor) Subscribe(fn func(Breach)) func() {
	m.mu.Lock()
	id := m.next
	m.next++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}
