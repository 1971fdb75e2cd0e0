package preload

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Stage is the start-up sequencing state of a Preloader.
type Stage int

const (
	StageNotStarted Stage = iota
	StageLoadingCritical
	StageCriticalReady
	StageLoadingEssential
	StageLoadingNonCritical
	StageComplete
)

// String returns the name of the stage.
func (st Stage) String() string {
	switch st {
	case StageNotStarted:
		return "not-started"
	case StageLoadingCritical:
		return "loading-critical"
	case StageCriticalReady:
		return "critical-ready"
	case StageLoadingEssential:
		return "loading-essential"
	case StageLoadingNonCritical:
		return "loading-non-critical"
	case StageComplete:
		return "complete"
	default:
		return fmt.Sprintf("stage(%d)", int(st))
	}
}

// Fixed per-stage progress weights.
const (
	ProgressCritical  = 40
	ProgressEssential = 70
	ProgressComplete  = 100
)

// ProgressFunc receives stage transitions with the cumulative progress
// percentage for the completed work.
type ProgressFunc func(stage Stage, percent int)

// Plan names the descriptor groups a Preloader sequences, plus the
// named-route table served by PreloadRoute.
type Plan struct {
	// Critical must fully and successfully settle before anything else
	// dispatches. Any member failure aborts the whole sequence.
	Critical []Descriptor
	// Essential settles per-item; failures are logged, never blocking.
	Essential []Descriptor
	// NonCritical settles per-item; failures are logged, never blocking.
	NonCritical []Descriptor
	// Routes maps route names to prefetch descriptors.
	Routes map[string][]Descriptor
}

// Preloader sequences ordered descriptor groups through the scheduler for
// start-up and route prefetch. It is a pure consumer of the scheduler's
// submission API.
type Preloader struct {
	s          *Scheduler
	plan       Plan
	l          *log.Logger
	onProgress ProgressFunc

	mu    sync.Mutex
	stage Stage
}

// NewPreloader creates a Preloader over s. onProgress may be nil.
func NewPreloader(s *Scheduler, plan Plan, l *log.Logger, onProgress ProgressFunc) *Preloader {
	return &Preloader{
		s:          s,
		plan:       plan,
		l:          l,
		onProgress: onProgress,
		stage:      StageNotStarted,
	}
}

// Stage returns the current sequencing stage.
func (p *Preloader) Stage() Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stage
}

func (p *Preloader) setStage(st Stage, percent int) {
	p.mu.Lock()
	p.stage = st
	p.mu.Unlock()
	if p.onProgress != nil {
		p.onProgress(st, percent)
	}
}

// Run executes the start-up sequence: the critical group must fully succeed
// before the essential and non-critical groups dispatch. A critical failure
// aborts the sequence and is returned; essential and non-critical failures
// are caught and logged so one failure never blocks siblings or later
// stages. Run may be called once per Preloader.
func (p *Preloader) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.stage != StageNotStarted {
		p.mu.Unlock()
		return ErrPreloadStarted
	}
	p.stage = StageLoadingCritical
	p.mu.Unlock()
	if p.onProgress != nil {
		p.onProgress(StageLoadingCritical, 0)
	}

	handles := make([]*Handle, len(p.plan.Critical))
	for i, d := range p.plan.Critical {
		handles[i] = p.s.Submit(d)
	}
	for i, h := range handles {
		if err := h.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCriticalPreload, p.plan.Critical[i].URL, err)
		}
	}
	p.setStage(StageCriticalReady, ProgressCritical)

	p.setStage(StageLoadingEssential, ProgressCritical)
	p.waitGroup(ctx, p.plan.Essential, "essential")

	p.setStage(StageLoadingNonCritical, ProgressEssential)
	p.waitGroup(ctx, p.plan.NonCritical, "non-critical")

	p.setStage(StageComplete, ProgressComplete)
	return nil
}

// waitGroup settles one best-effort group, logging aggregated failures.
func (p *Preloader) waitGroup(ctx context.Context, descs []Descriptor, label string) {
	handles := make([]*Handle, len(descs))
	for i, d := range descs {
		handles[i] = p.s.Submit(d)
	}
	var merr *multierror.Error
	for i, h := range handles {
		if err := h.Wait(ctx); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", descs[i].URL, err))
		}
	}
	if merr != nil && p.l != nil {
		p.l.Printf("preload: %s group: %d of %d failed: %v",
			label, len(merr.Errors), len(descs), merr)
	}
}

// PreloadRoute prefetches the named route's descriptors as one best-effort
// batch and waits for the batch to settle.
func (p *Preloader) PreloadRoute(ctx context.Context, name string) error {
	descs, ok := p.plan.Routes[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRoute, name)
	}
	return p.s.PreloadBatch(ctx, descs).Wait(ctx)
}
