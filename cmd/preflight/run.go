package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/afero"
	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/preflight/preflight/internal/journal"
	"github.com/preflight/preflight/internal/prefetch"
	"github.com/preflight/preflight/pkg/preload"
)

func run(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return errors.New("manifest path required, try: preflight run manifest.json")
	}

	fs := afero.NewOsFs()
	m, err := loadManifest(fs, path)
	if err != nil {
		return err
	}
	plan, err := m.plan()
	if err != nil {
		return err
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	var j *journal.Journal
	if jp := ctx.String("journal"); jp != "" {
		j, err = journal.Open(jp)
		if err != nil {
			return err
		}
		defer j.Close()
	}

	total := len(plan.Critical) + len(plan.Essential) + len(plan.NonCritical)
	var bar *mpb.Bar
	var progress *mpb.Progress
	if !ctx.Bool("quiet") {
		progress = mpb.New(mpb.WithWidth(64))
		bar = initBar(progress, "Preloading", int64(total))
	}

	onSettle := func(rec preload.SettleRecord) {
		if bar != nil {
			bar.Increment()
		}
		if j == nil {
			return
		}
		r := journal.Record{
			URL:      rec.URL,
			Type:     string(rec.Type),
			Outcome:  "loaded",
			Attempts: rec.Attempts,
			Duration: rec.Duration,
		}
		if rec.Err != nil {
			r.Outcome = "failed"
			r.Detail = rec.Err.Error()
		}
		if err := j.Append(r); err != nil {
			logger.Printf("preflight: warning: %v", err)
		}
	}

	var cacheFS afero.Fs
	if m.CacheDir != "" {
		cacheFS = fs
	}
	maxConcurrent := m.MaxConcurrent
	if n := ctx.Int("concurrency"); n > 0 {
		maxConcurrent = n
	}

	sched := preload.NewScheduler(&preload.SchedulerOpts{
		MaxConcurrent: maxConcurrent,
		Adapters: preload.NewAdapterSet(&preload.AdapterOpts{
			CacheFS:  cacheFS,
			CacheDir: m.CacheDir,
			Logger:   logger,
		}),
		Logger:   logger,
		OnSettle: onSettle,
	})

	if q := ctx.String("network"); q != "" {
		quality, err := parseNetworkQuality(q)
		if err != nil {
			return err
		}
		cap := sched.ApplyNetworkQuality(quality)
		logger.Printf("preflight: network %s, concurrency capped at %d", q, cap)
	}

	pl := preload.NewPreloader(sched, plan, logger, func(stage preload.Stage, percent int) {
		if ctx.Bool("quiet") {
			logger.Printf("preflight: stage %s (%d%%)", stage, percent)
		}
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := pl.Run(runCtx); err != nil {
		if bar != nil {
			bar.Abort(true)
			progress.Wait()
		}
		return err
	}
	if bar != nil {
		bar.SetTotal(bar.Current(), true)
		progress.Wait()
	}

	stats := sched.Stats()
	fmt.Printf("preflight: %d loaded, %d failed\n", stats.LoadedCount, stats.FailedCount)

	if ctx.Bool("watch") && len(m.Prefetch) > 0 {
		return watchPrefetch(runCtx, logger, pl, m.Prefetch)
	}
	return nil
}

// watchPrefetch stays resident and fires the manifest's scheduled route
// prefetches until interrupted.
func watchPrefetch(ctx context.Context, logger *log.Logger, pl *preload.Preloader, entries []prefetchEntry) error {
	pf := prefetch.New(ctx, func(route string) {
		if err := pl.PreloadRoute(ctx, route); err != nil {
			logger.Printf("preflight: route %s prefetch: %v", route, err)
		} else {
			logger.Printf("preflight: route %s prefetched", route)
		}
	})
	for _, e := range entries {
		if !prefetch.ValidExpr(e.Cron) {
			return fmt.Errorf("invalid cron expression %q for route %s", e.Cron, e.Route)
		}
		next, err := prefetch.NextOccurrence(e.Cron, time.Now())
		if err != nil {
			return fmt.Errorf("route %s: %w", e.Route, err)
		}
		pf.Add(prefetch.Event{Route: e.Route, TriggerAt: next, CronExpr: e.Cron})
		logger.Printf("preflight: route %s scheduled, next at %s", e.Route, next.Format(time.RFC3339))
	}
	<-ctx.Done()
	return nil
}

func parseNetworkQuality(s string) (preload.NetworkQuality, error) {
	switch s {
	case "slow":
		return preload.NetworkSlow, nil
	case "medium":
		return preload.NetworkMedium, nil
	case "fast":
		return preload.NetworkFast, nil
	default:
		return 0, fmt.Errorf("unknown network quality %q, expected slow, medium or fast", s)
	}
}

func initBar(p *mpb.Progress, name string, total int64) *mpb.Bar {
	barStyle := mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟")
	bar := p.New(0,
		barStyle,
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DidentRight}),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
		),
	)
	bar.SetTotal(total, false)
	bar.EnableTriggerComplete()
	return bar
}
