package jobs

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/neel2751/lomashwood-product-service/internal/cache"
	"github.com/neel2751/lomashwood-product-service/internal/events/payload"
	"github.com/neel2751/lomashwood-product-service/internal/producer"
)

// Result is the audit snapshot of one job execution. It is created fresh per
// run and never mutated after the run ends.
type Result struct {
	Job          string         `json:"job"`
	StartedAt    time.Time      `json:"started_at"`
	DurationMS   int64          `json:"duration_ms"`
	TotalChecked int            `json:"total_checked"`
	Counters     map[string]int `json:"counters,omitempty"`
	Errors       int            `json:"errors"`
}

// base carries the plumbing every job shares: the single-flight guard,
// timing, last-run bookkeeping and report persistence.
type base struct {
	name      string
	schedule  Schedule
	reportTTL time.Duration
	running   atomic.Bool
	lastRun   atomic.Pointer[time.Time]
	reporter  *reporter
	log       *zap.Logger
}

func (b *base) Name() string       { return b.name }
func (b *base) Schedule() Schedule { return b.schedule }

// LastRun returns when the most recent run started, or the zero time if the
// job has never run.
func (b *base) LastRun() time.Time {
	if t := b.lastRun.Load(); t != nil {
		return *t
	}
	return time.Time{}
}

// run wraps a job body with the shared execution pattern. A concurrent call
// while a run is in progress returns an empty Result without touching the
// body. The body's error is fatal to the whole run; per-item failures belong
// in res.Errors instead.
func (b *base) run(ctx context.Context, body func(ctx context.Context, res *Result) error) (Result, error) {
	if !b.running.CompareAndSwap(false, true) {
		b.log.Debug("run already in progress, skipping", zap.String("job", b.name))
		return Result{}, nil
	}
	defer b.running.Store(false)

	started := time.Now().UTC()
	b.lastRun.Store(&started)

	res := Result{
		Job:       b.name,
		StartedAt: started,
		Counters:  map[string]int{},
	}

	err := body(ctx, &res)
	res.DurationMS = time.Since(started).Milliseconds()

	b.reporter.record(ctx, res, err, b.reportTTL)
	if err != nil {
		return Result{}, fmt.Errorf("%s run failed: %w", b.name, err)
	}
	return res, nil
}

// forEachBatch processes items in fixed-size batches. A failing item bumps
// the failed counter and the loop continues; only context cancellation stops
// the sweep early. The limiter, when set, throttles item throughput so a
// maintenance sweep cannot starve the live workload.
func forEachBatch[T any](ctx context.Context, items []T, size int, limiter *rate.Limiter, fn func(ctx context.Context, item T) error) (processed, failed int, err error) {
	if size <= 0 {
		size = defaultBatchSize
	}
	for _, batch := range lo.Chunk(items, size) {
		for _, item := range batch {
			if err := ctx.Err(); err != nil {
				return processed, failed, err
			}
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return processed, failed, err
				}
			}
			if err := fn(ctx, item); err != nil {
				failed++
				continue
			}
			processed++
		}
	}
	return processed, failed, nil
}

// reporter persists run reports and announces run outcomes on the bus.
type reporter struct {
	cache  cache.Store
	events *producer.Events
	log    *zap.Logger
}

func newReporter(store cache.Store, events *producer.Events, log *zap.Logger) *reporter {
	return &reporter{cache: store, events: events, log: log}
}

// record writes the run-report snapshot and emits job.completed or
// job.failed. Reporting failures are logged but never fail the run that is
// being reported on.
func (r *reporter) record(ctx context.Context, res Result, runErr error, ttl time.Duration) {
	if runErr != nil {
		r.log.Error("job run failed",
			zap.String("job", res.Job),
			zap.Int64("durationMs", res.DurationMS),
			zap.Error(runErr),
		)
		if err := r.events.JobFailed(ctx, payload.JobFailed{Job: res.Job, Error: runErr.Error()}); err != nil {
			r.log.Warn("failed to publish job failure", zap.String("job", res.Job), zap.Error(err))
		}
		return
	}

	key := cache.RunReportKey(res.Job, res.StartedAt.UnixMilli())
	if err := r.cache.Set(ctx, key, res, ttl); err != nil {
		r.log.Warn("failed to persist run report", zap.String("job", res.Job), zap.Error(err))
	} else if err := r.cache.SAdd(ctx, cache.RunReportIndexKey(res.Job), key); err != nil {
		r.log.Warn("failed to index run report", zap.String("job", res.Job), zap.Error(err))
	}

	if err := r.events.JobCompleted(ctx, payload.JobCompleted{
		Job:        res.Job,
		DurationMS: res.DurationMS,
		Counters:   res.Counters,
	}); err != nil {
		r.log.Warn("failed to publish job completion", zap.String("job", res.Job), zap.Error(err))
	}

	r.log.Info("job run completed",
		zap.String("job", res.Job),
		zap.Int64("durationMs", res.DurationMS),
		zap.Int("totalChecked", res.TotalChecked),
		zap.Int("errors", res.Errors),
		zap.Any("counters", res.Counters),
	)
}
