// Package jobs contains the scheduled maintenance jobs of the product
// service: inventory sync, repricing, search-index rebuild and stale-product
// purge. All four share one execution pattern: a recurring trigger, a
// single-flight guard, batched candidate processing and a persisted run
// report.
package jobs

import (
	"context"
	"time"
)

// Schedule describes a recurring trigger. Jobs run on a plain interval
// rather than a cron expression so the trigger stays a simple ticker.
type Schedule struct {
	// Every is the interval between runs.
	Every time.Duration
	// RunAtStart triggers one run immediately when the scheduler starts
	// instead of waiting a full interval first.
	RunAtStart bool
}

// Job is a schedulable unit of maintenance work. Execute must be safe to
// call while a run is already in progress: the second call returns a
// zero-valued Result immediately and performs no work.
type Job interface {
	Name() string
	Schedule() Schedule
	Execute(ctx context.Context) (Result, error)
}
