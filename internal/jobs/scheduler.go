package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler drives every registered job on its own ticker. Each job runs in
// its own goroutine; stopping the scheduler cancels the shared context and
// waits for in-flight runs to finish.
type Scheduler struct {
	jobs   []Job
	log    *zap.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(jobs []Job, log *zap.Logger) *Scheduler {
	return &Scheduler{jobs: jobs, log: log}
}

// Start launches one trigger loop per job.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for _, job := range s.jobs {
		s.log.Info("scheduling job",
			zap.String("job", job.Name()),
			zap.Duration("every", job.Schedule().Every),
		)
		s.wg.Add(1)
		go func(job Job) {
			defer s.wg.Done()
			s.loop(ctx, job)
		}(job)
	}
}

// Stop cancels all trigger loops and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.log.Info("stopping job scheduler")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	sched := job.Schedule()

	if sched.RunAtStart {
		s.runOnce(ctx, job)
	}

	ticker := time.NewTicker(sched.Every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("job trigger stopped", zap.String("job", job.Name()))
			return
		case <-ticker.C:
			s.runOnce(ctx, job)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, job Job) {
	if _, err := job.Execute(ctx); err != nil {
		s.log.Error("job run failed", zap.String("job", job.Name()), zap.Error(err))
	}
}
