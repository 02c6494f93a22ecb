package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"CryptoBrain/pkg/logger"
)

// Task is one scheduled unit of work.
type Task func(ctx context.Context) error

// Scheduler runs named tasks on cron specs. A run that overlaps the
// previous one is skipped.
type Scheduler struct {
	cron    *cron.Cron
	log     *logger.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

// New builds a scheduler whose specs take a leading seconds field.
// timeout bounds each run; zero means no bound.
func New(log *logger.Logger, timeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
	}
}

// Register adds task under name. An empty spec leaves it unscheduled.
func (s *Scheduler) Register(name, spec string, task Task) error {
	if spec == "" {
		return nil
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, task) }); err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	s.log.Info("task scheduled", logger.String("task", name), logger.String("spec", spec))
	return nil
}

func (s *Scheduler) run(name string, task Task) {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	if err := task(ctx); err != nil {
		s.log.Error("scheduled task failed", logger.String("task", name), logger.Error(err))
		return
	}
	s.log.Info("scheduled task done", logger.String("task", name), logger.Duration("took_ms", time.Since(start)))
}

// RunNow executes task synchronously outside the schedule.
func (s *Scheduler) RunNow(name string, task Task) { s.run(name, task) }

// Entries counts scheduled tasks.
func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }

func (s *Scheduler) Start() { s.cron.Start() }

// Stop cancels running tasks and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}
