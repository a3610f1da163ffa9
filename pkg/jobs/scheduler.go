package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is a periodic maintenance function, such as pruning expired
// rate-limit windows.
type Task func(context.Context) error

type job struct {
	name     string
	interval time.Duration
	task     Task
}

// Scheduler runs registered tasks on fixed intervals in background
// goroutines. Failures are logged and the task retried on the next tick.
type Scheduler struct {
	logger *zap.Logger

	mu      sync.Mutex
	jobs    []job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewScheduler builds an empty scheduler.
func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{logger: logger}
}

// Register adds a named task. Must be called before Start.
func (s *Scheduler) Register(name string, interval time.Duration, task Task) {
	if interval <= 0 {
		interval = time.Hour
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		s.logger.Sugar().Warnw("scheduler already started, task ignored", "task", name)
		return
	}
	s.jobs = append(s.jobs, job{name: name, interval: interval, task: task})
}

// Start launches one goroutine per registered task. Safe to call once.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.run(j)
	}
	s.started = true
	s.logger.Sugar().Infow("scheduler started", "tasks", len(s.jobs))
}

// Stop cancels all tasks and waits for them to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
	s.logger.Sugar().Infow("scheduler stopped")
}

func (s *Scheduler) run(j job) {
	defer s.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			if err := j.task(s.ctx); err != nil {
				s.logger.Sugar().Errorw("scheduled task failed", "task", j.name, "error", err)
				continue
			}
			s.logger.Sugar().Debugw("scheduled task completed", "task", j.name, "duration", time.Since(start))
		}
	}
}
