package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one run of a periodic job.
type Task func(context.Context) error

// SchedulerConfig configures a periodic job.
type SchedulerConfig struct {
	Interval   time.Duration
	MaxRetries int
	RetryDelay time.Duration
	RunOnStart bool
	Logger     *zap.Logger
}

// Scheduler runs a task on a fixed interval in a background goroutine. A
// failed run is retried up to MaxRetries times before waiting for the next
// tick.
type Scheduler struct {
	name string
	task Task

	interval   time.Duration
	maxRetries int
	retryDelay time.Duration
	runOnStart bool
	logger     *zap.Logger

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewScheduler builds a scheduler for task.
func NewScheduler(name string, task Task, cfg SchedulerConfig) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Scheduler{
		name:       name,
		task:       task,
		interval:   cfg.Interval,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		runOnStart: cfg.RunOnStart,
		logger:     cfg.Logger,
	}
}

// Start launches the background loop. Calling it twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.started = true
	s.wg.Add(1)
	go s.loop(ctx)
	s.logger.Sugar().Infow("scheduler started", "job", s.name, "interval", s.interval.String())
}

// Stop cancels the loop and waits for an in-flight run to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.started = false
	s.mu.Unlock()
	s.wg.Wait()
	s.logger.Sugar().Infow("scheduler stopped", "job", s.name)
}

// RunOnce executes the task with retries and returns the last error.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(s.retryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if err = s.task(ctx); err == nil {
			return nil
		}
		s.logger.Sugar().Warnw("job failed", "job", s.name, "attempt", attempt+1, "error", err)
	}
	s.logger.Sugar().Errorw("job exceeded retries", "job", s.name, "error", err)
	return err
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()
	if s.runOnStart {
		_ = s.RunOnce(ctx)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.RunOnce(ctx)
		}
	}
}
