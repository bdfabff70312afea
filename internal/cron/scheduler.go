package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/flemzord/bacbot/internal/core"
)

// ModuleID is the identifier of the scheduler module.
const ModuleID core.ModuleID = "cron"

// ErrUnknownJob is returned by RunJob for a name that was never registered.
var ErrUnknownJob = errors.New("cron: unknown job")

// ErrJobRunning is returned by RunJob when the job is already executing.
var ErrJobRunning = errors.New("cron: job already running")

// Compile-time interface guards.
var (
	_ core.Starter = (*Scheduler)(nil)
	_ core.Stopper = (*Scheduler)(nil)
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Scheduler manages periodic job execution using cron expressions.
// Each job is protected by a per-job mutex so a slow run is never
// overlapped by the next tick.
type Scheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	jobs   []Job
	byName map[string]Job
	locks  map[string]*sync.Mutex
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler. Jobs must be registered before Start().
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		byName: make(map[string]Job),
		locks:  make(map[string]*sync.Mutex),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// ModuleInfo implements core.Module.
func (s *Scheduler) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{ID: ModuleID}
}

// RegisterJob adds a job to the scheduler. Must be called before Start().
// It fails for a duplicate name or an invalid schedule.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := j.Name()
	if _, exists := s.byName[name]; exists {
		return fmt.Errorf("cron: duplicate job name %q", name)
	}
	if _, err := parser.Parse(j.Schedule()); err != nil {
		return fmt.Errorf("cron: invalid schedule for job %q: %w", name, err)
	}

	s.byName[name] = j
	s.locks[name] = &sync.Mutex{}
	s.jobs = append(s.jobs, j)
	return nil
}

// Jobs returns the registered job names in registration order.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, len(s.jobs))
	for i, j := range s.jobs {
		names[i] = j.Name()
	}
	return names
}

// Start implements core.Starter.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return errors.New("cron: scheduler already started")
	}

	c := cron.New(cron.WithParser(parser))
	for _, j := range s.jobs {
		if _, err := c.AddFunc(j.Schedule(), func() { _ = s.run(s.ctx, j) }); err != nil {
			return fmt.Errorf("cron: invalid schedule for job %q: %w", j.Name(), err)
		}
	}

	s.cron = c
	s.cron.Start()
	s.logger.Info("cron: scheduler started", "jobs", len(s.jobs))
	return nil
}

// Stop implements core.Stopper. It cancels running jobs and waits for them
// until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancel()
	if s.cron == nil {
		return nil
	}

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("cron: scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("cron: waiting for running jobs: %w", ctx.Err())
	}
}

// RunJob runs a registered job immediately, outside its schedule.
func (s *Scheduler) RunJob(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.byName[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}
	return s.run(ctx, j)
}

func (s *Scheduler) run(ctx context.Context, j Job) error {
	lock := s.locks[j.Name()]
	if !lock.TryLock() {
		s.logger.Warn("cron: job still running, skipping tick", "job", j.Name())
		return ErrJobRunning
	}
	defer lock.Unlock()

	start := time.Now()
	s.logger.Debug("cron: job started", "job", j.Name())
	if err := j.Run(ctx); err != nil {
		s.logger.Error("cron: job failed", "job", j.Name(), "error", err)
		return err
	}
	s.logger.Debug("cron: job completed", "job", j.Name(), "took", time.Since(start))
	return nil
}
