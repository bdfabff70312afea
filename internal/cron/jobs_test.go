package cron_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/flemzord/bacbot/internal/cron"
	"github.com/flemzord/bacbot/internal/cron/crontest"
)

var discard = slog.New(slog.DiscardHandler)

func TestJobNamesAndDefaultSchedules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		job      cron.Job
		name     string
		schedule string
	}{
		{&cron.ExpirePendingJob{}, "expire_pending", "*/5 * * * *"},
		{&cron.PruneHistoryJob{}, "prune_history", "0 * * * *"},
		{&cron.DailyReportJob{}, "daily_report", "0 0 * * *"},
		{&cron.DailyReportJob{ScheduleExpr: "30 8 * * 1"}, "daily_report", "30 8 * * 1"},
	}
	for _, tt := range tests {
		if got := tt.job.Name(); got != tt.name {
			t.Errorf("Name() = %q, want %q", got, tt.name)
		}
		if got := tt.job.Schedule(); got != tt.schedule {
			t.Errorf("%s Schedule() = %q, want %q", tt.name, got, tt.schedule)
		}
	}
}

func TestExpirePendingJob_Run(t *testing.T) {
	t.Parallel()

	exp := &crontest.MockExpirer{ExpireFunc: func(context.Context) (int, error) { return 2, nil }}
	job := &cron.ExpirePendingJob{Expirer: exp, Logger: discard}

	if err := job.Run(t.Context()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if exp.Calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", exp.Calls.Load())
	}
}

func TestExpirePendingJob_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	exp := &crontest.MockExpirer{ExpireFunc: func(context.Context) (int, error) { return 0, boom }}
	job := &cron.ExpirePendingJob{Expirer: exp, Logger: discard}

	if err := job.Run(t.Context()); !errors.Is(err, boom) {
		t.Errorf("Run error = %v, want wrapping boom", err)
	}
}

func TestPruneHistoryJob_Run(t *testing.T) {
	t.Parallel()

	pruner := &crontest.MockPruner{PruneFunc: func(context.Context, time.Time) (int, error) { return 3, nil }}
	job := &cron.PruneHistoryJob{Store: pruner, Retention: 24 * time.Hour, Logger: discard}

	before := time.Now()
	if err := job.Run(t.Context()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	after := time.Now()

	cutoff := pruner.LastCutoff()
	if cutoff.Before(before.Add(-24*time.Hour)) || cutoff.After(after.Add(-24*time.Hour)) {
		t.Errorf("cutoff = %v, want about 24h before now", cutoff)
	}
}

func TestPruneHistoryJob_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	pruner := &crontest.MockPruner{}
	job := &cron.PruneHistoryJob{Store: pruner, Retention: time.Hour, Logger: discard}
	if err := job.Run(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !pruner.LastCutoff().IsZero() {
		t.Error("store called despite cancelled context")
	}
}

func TestDailyReportJob_Run(t *testing.T) {
	t.Parallel()

	rep := &crontest.MockReporter{}
	job := &cron.DailyReportJob{Reporter: rep, Logger: discard}
	if err := job.Run(t.Context()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", rep.Calls.Load())
	}

	rep.Err = errors.New("telegram down")
	if err := job.Run(t.Context()); err == nil {
		t.Error("expected error from reporter")
	}
}

func TestScheduler_RunsRegisteredJobs(t *testing.T) {
	t.Parallel()

	s := cron.NewScheduler(discard)
	exp := &crontest.MockExpirer{}
	for _, j := range []cron.Job{
		&cron.ExpirePendingJob{Expirer: exp, Logger: discard},
		&cron.PruneHistoryJob{Store: &crontest.MockPruner{}, Retention: time.Hour, Logger: discard},
		&cron.DailyReportJob{Reporter: &crontest.MockReporter{}, Logger: discard},
	} {
		if err := s.RegisterJob(j); err != nil {
			t.Fatalf("RegisterJob(%s): %v", j.Name(), err)
		}
	}

	if err := s.RunJob(t.Context(), "expire_pending"); err != nil {
		t.Fatalf("RunJob: %v", err)
	}
	if exp.Calls.Load() != 1 {
		t.Errorf("expirer calls = %d, want 1", exp.Calls.Load())
	}
}
