package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Expirer marks stale pending predictions expired. Defined here to avoid a
// dependency on the relay package.
type Expirer interface {
	ExpirePending(ctx context.Context) (int, error)
}

// Pruner deletes resolved predictions settled before a cutoff.
type Pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// Reporter posts the statistics report.
type Reporter interface {
	SendReport(ctx context.Context) error
}

// ExpirePendingJob expires predictions that stayed pending too long, for
// example because the source channel stopped posting mid-window.
type ExpirePendingJob struct {
	Expirer      Expirer
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "*/5 * * * *"
}

// Compile-time interface check.
var _ Job = (*ExpirePendingJob)(nil)

// Name implements Job.
func (j *ExpirePendingJob) Name() string { return "expire_pending" }

// Schedule implements Job.
func (j *ExpirePendingJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/5 * * * *"
}

// Run implements Job.
func (j *ExpirePendingJob) Run(ctx context.Context) error {
	n, err := j.Expirer.ExpirePending(ctx)
	if n > 0 {
		j.Logger.Info("cron: expired pending predictions", "count", n)
	}
	if err != nil {
		return fmt.Errorf("cron: expire pending: %w", err)
	}
	return nil
}

// PruneHistoryJob deletes resolved predictions older than Retention.
type PruneHistoryJob struct {
	Store        Pruner
	Retention    time.Duration
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "0 * * * *"

	now func() time.Time
}

// Compile-time interface check.
var _ Job = (*PruneHistoryJob)(nil)

// Name implements Job.
func (j *PruneHistoryJob) Name() string { return "prune_history" }

// Schedule implements Job.
func (j *PruneHistoryJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 * * * *"
}

// Run implements Job.
func (j *PruneHistoryJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: prune history cancelled: %w", ctx.Err())
	}
	now := time.Now
	if j.now != nil {
		now = j.now
	}

	n, err := j.Store.PruneBefore(ctx, now().Add(-j.Retention))
	if err != nil {
		return fmt.Errorf("cron: prune history: %w", err)
	}
	if n > 0 {
		j.Logger.Info("cron: pruned prediction history", "count", n, "retention", j.Retention)
	}
	return nil
}

// DailyReportJob posts the statistics report to the admin.
type DailyReportJob struct {
	Reporter     Reporter
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "0 0 * * *"
}

// Compile-time interface check.
var _ Job = (*DailyReportJob)(nil)

// Name implements Job.
func (j *DailyReportJob) Name() string { return "daily_report" }

// Schedule implements Job.
func (j *DailyReportJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 0 * * *"
}

// Run implements Job.
func (j *DailyReportJob) Run(ctx context.Context) error {
	if err := j.Reporter.SendReport(ctx); err != nil {
		return fmt.Errorf("cron: daily report: %w", err)
	}
	j.Logger.Debug("cron: daily report sent")
	return nil
}
