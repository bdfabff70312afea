// Package crontest provides test doubles for the cron package.
package crontest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flemzord/bacbot/internal/cron"
)

// MockJob is a configurable test double for cron.Job.
type MockJob struct {
	NameVal     string
	ScheduleVal string
	RunFunc     func(ctx context.Context) error

	mu       sync.Mutex
	calls    int
	lastCall time.Time
}

// Compile-time interface check.
var _ cron.Job = (*MockJob)(nil)

// Name implements cron.Job.
func (m *MockJob) Name() string { return m.NameVal }

// Schedule implements cron.Job.
func (m *MockJob) Schedule() string { return m.ScheduleVal }

// Run implements cron.Job and increments the call counter.
func (m *MockJob) Run(ctx context.Context) error {
	m.mu.Lock()
	m.calls++
	m.lastCall = time.Now()
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return nil
}

// CallCount returns the number of times Run was called.
func (m *MockJob) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastCall returns the time of the last Run call.
func (m *MockJob) LastCall() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCall
}

// MockExpirer is a test double for cron.Expirer.
type MockExpirer struct {
	ExpireFunc func(ctx context.Context) (int, error)
	Calls      atomic.Int32
}

// ExpirePending implements cron.Expirer.
func (m *MockExpirer) ExpirePending(ctx context.Context) (int, error) {
	m.Calls.Add(1)
	if m.ExpireFunc != nil {
		return m.ExpireFunc(ctx)
	}
	return 0, nil
}

// MockPruner is a test double for cron.Pruner. It records the last cutoff.
type MockPruner struct {
	PruneFunc func(ctx context.Context, cutoff time.Time) (int, error)

	mu     sync.Mutex
	cutoff time.Time
}

// PruneBefore implements cron.Pruner.
func (m *MockPruner) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	m.cutoff = cutoff
	m.mu.Unlock()
	if m.PruneFunc != nil {
		return m.PruneFunc(ctx, cutoff)
	}
	return 0, nil
}

// LastCutoff returns the cutoff of the most recent PruneBefore call.
func (m *MockPruner) LastCutoff() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cutoff
}

// MockReporter is a test double for cron.Reporter.
type MockReporter struct {
	Err   error
	Calls atomic.Int32
}

// SendReport implements cron.Reporter.
func (m *MockReporter) SendReport(context.Context) error {
	m.Calls.Add(1)
	return m.Err
}
