/*
scheduler.go - Automated month-end report scheduler

PURPOSE:
  Periodically snapshots every worker's productivity report for the month
  that just ended, so payroll reads a frozen figure even if punches are
  corrected later.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Targets the calendar month before "now"
  - Skips workers that already have a snapshot for that month
  - One worker failing does not stop the others

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether the scheduler is active (default: true)

USAGE:
  scheduler := NewMonthlyReportScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: TakeSnapshot, RunReports (manual snapshots)
  - productivity/snapshot.go: Snapshot
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/productivity"
)

// MonthlyReportScheduler snapshots last month's reports.
type MonthlyReportScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool
	Logger        *slog.Logger

	ticker *time.Ticker
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// RunStats counts what one pass did.
type RunStats struct {
	Period  generic.Period
	Taken   int
	Skipped int
	Failed  int

	// Cancelled is set when the context ended before every worker was seen.
	Cancelled bool
}

// NewMonthlyReportScheduler creates a new scheduler.
func NewMonthlyReportScheduler(handler *Handler) *MonthlyReportScheduler {
	return &MonthlyReportScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		Logger:        handler.Logger.With("component", "scheduler"),
	}
}

// Start begins the scheduler.
func (s *MonthlyReportScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Logger.Info("scheduler disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.ticker = time.NewTicker(s.CheckInterval)
	s.cancel = cancel
	s.wg.Add(1)

	go s.run(ctx, s.ticker)

	s.Logger.Info("scheduler started", "interval", s.CheckInterval.String())
}

// Stop cancels a running pass and waits for it to return.
func (s *MonthlyReportScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	s.cancel()
	s.wg.Wait()
	s.ticker = nil
	s.cancel = nil
	s.Logger.Info("scheduler stopped")
}

func (s *MonthlyReportScheduler) run(ctx context.Context, ticker *time.Ticker) {
	defer s.wg.Done()

	// Run immediately on start
	s.RunNow(ctx)

	for {
		select {
		case <-ticker.C:
			s.RunNow(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunNow snapshots the previous month for every worker that lacks one.
func (s *MonthlyReportScheduler) RunNow(ctx context.Context) RunStats {
	period := generic.MonthPeriod(generic.DateOf(s.Handler.Now())).PreviousMonth()
	stats := RunStats{Period: period}

	workers, err := s.Handler.Store.ListWorkers(ctx)
	if err != nil {
		stats.Cancelled = ctx.Err() != nil
		s.Logger.Error("list workers", "error", err)
		return stats
	}

	for _, w := range workers {
		if ctx.Err() != nil {
			s.Logger.Warn("month-end pass cancelled", "period", period.String(), "error", ctx.Err())
			stats.Cancelled = true
			break
		}
		existing, err := s.Handler.Store.GetSnapshot(ctx, w.ID, period)
		if err != nil {
			s.Logger.Error("check snapshot", "worker", w.ID, "error", err)
			stats.Failed++
			continue
		}
		if existing != nil {
			stats.Skipped++
			continue
		}
		if _, err := s.Handler.TakeSnapshot(ctx, w.ID, period, productivity.SnapshotMonthEnd); err != nil {
			s.Logger.Error("month-end snapshot", "worker", w.ID, "period", period.String(), "error", err)
			stats.Failed++
			continue
		}
		stats.Taken++
	}

	if stats.Taken > 0 || stats.Failed > 0 || stats.Cancelled {
		s.Logger.Info("month-end pass complete",
			"period", period.String(),
			"taken", stats.Taken,
			"skipped", stats.Skipped,
			"failed", stats.Failed,
		)
	}
	return stats
}

// NextRunTime returns when the next scheduled check will occur.
func (s *MonthlyReportScheduler) NextRunTime() time.Time {
	return s.Handler.Now().Add(s.CheckInterval)
}
