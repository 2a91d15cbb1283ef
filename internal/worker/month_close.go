package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"presupuesto/internal/analytics"
	"presupuesto/internal/core"
	"presupuesto/internal/sheets"
	"presupuesto/internal/store"
)

// MonthClose summarizes a finished month into the ledger and, when the
// backend keeps archives, into the store.
type MonthClose struct {
	repo   store.Repository
	ledger sheets.LedgerWriter
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

func NewMonthClose(repo store.Repository, ledger sheets.LedgerWriter, loc *time.Location, logger *slog.Logger) *MonthClose {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MonthClose{
		repo:   repo,
		ledger: ledger,
		loc:    loc,
		now:    time.Now,
		logger: logger.With("component", "worker", "operation", "month_close"),
	}
}

// Close summarizes the calendar month containing at.
func (m *MonthClose) Close(ctx context.Context, at time.Time) (core.MonthSummary, error) {
	cats, err := m.repo.ListCategories(ctx)
	if err != nil {
		return core.MonthSummary{}, fmt.Errorf("list categories: %w", err)
	}
	exps, err := m.repo.ListExpenses(ctx)
	if err != nil {
		return core.MonthSummary{}, fmt.Errorf("list expenses: %w", err)
	}

	sum := analytics.Summarize(cats, exps, at.In(m.loc))

	ref, err := m.ledger.AppendMonthSummary(ctx, sum)
	if err != nil {
		return sum, fmt.Errorf("append month summary: %w", err)
	}
	if aw, ok := m.repo.(store.ArchiveWriter); ok {
		if err := aw.SaveMonthSummary(ctx, sum); err != nil {
			return sum, fmt.Errorf("archive month summary: %w", err)
		}
	}

	m.logger.InfoContext(ctx, "Month closed",
		"year", sum.Year,
		"month", sum.Month,
		"total_spent", int64(sum.TotalSpent),
		"expenses", sum.Expenses,
		"ledger_ref", ref)
	return sum, nil
}

// ClosePrevious closes the month before the current one.
func (m *MonthClose) ClosePrevious(ctx context.Context) (core.MonthSummary, error) {
	return m.Close(ctx, PreviousMonth(m.now().In(m.loc)))
}

// PreviousMonth returns the first instant of the month before now's.
func PreviousMonth(now time.Time) time.Time {
	return analytics.StartOfMonth(now).AddDate(0, -1, 0)
}

// Run schedules ClosePrevious with a standard five-field cron spec in the
// household time zone and blocks until ctx ends.
func (m *MonthClose) Run(ctx context.Context, spec string) error {
	c := cron.New(cron.WithLocation(m.loc))
	_, err := c.AddFunc(spec, func() {
		if _, err := m.ClosePrevious(ctx); err != nil {
			m.logger.ErrorContext(ctx, "Month close failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule month close %q: %w", spec, err)
	}

	c.Start()
	m.logger.InfoContext(ctx, "Month close scheduler started", "schedule", spec, "timezone", m.loc.String())

	<-ctx.Done()
	<-c.Stop().Done()
	m.logger.InfoContext(ctx, "Month close scheduler stopped")
	return nil
}
