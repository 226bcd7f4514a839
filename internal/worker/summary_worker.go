package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"contas/internal/amqp"
	"contas/internal/core"
)

// SummaryStore is the slice of the storage layer the worker needs.
type SummaryStore interface {
	RefreshMonthSummary(ctx context.Context, month core.MonthKey, now time.Time) (core.MonthSummary, error)
	ListRefMonths(ctx context.Context) ([]core.MonthKey, error)
}

// SummaryWorker keeps the month_summaries projection in step with the
// ledger by consuming transaction events.
type SummaryWorker struct {
	store SummaryStore
}

func NewSummaryWorker(store SummaryStore) *SummaryWorker {
	return &SummaryWorker{store: store}
}

// HandleTransactionEvent refreshes the summary for the month named by a
// single event. Events for deleted transactions carry the month the row
// used to live in, so the same refresh covers all actions.
func (w *SummaryWorker) HandleTransactionEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"action", msg.Action,
		"id", msg.ID,
		"ref_month", msg.RefMonth)

	if err := msg.RefMonth.Validate(); err != nil {
		// Malformed events are dropped, requeueing them cannot help.
		slog.WarnContext(ctx, "Dropping event with invalid ref month",
			"id", msg.ID,
			"ref_month", msg.RefMonth)
		return nil
	}

	summary, err := w.store.RefreshMonthSummary(ctx, msg.RefMonth, time.Now())
	if err != nil {
		return fmt.Errorf("refresh month summary: %w", err)
	}

	slog.InfoContext(ctx, "Refreshed month summary",
		"ref_month", summary.Month,
		"income_cents", summary.IncomeCents,
		"expense_cents", summary.ExpenseCents)

	return nil
}

// StartupRefresh recomputes every month that has transactions. Run once at
// worker startup to recover from missed events or worker downtime.
func (w *SummaryWorker) StartupRefresh(ctx context.Context) error {
	months, err := w.store.ListRefMonths(ctx)
	if err != nil {
		return fmt.Errorf("list months for startup refresh: %w", err)
	}

	if len(months) == 0 {
		slog.InfoContext(ctx, "No months to refresh on startup")
		return nil
	}

	slog.InfoContext(ctx, "Refreshing month summaries on startup", "count", len(months))

	successCount := 0
	errorCount := 0

	for _, month := range months {
		if _, err := w.store.RefreshMonthSummary(ctx, month, time.Now()); err != nil {
			slog.ErrorContext(ctx, "Failed to refresh month summary during startup",
				"ref_month", month, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup refresh completed",
		"total", len(months),
		"refreshed", successCount,
		"errors", errorCount)

	return nil
}
