package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"contas/internal/core"
)

// MonthOverview aggregates a month's totals straight from the transactions
// table. Projected installment rows are excluded by convention: they belong
// to statement totals, not day-to-day ones.
func (r *Repository) MonthOverview(ctx context.Context, month core.MonthKey) (core.MonthOverview, error) {
	overview := core.MonthOverview{Month: month}

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' AND status = 'pending' THEN amount_cents ELSE 0 END), 0)
		FROM transactions
		WHERE ref_month = ? AND projected = 0`, string(month)).
		Scan(&overview.IncomeCents, &overview.ExpenseCents, &overview.PendingCents)
	if err != nil {
		return overview, fmt.Errorf("month totals: %w", err)
	}
	overview.BalanceCents = overview.IncomeCents - overview.ExpenseCents

	rows, err := r.db.QueryContext(ctx, `
		SELECT COALESCE(t.category_id, ''), COALESCE(c.name, ''), SUM(t.amount_cents)
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.ref_month = ? AND t.projected = 0 AND t.type = 'expense'
		GROUP BY t.category_id
		ORDER BY SUM(t.amount_cents) DESC`, string(month))
	if err != nil {
		return overview, fmt.Errorf("month category sums: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.CategoryID, &ca.Name, &ca.AmountCents); err != nil {
			return overview, fmt.Errorf("scan category sum: %w", err)
		}
		overview.ByCategory = append(overview.ByCategory, ca)
	}
	if err := rows.Err(); err != nil {
		return overview, fmt.Errorf("iterate category sums: %w", err)
	}

	return overview, nil
}

// RefreshMonthSummary recomputes and upserts the month_summaries projection
// row for one month. Called by the event worker after ledger changes.
func (r *Repository) RefreshMonthSummary(ctx context.Context, month core.MonthKey, now time.Time) (core.MonthSummary, error) {
	summary := core.MonthSummary{Month: month, UpdatedAt: now}

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents ELSE 0 END), 0)
		FROM transactions
		WHERE ref_month = ? AND projected = 0`, string(month)).
		Scan(&summary.IncomeCents, &summary.ExpenseCents)
	if err != nil {
		return summary, fmt.Errorf("summary totals: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO month_summaries (ref_month, income_cents, expense_cents, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (ref_month) DO UPDATE SET
			income_cents = excluded.income_cents,
			expense_cents = excluded.expense_cents,
			updated_at = excluded.updated_at`,
		string(month), summary.IncomeCents, summary.ExpenseCents, now.Format(time.RFC3339Nano))
	if err != nil {
		return summary, fmt.Errorf("upsert month summary: %w", err)
	}

	return summary, nil
}

// ListRefMonths returns every distinct month that has at least one real
// transaction, most recent first. Used by the worker's startup catch-up.
func (r *Repository) ListRefMonths(ctx context.Context) ([]core.MonthKey, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT ref_month FROM transactions
		WHERE projected = 0
		ORDER BY ref_month DESC`)
	if err != nil {
		return nil, fmt.Errorf("list ref months: %w", err)
	}
	defer rows.Close()

	var months []core.MonthKey
	for rows.Next() {
		var m core.MonthKey
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan ref month: %w", err)
		}
		months = append(months, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ref months: %w", err)
	}
	return months, nil
}

func (r *Repository) GetMonthSummary(ctx context.Context, month core.MonthKey) (core.MonthSummary, error) {
	var (
		summary   core.MonthSummary
		updatedAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT ref_month, income_cents, expense_cents, updated_at
		FROM month_summaries WHERE ref_month = ?`, string(month)).
		Scan(&summary.Month, &summary.IncomeCents, &summary.ExpenseCents, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.MonthSummary{}, fmt.Errorf("month summary %s: %w", month, core.ErrNotFound)
		}
		return core.MonthSummary{}, fmt.Errorf("get month summary: %w", err)
	}
	summary.UpdatedAt = parseTimeOrZero(updatedAt)
	return summary, nil
}
