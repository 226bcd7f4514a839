package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"contas/internal/core"
)

const planColumns = `id, created_at, purchase_date, description, category_id,
	card_id, total_cents, installments, mode`

// CreatePlanWithTransactions persists the plan-of-record and every
// generated installment transaction in a single SQL transaction. Plan
// creation is all-or-nothing: a failure on any installment rolls the whole
// plan back.
func (r *Repository) CreatePlanWithTransactions(ctx context.Context, plan core.InstallmentPlan, txs []core.Transaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin plan transaction: %w", err)
	}
	defer dbTx.Rollback()

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO installment_plans (`+planColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID,
		plan.CreatedAt.Format(time.RFC3339Nano),
		plan.PurchaseDate.String(),
		plan.Description,
		nullStr(plan.CategoryID),
		plan.CardID,
		plan.TotalCents,
		plan.Installments,
		string(plan.Mode))
	if err != nil {
		return fmt.Errorf("insert installment plan: %w", err)
	}

	for _, tx := range txs {
		if err := insertTransaction(ctx, dbTx, tx); err != nil {
			return fmt.Errorf("installment %d/%d: %w", tx.InstallmentIndex, tx.InstallmentCount, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit plan: %w", err)
	}

	slog.InfoContext(ctx, "installment plan created",
		"id", plan.ID,
		"installments", plan.Installments,
		"total_cents", plan.TotalCents,
		"mode", plan.Mode)
	return nil
}

func (r *Repository) GetPlan(ctx context.Context, id string) (core.InstallmentPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM installment_plans WHERE id = ?`, id)
	plan, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.InstallmentPlan{}, fmt.Errorf("installment plan %s: %w", id, core.ErrNotFound)
		}
		return core.InstallmentPlan{}, fmt.Errorf("get installment plan: %w", err)
	}
	return plan, nil
}

func (r *Repository) ListPlans(ctx context.Context) ([]core.InstallmentPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+planColumns+` FROM installment_plans ORDER BY purchase_date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list installment plans: %w", err)
	}
	defer rows.Close()

	var plans []core.InstallmentPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan installment plan: %w", err)
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate installment plans: %w", err)
	}
	return plans, nil
}

// DeletePlan removes the plan-of-record and all transactions it generated,
// atomically.
func (r *Repository) DeletePlan(ctx context.Context, id string) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin plan delete: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx,
		`DELETE FROM transactions WHERE installment_plan_id = ?`, id); err != nil {
		return fmt.Errorf("delete plan transactions: %w", err)
	}
	if _, err := dbTx.ExecContext(ctx,
		`DELETE FROM installment_plans WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete installment plan: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit plan delete: %w", err)
	}
	return nil
}

// ListPlanTransactions returns the installments generated for a plan,
// ordered by installment index.
func (r *Repository) ListPlanTransactions(ctx context.Context, planID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE installment_plan_id = ? ORDER BY installment_index`, planID)
	if err != nil {
		return nil, fmt.Errorf("list plan transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func scanPlan(row rowScanner) (core.InstallmentPlan, error) {
	var (
		plan                    core.InstallmentPlan
		createdAt, purchaseDate string
		categoryID              sql.NullString
		mode                    string
	)
	err := row.Scan(
		&plan.ID, &createdAt, &purchaseDate, &plan.Description, &categoryID,
		&plan.CardID, &plan.TotalCents, &plan.Installments, &mode,
	)
	if err != nil {
		return core.InstallmentPlan{}, err
	}
	plan.CreatedAt = parseTimeOrZero(createdAt)
	plan.PurchaseDate = parseDateOrZero(sql.NullString{String: purchaseDate, Valid: true})
	plan.CategoryID = strOrEmpty(categoryID)
	plan.Mode = core.PlanMode(mode)
	return plan, nil
}
