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

const transactionColumns = `id, created_at, date, ref_month, description, category_id,
	type, method, institution, amount_cents, status, notes,
	card_id, statement_month, due_date, fixed_bill_id,
	installment_plan_id, installment_index, installment_count, projected`

const insertTransactionSQL = `
	INSERT INTO transactions (` + transactionColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (fixed_bill_id, ref_month) WHERE fixed_bill_id IS NOT NULL
	DO NOTHING`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTransaction(ctx context.Context, e execer, tx core.Transaction) error {
	res, err := e.ExecContext(ctx, insertTransactionSQL,
		tx.ID,
		tx.CreatedAt.Format(time.RFC3339Nano),
		tx.Date.String(),
		string(tx.RefMonth),
		tx.Description,
		nullStr(tx.CategoryID),
		string(tx.Type),
		string(tx.Method),
		tx.Institution,
		tx.AmountCents,
		string(tx.Status),
		tx.Notes,
		nullStr(tx.CardID),
		nullStr(string(tx.StatementMonth)),
		dateStr(tx.DueDate),
		nullStr(tx.FixedBillID),
		nullStr(tx.InstallmentPlanID),
		nullInt(tx.InstallmentIndex),
		nullInt(tx.InstallmentCount),
		tx.Projected,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert transaction rows affected: %w", err)
	}
	if affected == 0 {
		// Swallowed by the (fixed_bill_id, ref_month) conflict clause.
		return fmt.Errorf("bill %s month %s: %w", tx.FixedBillID, tx.RefMonth, core.ErrBillAlreadyMaterialized)
	}
	return nil
}

// CreateTransaction persists a fully-derived transaction. For records
// linked to a fixed bill, a second insert for the same (bill, refMonth)
// pair returns core.ErrBillAlreadyMaterialized instead of a duplicate row.
func (r *Repository) CreateTransaction(ctx context.Context, tx core.Transaction) error {
	if err := insertTransaction(ctx, r.db, tx); err != nil {
		return err
	}

	slog.DebugContext(ctx, "transaction created",
		"id", tx.ID,
		"ref_month", tx.RefMonth,
		"amount_cents", tx.AmountCents)
	return nil
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
		}
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// UpdateTransaction rewrites every mutable column from the given record.
// Derived fields are recomputed by the caller before this point; the store
// never decides cycle metadata.
func (r *Repository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET
			date = ?, ref_month = ?, description = ?, category_id = ?,
			type = ?, method = ?, institution = ?, amount_cents = ?,
			status = ?, notes = ?, card_id = ?, statement_month = ?, due_date = ?
		WHERE id = ?`,
		tx.Date.String(),
		string(tx.RefMonth),
		tx.Description,
		nullStr(tx.CategoryID),
		string(tx.Type),
		string(tx.Method),
		tx.Institution,
		tx.AmountCents,
		string(tx.Status),
		tx.Notes,
		nullStr(tx.CardID),
		nullStr(string(tx.StatementMonth)),
		dateStr(tx.DueDate),
		tx.ID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", tx.ID, core.ErrNotFound)
	}
	return nil
}

func (r *Repository) UpdateTransactionStatus(ctx context.Context, id string, status core.TxStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// ListTransactionsByRefMonth returns all records attributed to the given
// accounting month, ordered by date then creation time. This is the lookup
// monthly reporting and ensure-month dedup rely on.
func (r *Repository) ListTransactionsByRefMonth(ctx context.Context, month core.MonthKey) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE ref_month = ? ORDER BY date, created_at`, string(month))
	if err != nil {
		return nil, fmt.Errorf("list transactions by ref month: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// FindBillTransaction returns the transaction materialized for a fixed bill
// in a month, or core.ErrNotFound.
func (r *Repository) FindBillTransaction(ctx context.Context, billID string, month core.MonthKey) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE fixed_bill_id = ? AND ref_month = ?`, billID, string(month))
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, core.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("find bill transaction: %w", err)
	}
	return tx, nil
}

// ListCardStatement returns all transactions on a card's statement for the
// given invoice month, projected installments included.
func (r *Repository) ListCardStatement(ctx context.Context, cardID string, statementMonth core.MonthKey) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE card_id = ? AND statement_month = ?
		 ORDER BY date, created_at`, cardID, string(statementMonth))
	if err != nil {
		return nil, fmt.Errorf("list card statement: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListDueBetween returns transactions whose due date falls inside the
// closed range [from, to], ordered by due date.
func (r *Repository) ListDueBetween(ctx context.Context, from, to core.Date) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE due_date IS NOT NULL AND due_date >= ? AND due_date <= ?
		 ORDER BY due_date, created_at`, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("list due between: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx                                                  core.Transaction
		createdAt                                           string
		date                                                string
		refMonth                                            string
		categoryID, cardID, statementMonth, dueDate         sql.NullString
		fixedBillID, planID                                 sql.NullString
		installmentIndex, installmentCount                  sql.NullInt64
		txType, method, status                              string
	)
	err := row.Scan(
		&tx.ID, &createdAt, &date, &refMonth, &tx.Description, &categoryID,
		&txType, &method, &tx.Institution, &tx.AmountCents, &status, &tx.Notes,
		&cardID, &statementMonth, &dueDate, &fixedBillID,
		&planID, &installmentIndex, &installmentCount, &tx.Projected,
	)
	if err != nil {
		return core.Transaction{}, err
	}

	tx.CreatedAt = parseTimeOrZero(createdAt)
	tx.Date = parseDateOrZero(sql.NullString{String: date, Valid: true})
	tx.RefMonth = core.MonthKey(refMonth)
	tx.CategoryID = strOrEmpty(categoryID)
	tx.Type = core.TxType(txType)
	tx.Method = core.PaymentMethod(method)
	tx.Status = core.TxStatus(status)
	tx.CardID = strOrEmpty(cardID)
	tx.StatementMonth = core.MonthKey(strOrEmpty(statementMonth))
	tx.DueDate = parseDateOrZero(dueDate)
	tx.FixedBillID = strOrEmpty(fixedBillID)
	tx.InstallmentPlanID = strOrEmpty(planID)
	tx.InstallmentIndex = intOrZero(installmentIndex)
	tx.InstallmentCount = intOrZero(installmentCount)
	return tx, nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}
