package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"contas/internal/core"
)

const billColumns = `id, created_at, name, category_id, amount_cents, due_day,
	type, method, institution, card_id, active, notes`

func (r *Repository) CreateFixedBill(ctx context.Context, bill core.FixedBill) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO fixed_bills (`+billColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID,
		bill.CreatedAt.Format(time.RFC3339Nano),
		bill.Name,
		nullStr(bill.CategoryID),
		bill.AmountCents,
		bill.DueDay,
		string(bill.Type),
		string(bill.Method),
		bill.Institution,
		nullStr(bill.CardID),
		bill.Active,
		bill.Notes)
	if err != nil {
		return fmt.Errorf("insert fixed bill: %w", err)
	}
	return nil
}

func (r *Repository) GetFixedBill(ctx context.Context, id string) (core.FixedBill, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM fixed_bills WHERE id = ?`, id)
	bill, err := scanFixedBill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.FixedBill{}, fmt.Errorf("fixed bill %s: %w", id, core.ErrNotFound)
		}
		return core.FixedBill{}, fmt.Errorf("get fixed bill: %w", err)
	}
	return bill, nil
}

func (r *Repository) ListFixedBills(ctx context.Context) ([]core.FixedBill, error) {
	return r.listBills(ctx, `SELECT `+billColumns+` FROM fixed_bills ORDER BY name`)
}

// ListActiveFixedBills returns the templates the materializer walks when
// ensuring a month.
func (r *Repository) ListActiveFixedBills(ctx context.Context) ([]core.FixedBill, error) {
	return r.listBills(ctx, `SELECT `+billColumns+` FROM fixed_bills WHERE active = 1 ORDER BY name`)
}

func (r *Repository) listBills(ctx context.Context, query string) ([]core.FixedBill, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list fixed bills: %w", err)
	}
	defer rows.Close()

	var bills []core.FixedBill
	for rows.Next() {
		bill, err := scanFixedBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fixed bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fixed bills: %w", err)
	}
	return bills, nil
}

func (r *Repository) UpdateFixedBill(ctx context.Context, bill core.FixedBill) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE fixed_bills SET
			name = ?, category_id = ?, amount_cents = ?, due_day = ?,
			type = ?, method = ?, institution = ?, card_id = ?, active = ?, notes = ?
		WHERE id = ?`,
		bill.Name,
		nullStr(bill.CategoryID),
		bill.AmountCents,
		bill.DueDay,
		string(bill.Type),
		string(bill.Method),
		bill.Institution,
		nullStr(bill.CardID),
		bill.Active,
		bill.Notes,
		bill.ID)
	if err != nil {
		return fmt.Errorf("update fixed bill: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update fixed bill rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("fixed bill %s: %w", bill.ID, core.ErrNotFound)
	}
	return nil
}

// DeleteFixedBill removes a template. Transactions it already produced keep
// their fixed_bill_id.
func (r *Repository) DeleteFixedBill(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM fixed_bills WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete fixed bill: %w", err)
	}
	return nil
}

func scanFixedBill(row rowScanner) (core.FixedBill, error) {
	var (
		bill               core.FixedBill
		createdAt          string
		categoryID, cardID sql.NullString
		billType, method   string
	)
	err := row.Scan(
		&bill.ID, &createdAt, &bill.Name, &categoryID, &bill.AmountCents, &bill.DueDay,
		&billType, &method, &bill.Institution, &cardID, &bill.Active, &bill.Notes,
	)
	if err != nil {
		return core.FixedBill{}, err
	}
	bill.CreatedAt = parseTimeOrZero(createdAt)
	bill.CategoryID = strOrEmpty(categoryID)
	bill.Type = core.TxType(billType)
	bill.Method = core.PaymentMethod(method)
	bill.CardID = strOrEmpty(cardID)
	return bill, nil
}
