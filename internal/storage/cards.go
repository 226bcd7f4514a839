package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"contas/internal/core"
)

func (r *Repository) CreateCard(ctx context.Context, card core.Card) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cards (id, name, closing_day, due_day, due_offset_months, active)
		VALUES (?, ?, ?, ?, ?, ?)`,
		card.ID, card.Name, card.ClosingDay, card.DueDay, card.DueOffsetMonths, card.Active)
	if err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

func (r *Repository) GetCard(ctx context.Context, id string) (core.Card, error) {
	var card core.Card
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, closing_day, due_day, due_offset_months, active
		FROM cards WHERE id = ?`, id).
		Scan(&card.ID, &card.Name, &card.ClosingDay, &card.DueDay, &card.DueOffsetMonths, &card.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Card{}, fmt.Errorf("card %s: %w", id, core.ErrNotFound)
		}
		return core.Card{}, fmt.Errorf("get card: %w", err)
	}
	return card, nil
}

func (r *Repository) ListCards(ctx context.Context) ([]core.Card, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, closing_day, due_day, due_offset_months, active
		FROM cards ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []core.Card
	for rows.Next() {
		var card core.Card
		if err := rows.Scan(&card.ID, &card.Name, &card.ClosingDay, &card.DueDay, &card.DueOffsetMonths, &card.Active); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return cards, nil
}

func (r *Repository) UpdateCard(ctx context.Context, card core.Card) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cards SET name = ?, closing_day = ?, due_day = ?, due_offset_months = ?, active = ?
		WHERE id = ?`,
		card.Name, card.ClosingDay, card.DueDay, card.DueOffsetMonths, card.Active, card.ID)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update card rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("card %s: %w", card.ID, core.ErrNotFound)
	}
	return nil
}

// DeleteCard removes a card. Transactions and bills referencing it keep
// their card_id; dereferences degrade gracefully.
func (r *Repository) DeleteCard(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return nil
}
