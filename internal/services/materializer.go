package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"contas/internal/calendar"
	"contas/internal/core"
)

// RecurrenceMaterializer guarantees that every active fixed bill has
// exactly one transaction in a given accounting month. Safe to call
// repeatedly and concurrently: the store's (fixed_bill_id, ref_month)
// uniqueness constraint closes the check-then-create race.
type RecurrenceMaterializer struct {
	store  Store
	ledger *LedgerService
}

func NewRecurrenceMaterializer(store Store, ledger *LedgerService) *RecurrenceMaterializer {
	return &RecurrenceMaterializer{
		store:  store,
		ledger: ledger,
	}
}

// EnsureMonth materializes missing bill transactions for the month and
// returns how many were created. Bills whose card cannot be resolved are
// skipped for the month; bills already materialized are left alone.
func (m *RecurrenceMaterializer) EnsureMonth(ctx context.Context, month core.MonthKey) (int, error) {
	if err := month.Validate(); err != nil {
		return 0, err
	}

	bills, err := m.store.ListActiveFixedBills(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active fixed bills: %w", err)
	}

	created := 0
	for _, bill := range bills {
		ok, err := m.ensureBill(ctx, bill, month)
		if err != nil {
			return created, fmt.Errorf("bill %s: %w", bill.ID, err)
		}
		if ok {
			created++
		}
	}

	slog.InfoContext(ctx, "month materialized",
		"month", month,
		"bills_checked", len(bills),
		"transactions_created", created)
	return created, nil
}

func (m *RecurrenceMaterializer) ensureBill(ctx context.Context, bill core.FixedBill, month core.MonthKey) (bool, error) {
	_, err := m.store.FindBillTransaction(ctx, bill.ID, month)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return false, err
	}

	if bill.Method == core.MethodCard {
		return m.ensureCardBill(ctx, bill, month)
	}
	return m.ensureDirectBill(ctx, bill, month)
}

// ensureCardBill synthesizes a card purchase dated so that its statement
// month equals the target month. The bill's due day doubles as the charge
// day of the recurring purchase. The ledger re-derives refMonth from the
// card's closing day; the inverse-rule round trip lands it on month.
func (m *RecurrenceMaterializer) ensureCardBill(ctx context.Context, bill core.FixedBill, month core.MonthKey) (bool, error) {
	card, err := m.store.GetCard(ctx, bill.CardID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			slog.WarnContext(ctx, "skipping card bill, card not found",
				"bill_id", bill.ID,
				"card_id", bill.CardID,
				"month", month)
			return false, nil
		}
		return false, fmt.Errorf("resolve bill card: %w", err)
	}

	purchaseDate := calendar.ChargeDateForStatementMonth(month, bill.DueDay, card.ClosingDay)

	_, err = m.ledger.AddTransaction(ctx, core.Transaction{
		Date:        purchaseDate,
		Description: bill.Name,
		CategoryID:  bill.CategoryID,
		Type:        bill.Type,
		Method:      bill.Method,
		AmountCents: bill.AmountCents,
		Status:      core.StatusPending,
		CardID:      bill.CardID,
		FixedBillID: bill.ID,
		Notes:       bill.Notes,
	})
	if err != nil {
		if errors.Is(err, core.ErrBillAlreadyMaterialized) {
			// Lost the race to a concurrent ensure; the invariant holds.
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ensureDirectBill creates the non-card transaction: due inside the
// accounting month itself, refMonth pinned explicitly.
func (m *RecurrenceMaterializer) ensureDirectBill(ctx context.Context, bill core.FixedBill, month core.MonthKey) (bool, error) {
	dueDate := calendar.DueDateForBill(month, bill.DueDay)

	_, err := m.ledger.AddTransaction(ctx, core.Transaction{
		Date:        dueDate,
		RefMonth:    month,
		Description: bill.Name,
		CategoryID:  bill.CategoryID,
		Type:        bill.Type,
		Method:      bill.Method,
		Institution: bill.Institution,
		AmountCents: bill.AmountCents,
		Status:      core.StatusPending,
		DueDate:     dueDate,
		FixedBillID: bill.ID,
		Notes:       bill.Notes,
	})
	if err != nil {
		if errors.Is(err, core.ErrBillAlreadyMaterialized) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
