package services

import (
	"context"
	"errors"
	"testing"

	"contas/internal/core"
)

func testCard() core.Card {
	return core.Card{
		ID:              "card-1",
		Name:            "Santander",
		ClosingDay:      8,
		DueDay:          15,
		DueOffsetMonths: 1,
		Active:          true,
	}
}

func TestAddTransaction_CardDerivation(t *testing.T) {
	tests := []struct {
		name          string
		date          core.Date
		refMonth      core.MonthKey
		wantStatement core.MonthKey
		wantDue       string
		wantRefMonth  core.MonthKey
	}{
		{
			name:          "purchase on closing day stays in current statement",
			date:          core.NewDate(2025, 3, 8),
			wantStatement: "2025-03",
			wantDue:       "2025-04-15",
			wantRefMonth:  "2025-03",
		},
		{
			name:          "purchase after closing day rolls forward",
			date:          core.NewDate(2025, 3, 9),
			wantStatement: "2025-04",
			wantDue:       "2025-05-15",
			wantRefMonth:  "2025-04",
		},
		{
			name:          "manual refMonth override wins",
			date:          core.NewDate(2025, 3, 9),
			refMonth:      "2025-03",
			wantStatement: "2025-04",
			wantDue:       "2025-05-15",
			wantRefMonth:  "2025-03",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.cards["card-1"] = testCard()
			ledger := newTestLedger(store)

			tx, err := ledger.AddTransaction(context.Background(), core.Transaction{
				Date:        tt.date,
				RefMonth:    tt.refMonth,
				Description: "card purchase",
				Type:        core.TypeExpense,
				Method:      core.MethodCard,
				AmountCents: 5000,
				CardID:      "card-1",
			})
			if err != nil {
				t.Fatalf("AddTransaction: %v", err)
			}

			if tx.StatementMonth != tt.wantStatement {
				t.Errorf("statementMonth = %s, want %s", tx.StatementMonth, tt.wantStatement)
			}
			if tx.DueDate.String() != tt.wantDue {
				t.Errorf("dueDate = %s, want %s", tx.DueDate, tt.wantDue)
			}
			if tx.RefMonth != tt.wantRefMonth {
				t.Errorf("refMonth = %s, want %s", tx.RefMonth, tt.wantRefMonth)
			}
			if tx.ID == "" || tx.CreatedAt.IsZero() {
				t.Error("id and createdAt should be assigned")
			}
		})
	}
}

func TestAddTransaction_NonCard(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)

	tx, err := ledger.AddTransaction(context.Background(), core.Transaction{
		Date:        core.NewDate(2025, 3, 20),
		Description: "groceries",
		Type:        core.TypeExpense,
		Method:      core.MethodPix,
		AmountCents: 4500,
	})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	if tx.StatementMonth != "" {
		t.Errorf("non-card transaction should have no statementMonth, got %s", tx.StatementMonth)
	}
	if tx.RefMonth != "2025-03" {
		t.Errorf("refMonth = %s, want 2025-03", tx.RefMonth)
	}
	if tx.Status != core.StatusPending {
		t.Errorf("default status = %s, want pending", tx.Status)
	}
}

func TestAddTransaction_MissingCardDegrades(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)

	tx, err := ledger.AddTransaction(context.Background(), core.Transaction{
		Date:        core.NewDate(2025, 3, 9),
		Description: "orphan card purchase",
		Type:        core.TypeExpense,
		Method:      core.MethodCard,
		AmountCents: 9900,
		CardID:      "gone",
	})
	if err != nil {
		t.Fatalf("AddTransaction should degrade, not fail: %v", err)
	}

	if tx.StatementMonth != "" {
		t.Errorf("statementMonth should be empty without a card, got %s", tx.StatementMonth)
	}
	if tx.RefMonth != "2025-03" {
		t.Errorf("refMonth = %s, want month of date", tx.RefMonth)
	}
}

func TestUpdateTransaction_RecomputesAcrossClosingBoundary(t *testing.T) {
	store := newMemStore()
	store.cards["card-1"] = testCard()
	ledger := newTestLedger(store)
	ctx := context.Background()

	tx, err := ledger.AddTransaction(ctx, core.Transaction{
		Date:        core.NewDate(2025, 3, 8),
		Description: "card purchase",
		Type:        core.TypeExpense,
		Method:      core.MethodCard,
		AmountCents: 5000,
		CardID:      "card-1",
	})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if tx.StatementMonth != "2025-03" {
		t.Fatalf("precondition: statementMonth = %s, want 2025-03", tx.StatementMonth)
	}

	newDate := core.NewDate(2025, 3, 9)
	updated, err := ledger.UpdateTransaction(ctx, tx.ID, core.TransactionPatch{Date: &newDate})
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}

	if updated.StatementMonth != "2025-04" {
		t.Errorf("statementMonth = %s, want 2025-04", updated.StatementMonth)
	}
	if updated.DueDate.String() != "2025-05-15" {
		t.Errorf("dueDate = %s, want 2025-05-15", updated.DueDate)
	}
	if updated.RefMonth != "2025-04" {
		t.Errorf("refMonth = %s, want 2025-04", updated.RefMonth)
	}
}

func TestUpdateTransaction_ExplicitRefMonthPreserved(t *testing.T) {
	store := newMemStore()
	store.cards["card-1"] = testCard()
	ledger := newTestLedger(store)
	ctx := context.Background()

	tx, err := ledger.AddTransaction(ctx, core.Transaction{
		Date:        core.NewDate(2025, 3, 9),
		Description: "card purchase",
		Type:        core.TypeExpense,
		Method:      core.MethodCard,
		AmountCents: 5000,
		CardID:      "card-1",
	})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	manual := core.MonthKey("2025-06")
	updated, err := ledger.UpdateTransaction(ctx, tx.ID, core.TransactionPatch{RefMonth: &manual})
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}

	if updated.RefMonth != "2025-06" {
		t.Errorf("refMonth = %s, want manual override 2025-06", updated.RefMonth)
	}
	if updated.StatementMonth != "2025-04" {
		t.Errorf("statementMonth should still be derived, got %s", updated.StatementMonth)
	}
}

func TestUpdateTransaction_MethodChangeClearsStatement(t *testing.T) {
	store := newMemStore()
	store.cards["card-1"] = testCard()
	ledger := newTestLedger(store)
	ctx := context.Background()

	tx, err := ledger.AddTransaction(ctx, core.Transaction{
		Date:        core.NewDate(2025, 3, 9),
		Description: "card purchase",
		Type:        core.TypeExpense,
		Method:      core.MethodCard,
		AmountCents: 5000,
		CardID:      "card-1",
	})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	pix := core.MethodPix
	updated, err := ledger.UpdateTransaction(ctx, tx.ID, core.TransactionPatch{Method: &pix})
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}

	if updated.StatementMonth != "" {
		t.Errorf("statementMonth should be cleared, got %s", updated.StatementMonth)
	}
	if updated.RefMonth != "2025-03" {
		t.Errorf("refMonth = %s, want month of date", updated.RefMonth)
	}
}

func TestSetStatus(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)
	ctx := context.Background()

	tx, err := ledger.AddTransaction(ctx, core.Transaction{
		Date:        core.NewDate(2025, 3, 20),
		Description: "groceries",
		Type:        core.TypeExpense,
		Method:      core.MethodCash,
		AmountCents: 4500,
	})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	if err := ledger.SetStatus(ctx, tx.ID, core.StatusPaid); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	got, _ := store.GetTransaction(ctx, tx.ID)
	if got.Status != core.StatusPaid {
		t.Errorf("status = %s, want paid", got.Status)
	}

	if err := ledger.SetStatus(ctx, tx.ID, core.StatusPending); err != nil {
		t.Fatalf("SetStatus back: %v", err)
	}
	got, _ = store.GetTransaction(ctx, tx.ID)
	if got.Status != core.StatusPending {
		t.Errorf("status = %s, want pending", got.Status)
	}

	if err := ledger.SetStatus(ctx, tx.ID, "overdue"); !errors.Is(err, core.ErrInvalidStatus) {
		t.Errorf("invalid status: err = %v, want %v", err, core.ErrInvalidStatus)
	}
}

func TestDeleteTransaction_MissingIsNoop(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)

	if err := ledger.DeleteTransaction(context.Background(), "absent"); err != nil {
		t.Errorf("deleting a missing transaction should be a no-op, got %v", err)
	}
}
