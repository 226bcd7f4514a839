package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"contas/internal/core"
)

func TestSplitAmount(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		n     int
		want  []int64
	}{
		{name: "thirds with remainder on last", total: 1000, n: 3, want: []int64{333, 333, 334}},
		{name: "even split", total: 900, n: 3, want: []int64{300, 300, 300}},
		{name: "half cent rounds up", total: 101, n: 2, want: []int64{51, 50}},
		{name: "ten installments", total: 99999, n: 10, want: []int64{10000, 10000, 10000, 10000, 10000, 10000, 10000, 10000, 10000, 9999}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitAmount(tt.total, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("splitAmount(%d, %d) returned %d amounts, want %d", tt.total, tt.n, len(got), len(tt.want))
			}
			var sum int64
			for i, amount := range got {
				if amount != tt.want[i] {
					t.Errorf("amount[%d] = %d, want %d", i, amount, tt.want[i])
				}
				sum += amount
			}
			if sum != tt.total {
				t.Errorf("amounts sum to %d, want %d", sum, tt.total)
			}
		})
	}
}

// The sum of the installments must equal the total for any split.
func TestSplitAmount_Conservation(t *testing.T) {
	for _, total := range []int64{1, 2, 99, 100, 101, 999, 1000, 123457, 999999999} {
		for n := 2; n <= 24; n++ {
			amounts := splitAmount(total, n)
			var sum int64
			for _, a := range amounts {
				sum += a
			}
			if sum != total {
				t.Fatalf("splitAmount(%d, %d) sums to %d", total, n, sum)
			}
		}
	}
}

func newTestPlanner(store *memStore) *InstallmentPlanner {
	ledger := newTestLedger(store)
	return NewInstallmentPlanner(store, ledger, fixedClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}, &seqIDs{n: 100})
}

func TestCreatePlan_Materialize(t *testing.T) {
	store := newMemStore()
	store.cards["card-1"] = testCard()
	planner := newTestPlanner(store)

	plan, err := planner.CreatePlan(context.Background(), core.InstallmentPlan{
		PurchaseDate: core.NewDate(2025, 1, 10),
		Description:  "new fridge",
		CardID:       "card-1",
		TotalCents:   1000,
		Installments: 3,
		Mode:         core.ModeMaterialize,
	})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if plan.ID == "" {
		t.Fatal("plan id should be assigned")
	}

	txs := store.planTransactions(plan.ID)
	if len(txs) != 3 {
		t.Fatalf("got %d transactions, want 3", len(txs))
	}

	var sum int64
	for i, tx := range txs {
		sum += tx.AmountCents
		if tx.Projected {
			t.Errorf("installment %d should not be projected", i+1)
		}
		if tx.Method != core.MethodCard {
			t.Errorf("installment %d method = %s, want card", i+1, tx.Method)
		}
		if tx.Status != core.StatusPending {
			t.Errorf("installment %d status = %s, want pending", i+1, tx.Status)
		}
		if tx.InstallmentCount != 3 || tx.InstallmentIndex != i+1 {
			t.Errorf("installment %d linkage = %d/%d", i+1, tx.InstallmentIndex, tx.InstallmentCount)
		}
		wantDesc := fmt.Sprintf("new fridge (%d/3)", i+1)
		if tx.Description != wantDesc {
			t.Errorf("installment %d description = %q, want %q", i+1, tx.Description, wantDesc)
		}
		wantDate := core.NewDate(2025, 1+i, 10)
		if !tx.Date.Equal(wantDate.Time) {
			t.Errorf("installment %d date = %s, want %s", i+1, tx.Date, wantDate)
		}
	}
	if sum != 1000 {
		t.Errorf("installments sum to %d, want 1000", sum)
	}

	// Day 10 with closing day 8: every installment rolls to the next
	// statement, via the ledger's normal derivation.
	if txs[0].StatementMonth != "2025-02" {
		t.Errorf("first installment statementMonth = %s, want 2025-02", txs[0].StatementMonth)
	}
}

func TestCreatePlan_Project(t *testing.T) {
	store := newMemStore()
	store.cards["card-1"] = testCard()
	planner := newTestPlanner(store)

	plan, err := planner.CreatePlan(context.Background(), core.InstallmentPlan{
		PurchaseDate: core.NewDate(2025, 1, 5),
		Description:  "sofa",
		CardID:       "card-1",
		TotalCents:   90000,
		Installments: 3,
		Mode:         core.ModeProject,
	})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	txs := store.planTransactions(plan.ID)
	if len(txs) != 3 {
		t.Fatalf("got %d transactions, want 3", len(txs))
	}

	for i, tx := range txs {
		if !tx.Projected {
			t.Errorf("installment %d should be projected", i+1)
		}
		// Day 5 is on or before closing day 8: statement is the purchase month.
		wantStatement := core.NewMonthKey(2025, 1+i)
		if tx.StatementMonth != wantStatement {
			t.Errorf("installment %d statementMonth = %s, want %s", i+1, tx.StatementMonth, wantStatement)
		}
		if tx.RefMonth != wantStatement {
			t.Errorf("installment %d refMonth = %s, want statement month %s", i+1, tx.RefMonth, wantStatement)
		}
		wantDesc := fmt.Sprintf("sofa (proj. %d/3)", i+1)
		if tx.Description != wantDesc {
			t.Errorf("installment %d description = %q, want %q", i+1, tx.Description, wantDesc)
		}
	}
}

func TestCreatePlan_PurchaseDayClamped(t *testing.T) {
	store := newMemStore()
	store.cards["card-1"] = testCard()
	planner := newTestPlanner(store)

	plan, err := planner.CreatePlan(context.Background(), core.InstallmentPlan{
		PurchaseDate: core.NewDate(2025, 1, 31),
		Description:  "tv",
		CardID:       "card-1",
		TotalCents:   120000,
		Installments: 2,
		Mode:         core.ModeMaterialize,
	})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	txs := store.planTransactions(plan.ID)
	if txs[0].Date.String() != "2025-01-28" {
		t.Errorf("first installment date = %s, want 2025-01-28", txs[0].Date)
	}
	if txs[1].Date.String() != "2025-02-28" {
		t.Errorf("second installment date = %s, want 2025-02-28", txs[1].Date)
	}
}

func TestCreatePlan_Validation(t *testing.T) {
	store := newMemStore()
	planner := newTestPlanner(store)

	_, err := planner.CreatePlan(context.Background(), core.InstallmentPlan{
		PurchaseDate: core.NewDate(2025, 1, 10),
		Description:  "tv",
		CardID:       "card-1",
		TotalCents:   1000,
		Installments: 1,
		Mode:         core.ModeMaterialize,
	})
	if !errors.Is(err, core.ErrInvalidInstallments) {
		t.Errorf("single installment: err = %v, want %v", err, core.ErrInvalidInstallments)
	}
}

func TestDeletePlan_RemovesTransactions(t *testing.T) {
	store := newMemStore()
	store.cards["card-1"] = testCard()
	planner := newTestPlanner(store)
	ctx := context.Background()

	plan, err := planner.CreatePlan(ctx, core.InstallmentPlan{
		PurchaseDate: core.NewDate(2025, 1, 10),
		Description:  "tv",
		CardID:       "card-1",
		TotalCents:   1000,
		Installments: 2,
		Mode:         core.ModeMaterialize,
	})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if store.transactionCount() != 2 {
		t.Fatalf("precondition: %d transactions", store.transactionCount())
	}

	if err := planner.DeletePlan(ctx, plan.ID); err != nil {
		t.Fatalf("DeletePlan: %v", err)
	}
	if store.transactionCount() != 0 {
		t.Errorf("plan transactions should be gone, %d remain", store.transactionCount())
	}
}
