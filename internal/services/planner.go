package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"contas/internal/calendar"
	"contas/internal/core"
)

// InstallmentPlanner expands one card purchase into N monthly installment
// transactions, either as real ledger entries or as projected rows.
type InstallmentPlanner struct {
	store  Store
	ledger *LedgerService
	clock  Clock
	ids    IDGenerator
}

func NewInstallmentPlanner(store Store, ledger *LedgerService, clock Clock, ids IDGenerator) *InstallmentPlanner {
	if clock == nil {
		clock = SystemClock()
	}
	if ids == nil {
		ids = UUIDs()
	}
	return &InstallmentPlanner{
		store:  store,
		ledger: ledger,
		clock:  clock,
		ids:    ids,
	}
}

// splitAmount divides totalCents across n installments. Every installment
// gets round(total/n) except the last, which absorbs the rounding remainder
// so the sum always equals totalCents exactly.
func splitAmount(totalCents int64, n int) []int64 {
	per := (2*totalCents + int64(n)) / (2 * int64(n))
	amounts := make([]int64, n)
	for i := 0; i < n-1; i++ {
		amounts[i] = per
	}
	amounts[n-1] = totalCents - per*int64(n-1)
	return amounts
}

// CreatePlan persists the plan-of-record and its N generated transactions
// in one atomic store write.
func (p *InstallmentPlanner) CreatePlan(ctx context.Context, plan core.InstallmentPlan) (core.InstallmentPlan, error) {
	plan.ID = p.ids.NewID()
	plan.CreatedAt = p.clock.Now()

	if err := plan.Validate(); err != nil {
		return core.InstallmentPlan{}, fmt.Errorf("validate installment plan: %w", err)
	}

	var (
		txs []core.Transaction
		err error
	)
	switch plan.Mode {
	case core.ModeMaterialize:
		txs, err = p.materializeInstallments(ctx, plan)
	case core.ModeProject:
		txs, err = p.projectInstallments(ctx, plan)
	}
	if err != nil {
		return core.InstallmentPlan{}, err
	}

	if err := p.store.CreatePlanWithTransactions(ctx, plan, txs); err != nil {
		return core.InstallmentPlan{}, err
	}

	for _, tx := range txs {
		p.ledger.publish(ctx, "created", tx.ID, tx.RefMonth)
	}
	return plan, nil
}

// materializeInstallments builds real first-class transactions through the
// ledger's derivation path.
func (p *InstallmentPlanner) materializeInstallments(ctx context.Context, plan core.InstallmentPlan) ([]core.Transaction, error) {
	amounts := splitAmount(plan.TotalCents, plan.Installments)
	txs := make([]core.Transaction, 0, plan.Installments)

	for i := 1; i <= plan.Installments; i++ {
		draft := core.Transaction{
			Date:              calendar.ShiftMonths(plan.PurchaseDate, i-1),
			Description:       fmt.Sprintf("%s (%d/%d)", plan.Description, i, plan.Installments),
			CategoryID:        plan.CategoryID,
			Type:              core.TypeExpense,
			Method:            core.MethodCard,
			AmountCents:       amounts[i-1],
			Status:            core.StatusPending,
			CardID:            plan.CardID,
			InstallmentPlanID: plan.ID,
			InstallmentIndex:  i,
			InstallmentCount:  plan.Installments,
		}
		tx, err := p.ledger.prepare(ctx, draft)
		if err != nil {
			return nil, fmt.Errorf("installment %d/%d: %w", i, plan.Installments, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// projectInstallments builds projected rows whose cycle fields come
// straight from the shifted date and the card's rules, bypassing the
// ledger's override logic. They feed statement and dashboard aggregations
// without becoming day-to-day entries.
func (p *InstallmentPlanner) projectInstallments(ctx context.Context, plan core.InstallmentPlan) ([]core.Transaction, error) {
	var card *core.Card
	c, err := p.store.GetCard(ctx, plan.CardID)
	switch {
	case err == nil:
		card = &c
	case errors.Is(err, core.ErrNotFound):
		slog.WarnContext(ctx, "card not found, projecting installments without cycle metadata",
			"card_id", plan.CardID)
	default:
		return nil, fmt.Errorf("resolve card: %w", err)
	}

	amounts := splitAmount(plan.TotalCents, plan.Installments)
	txs := make([]core.Transaction, 0, plan.Installments)

	for i := 1; i <= plan.Installments; i++ {
		date := calendar.ShiftMonths(plan.PurchaseDate, i-1)

		statement := date.MonthKey()
		var due core.Date
		if card != nil {
			statement = calendar.StatementMonth(date, card.ClosingDay)
			due = calendar.DueDate(statement, card.DueDay, card.DueOffsetMonths)
		}

		txs = append(txs, core.Transaction{
			ID:                p.ids.NewID(),
			CreatedAt:         p.clock.Now(),
			Date:              date,
			RefMonth:          statement,
			Description:       fmt.Sprintf("%s (proj. %d/%d)", plan.Description, i, plan.Installments),
			CategoryID:        plan.CategoryID,
			Type:              core.TypeExpense,
			Method:            core.MethodCard,
			AmountCents:       amounts[i-1],
			Status:            core.StatusPending,
			CardID:            plan.CardID,
			StatementMonth:    statement,
			DueDate:           due,
			InstallmentPlanID: plan.ID,
			InstallmentIndex:  i,
			InstallmentCount:  plan.Installments,
			Projected:         true,
		})
	}
	return txs, nil
}

// DeletePlan removes the plan and every transaction it generated.
func (p *InstallmentPlanner) DeletePlan(ctx context.Context, id string) error {
	if err := p.store.DeletePlan(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "installment plan deleted", "id", id)
	return nil
}
