// Package services implements the billing engine: the ledger write path,
// the installment planner and the recurring-bill materializer. All three
// are stateless, parameterized by the store and the injected clock and id
// generator; the calendar rules do the date arithmetic.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"contas/internal/calendar"
	"contas/internal/core"
)

// LedgerService creates and updates single transactions, deriving statement
// month, due date and accounting month from the payment method and card.
type LedgerService struct {
	store  Store
	events EventPublisher
	clock  Clock
	ids    IDGenerator
}

func NewLedgerService(store Store, events EventPublisher, clock Clock, ids IDGenerator) *LedgerService {
	if clock == nil {
		clock = SystemClock()
	}
	if ids == nil {
		ids = UUIDs()
	}
	return &LedgerService{
		store:  store,
		events: events,
		clock:  clock,
		ids:    ids,
	}
}

// deriveCycleFields computes statementMonth, dueDate and refMonth for a
// transaction. It is the single derivation point shared by the create and
// update paths so the two can never diverge.
//
// A nil card with method=card is the degrade-not-fail case: the record
// stays valid, it just carries no cycle metadata.
func deriveCycleFields(tx core.Transaction, card *core.Card, refMonthOverride bool) (statement core.MonthKey, due core.Date, ref core.MonthKey) {
	due = tx.DueDate
	ref = tx.RefMonth
	if !refMonthOverride || ref == "" {
		ref = tx.Date.MonthKey()
	}

	if tx.Method != core.MethodCard || card == nil {
		return "", due, ref
	}

	statement = calendar.StatementMonth(tx.Date, card.ClosingDay)
	due = calendar.DueDate(statement, card.DueDay, card.DueOffsetMonths)
	if !refMonthOverride {
		ref = statement
	}
	return statement, due, ref
}

// resolveCard looks up the card referenced by a card-method transaction.
// A missing card degrades to nil rather than failing.
func (s *LedgerService) resolveCard(ctx context.Context, tx core.Transaction) (*core.Card, error) {
	if tx.Method != core.MethodCard || tx.CardID == "" {
		return nil, nil
	}
	card, err := s.store.GetCard(ctx, tx.CardID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			slog.WarnContext(ctx, "card not found, creating transaction without cycle metadata",
				"card_id", tx.CardID)
			return nil, nil
		}
		return nil, fmt.Errorf("resolve card: %w", err)
	}
	return &card, nil
}

// prepare assigns identity and derives cycle fields for a draft, without
// persisting it. The planner uses it to build installment batches that are
// committed atomically.
func (s *LedgerService) prepare(ctx context.Context, draft core.Transaction) (core.Transaction, error) {
	draft.ID = s.ids.NewID()
	draft.CreatedAt = s.clock.Now()
	if draft.Status == "" {
		draft.Status = core.StatusPending
	}

	card, err := s.resolveCard(ctx, draft)
	if err != nil {
		return core.Transaction{}, err
	}

	refMonthOverride := draft.RefMonth != ""
	draft.StatementMonth, draft.DueDate, draft.RefMonth = deriveCycleFields(draft, card, refMonthOverride)

	if err := draft.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	return draft, nil
}

// AddTransaction persists a new transaction. A caller-supplied RefMonth is
// a manual override and wins over the derived accounting month.
func (s *LedgerService) AddTransaction(ctx context.Context, draft core.Transaction) (core.Transaction, error) {
	tx, err := s.prepare(ctx, draft)
	if err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "transaction added",
		"id", tx.ID,
		"ref_month", tx.RefMonth,
		"method", tx.Method,
		"amount_cents", tx.AmountCents)

	s.publish(ctx, "created", tx.ID, tx.RefMonth)
	return tx, nil
}

// UpdateTransaction merges the patch into the stored record and recomputes
// statementMonth, dueDate and refMonth from the merged state. Only an
// explicit RefMonth in the patch survives re-derivation; derived fields are
// never allowed to go stale.
func (s *LedgerService) UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	oldRefMonth := tx.RefMonth
	applyPatch(&tx, patch)

	card, err := s.resolveCard(ctx, tx)
	if err != nil {
		return core.Transaction{}, err
	}

	tx.StatementMonth, tx.DueDate, tx.RefMonth = deriveCycleFields(tx, card, patch.RefMonth != nil)

	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "transaction updated", "id", tx.ID, "ref_month", tx.RefMonth)

	s.publish(ctx, "updated", tx.ID, tx.RefMonth)
	if oldRefMonth != tx.RefMonth {
		// The record moved between months; both summaries are stale.
		s.publish(ctx, "updated", tx.ID, oldRefMonth)
	}
	return tx, nil
}

// SetStatus toggles a transaction between pending and paid.
func (s *LedgerService) SetStatus(ctx context.Context, id string, status core.TxStatus) error {
	switch status {
	case core.StatusPending, core.StatusPaid:
	default:
		return core.ErrInvalidStatus
	}

	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.UpdateTransactionStatus(ctx, id, status); err != nil {
		return err
	}

	s.publish(ctx, "updated", id, tx.RefMonth)
	return nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "transaction deleted", "id", id, "ref_month", tx.RefMonth)

	s.publish(ctx, "deleted", id, tx.RefMonth)
	return nil
}

// publish emits a ledger change event. Event delivery is best-effort: the
// write already committed, so failures are logged and swallowed.
func (s *LedgerService) publish(ctx context.Context, action, id string, refMonth core.MonthKey) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionEvent(ctx, action, id, refMonth); err != nil {
		slog.ErrorContext(ctx, "failed to publish transaction event",
			"action", action,
			"id", id,
			"error", err)
	}
}

func applyPatch(tx *core.Transaction, patch core.TransactionPatch) {
	if patch.Date != nil {
		tx.Date = *patch.Date
	}
	if patch.RefMonth != nil {
		tx.RefMonth = *patch.RefMonth
	}
	if patch.Description != nil {
		tx.Description = *patch.Description
	}
	if patch.CategoryID != nil {
		tx.CategoryID = *patch.CategoryID
	}
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	if patch.Method != nil {
		tx.Method = *patch.Method
	}
	if patch.Institution != nil {
		tx.Institution = *patch.Institution
	}
	if patch.AmountCents != nil {
		tx.AmountCents = *patch.AmountCents
	}
	if patch.Status != nil {
		tx.Status = *patch.Status
	}
	if patch.Notes != nil {
		tx.Notes = *patch.Notes
	}
	if patch.CardID != nil {
		tx.CardID = *patch.CardID
	}
	if patch.DueDate != nil {
		tx.DueDate = *patch.DueDate
	}
}
