package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"contas/internal/core"
)

// memStore is an in-memory Store with the same uniqueness semantics as the
// SQLite repository, including the (fixedBillId, refMonth) constraint.
type memStore struct {
	mu    sync.Mutex
	txs   map[string]core.Transaction
	cards map[string]core.Card
	bills []core.FixedBill
	plans map[string]core.InstallmentPlan
}

func newMemStore() *memStore {
	return &memStore{
		txs:   make(map[string]core.Transaction),
		cards: make(map[string]core.Card),
		plans: make(map[string]core.InstallmentPlan),
	}
}

func (s *memStore) CreateTransaction(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(tx)
}

func (s *memStore) insertLocked(tx core.Transaction) error {
	if tx.FixedBillID != "" {
		for _, existing := range s.txs {
			if existing.FixedBillID == tx.FixedBillID && existing.RefMonth == tx.RefMonth {
				return core.ErrBillAlreadyMaterialized
			}
		}
	}
	s.txs[tx.ID] = tx
	return nil
}

func (s *memStore) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return tx, nil
}

func (s *memStore) UpdateTransaction(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[tx.ID]; !ok {
		return core.ErrNotFound
	}
	s.txs[tx.ID] = tx
	return nil
}

func (s *memStore) UpdateTransactionStatus(_ context.Context, id string, status core.TxStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[id]
	if !ok {
		return core.ErrNotFound
	}
	tx.Status = status
	s.txs[id] = tx
	return nil
}

func (s *memStore) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.txs, id)
	return nil
}

func (s *memStore) FindBillTransaction(_ context.Context, billID string, month core.MonthKey) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.txs {
		if tx.FixedBillID == billID && tx.RefMonth == month {
			return tx, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *memStore) GetCard(_ context.Context, id string) (core.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.cards[id]
	if !ok {
		return core.Card{}, core.ErrNotFound
	}
	return card, nil
}

func (s *memStore) ListActiveFixedBills(_ context.Context) ([]core.FixedBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var active []core.FixedBill
	for _, bill := range s.bills {
		if bill.Active {
			active = append(active, bill)
		}
	}
	return active, nil
}

func (s *memStore) CreatePlanWithTransactions(_ context.Context, plan core.InstallmentPlan, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.ID] = plan
	for _, tx := range txs {
		if err := s.insertLocked(tx); err != nil {
			return err
		}
	}
	return nil
}

func (s *memStore) DeletePlan(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plans, id)
	for txID, tx := range s.txs {
		if tx.InstallmentPlanID == id {
			delete(s.txs, txID)
		}
	}
	return nil
}

func (s *memStore) transactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txs)
}

func (s *memStore) planTransactions(planID string) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for i := 1; ; i++ {
		found := false
		for _, tx := range s.txs {
			if tx.InstallmentPlanID == planID && tx.InstallmentIndex == i {
				out = append(out, tx)
				found = true
				break
			}
		}
		if !found {
			return out
		}
	}
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type seqIDs struct {
	n int
}

func (g *seqIDs) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

func newTestLedger(store *memStore) *LedgerService {
	return NewLedgerService(store, nil, fixedClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}, &seqIDs{})
}
