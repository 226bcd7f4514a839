package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"contas/internal/core"
)

// Clock supplies wall-clock time. Injected so the engine stays
// deterministic under test.
type Clock interface {
	Now() time.Time
}

// IDGenerator supplies opaque record ids.
type IDGenerator interface {
	NewID() string
}

// EventPublisher receives ledger change notifications after a write
// commits. A nil publisher disables events.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, action, id string, refMonth core.MonthKey) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }

type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

// UUIDs returns a random UUID id generator.
func UUIDs() IDGenerator { return uuidGenerator{} }

// Store is the persisted-table store surface the engine writes through.
// *storage.Repository implements it; tests substitute an in-memory fake.
type Store interface {
	CreateTransaction(ctx context.Context, tx core.Transaction) error
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, tx core.Transaction) error
	UpdateTransactionStatus(ctx context.Context, id string, status core.TxStatus) error
	DeleteTransaction(ctx context.Context, id string) error
	FindBillTransaction(ctx context.Context, billID string, month core.MonthKey) (core.Transaction, error)

	GetCard(ctx context.Context, id string) (core.Card, error)
	ListActiveFixedBills(ctx context.Context) ([]core.FixedBill, error)

	CreatePlanWithTransactions(ctx context.Context, plan core.InstallmentPlan, txs []core.Transaction) error
	DeletePlan(ctx context.Context, id string) error
}
