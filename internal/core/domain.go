package core

import (
	"errors"
	"strings"
	"time"
)

// PaymentMethod is how a transaction was (or will be) paid.
type PaymentMethod string

const (
	MethodCard   PaymentMethod = "card"
	MethodPix    PaymentMethod = "pix"
	MethodCash   PaymentMethod = "cash"
	MethodBillet PaymentMethod = "billet"
	MethodWire   PaymentMethod = "wire"
)

// TxType classifies the direction of a transaction. Amounts are always
// positive; the type carries the sign.
type TxType string

const (
	TypeExpense  TxType = "expense"
	TypeIncome   TxType = "income"
	TypeTransfer TxType = "transfer"
)

// TxStatus is the settlement state of a transaction. The two states are
// freely toggled by the user; there are no other transitions.
type TxStatus string

const (
	StatusPending TxStatus = "pending"
	StatusPaid    TxStatus = "paid"
)

// PlanMode selects how an installment plan expands into transactions.
type PlanMode string

const (
	// ModeMaterialize creates one real ledger transaction per installment.
	ModeMaterialize PlanMode = "materialize"
	// ModeProject creates projected (virtual) transactions that show up in
	// statement and dashboard totals without polluting day-to-day entries.
	ModeProject PlanMode = "project"
)

var (
	ErrNotFound                = errors.New("record not found")
	ErrInvalidDate             = errors.New("invalid date")
	ErrInvalidMonthKey         = errors.New("invalid month key")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrEmptyDescription        = errors.New("empty description")
	ErrInvalidType             = errors.New("invalid transaction type")
	ErrInvalidMethod           = errors.New("invalid payment method")
	ErrInvalidStatus           = errors.New("invalid status")
	ErrInvalidDay              = errors.New("day must be between 1 and 31")
	ErrInvalidInstallments     = errors.New("installments must be at least 2")
	ErrInvalidPlanMode         = errors.New("invalid plan mode")
	ErrMissingCard             = errors.New("card id required")
	ErrBillAlreadyMaterialized = errors.New("bill already materialized for month")
)

// Card is a credit card configuration. Closing and due days may be stored as
// 1-31 but every cycle computation clamps them to 1-28.
type Card struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ClosingDay      int    `json:"closingDay"`
	DueDay          int    `json:"dueDay"`
	DueOffsetMonths int    `json:"dueOffsetMonths"`
	Active          bool   `json:"active"`
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("empty card name")
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return ErrInvalidDay
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return ErrInvalidDay
	}
	if c.DueOffsetMonths < 0 {
		return errors.New("due offset months must not be negative")
	}
	return nil
}

// Transaction is a single ledger record. RefMonth is the accounting month;
// StatementMonth is set only for card transactions. CategoryID, CardID,
// FixedBillID and InstallmentPlanID are weak references: the pointed-to
// record may be gone and nothing cascades.
type Transaction struct {
	ID          string        `json:"id"`
	CreatedAt   time.Time     `json:"createdAt"`
	Date        Date          `json:"date"`
	RefMonth    MonthKey      `json:"refMonth"`
	Description string        `json:"description"`
	CategoryID  string        `json:"categoryId,omitempty"`
	Type        TxType        `json:"type"`
	Method      PaymentMethod `json:"method"`
	Institution string        `json:"institution,omitempty"`
	AmountCents int64         `json:"amountCents"`
	Status      TxStatus      `json:"status"`
	Notes       string        `json:"notes,omitempty"`

	CardID         string   `json:"cardId,omitempty"`
	StatementMonth MonthKey `json:"statementMonth,omitempty"`
	DueDate        Date     `json:"dueDate,omitempty"`

	FixedBillID string `json:"fixedBillId,omitempty"`

	InstallmentPlanID string `json:"installmentPlanId,omitempty"`
	InstallmentIndex  int    `json:"installmentIndex,omitempty"`
	InstallmentCount  int    `json:"installmentCount,omitempty"`
	Projected         bool   `json:"projected,omitempty"`
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	switch t.Type {
	case TypeExpense, TypeIncome, TypeTransfer:
	default:
		return ErrInvalidType
	}
	switch t.Method {
	case MethodCard, MethodPix, MethodCash, MethodBillet, MethodWire:
	default:
		return ErrInvalidMethod
	}
	switch t.Status {
	case StatusPending, StatusPaid:
	default:
		return ErrInvalidStatus
	}
	return nil
}

// TransactionPatch is a partial update for a transaction. Nil fields are
// left untouched. A non-nil RefMonth is a manual override and suppresses
// re-derivation of the accounting month.
type TransactionPatch struct {
	Date        *Date
	RefMonth    *MonthKey
	Description *string
	CategoryID  *string
	Type        *TxType
	Method      *PaymentMethod
	Institution *string
	AmountCents *int64
	Status      *TxStatus
	Notes       *string
	CardID      *string
	DueDate     *Date
}

// InstallmentPlan is the plan-of-record for a purchase split into N
// scheduled amounts. Immutable once created, except for deletion.
type InstallmentPlan struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	PurchaseDate Date      `json:"purchaseDate"`
	Description  string    `json:"description"`
	CategoryID   string    `json:"categoryId,omitempty"`
	CardID       string    `json:"cardId"`
	TotalCents   int64     `json:"totalCents"`
	Installments int       `json:"installments"`
	Mode         PlanMode  `json:"mode"`
}

func (p InstallmentPlan) Validate() error {
	if err := p.PurchaseDate.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(p.Description) == "" {
		return ErrEmptyDescription
	}
	if p.CardID == "" {
		return ErrMissingCard
	}
	if p.TotalCents <= 0 {
		return ErrInvalidAmount
	}
	if p.Installments < 2 {
		return ErrInvalidInstallments
	}
	switch p.Mode {
	case ModeMaterialize, ModeProject:
	default:
		return ErrInvalidPlanMode
	}
	return nil
}

// FixedBill is a recurring-payment template. Each active month produces at
// most one transaction carrying this bill's id. Bills are deactivated, not
// deleted, to stop future materialization.
type FixedBill struct {
	ID          string        `json:"id"`
	CreatedAt   time.Time     `json:"createdAt"`
	Name        string        `json:"name"`
	CategoryID  string        `json:"categoryId,omitempty"`
	AmountCents int64         `json:"amountCents"`
	DueDay      int           `json:"dueDay"`
	Type        TxType        `json:"type"`
	Method      PaymentMethod `json:"method"`
	Institution string        `json:"institution,omitempty"`
	CardID      string        `json:"cardId,omitempty"`
	Active      bool          `json:"active"`
	Notes       string        `json:"notes,omitempty"`
}

func (b FixedBill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return errors.New("empty bill name")
	}
	if b.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	if b.DueDay < 1 || b.DueDay > 31 {
		return ErrInvalidDay
	}
	switch b.Type {
	case TypeExpense, TypeIncome:
	default:
		return ErrInvalidType
	}
	switch b.Method {
	case MethodCard, MethodPix, MethodCash, MethodBillet, MethodWire:
	default:
		return ErrInvalidMethod
	}
	if b.Method == MethodCard && b.CardID == "" {
		return ErrMissingCard
	}
	return nil
}

// Category is a user-managed transaction category.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"` // expense, income or both
	ColorHint string `json:"colorHint,omitempty"`
}

// AppSettings is the single application settings record. Consumed by the
// external import feature only.
type AppSettings struct {
	BaseYearForLegacySheets int    `json:"baseYearForLegacySheets"`
	Currency                string `json:"currency"`
}
