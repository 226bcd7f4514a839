package http

import (
	"github.com/go-playground/validator/v10"

	"contas/internal/core"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// transactionRequest is the create payload. Amount is a decimal string;
// parsing to cents happens here at the boundary.
type transactionRequest struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"required,max=200"`
	Amount      string `json:"amount" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=expense income transfer"`
	Method      string `json:"method" validate:"required,oneof=card pix cash billet wire"`
	Status      string `json:"status" validate:"omitempty,oneof=pending paid"`
	RefMonth    string `json:"refMonth" validate:"omitempty,len=7"`
	CategoryID  string `json:"categoryId" validate:"omitempty,uuid4"`
	Institution string `json:"institution" validate:"omitempty,max=100"`
	Notes       string `json:"notes" validate:"omitempty,max=500"`
	CardID      string `json:"cardId" validate:"omitempty,uuid4"`
	DueDate     string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
}

func (req transactionRequest) toDraft() (core.Transaction, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	cents, err := core.ParseAmountCents(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}

	draft := core.Transaction{
		Date:        date,
		RefMonth:    core.MonthKey(req.RefMonth),
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Type:        core.TxType(req.Type),
		Method:      core.PaymentMethod(req.Method),
		Institution: req.Institution,
		AmountCents: cents,
		Status:      core.TxStatus(req.Status),
		Notes:       req.Notes,
		CardID:      req.CardID,
	}
	if req.RefMonth != "" {
		if draft.RefMonth, err = core.ParseMonthKey(req.RefMonth); err != nil {
			return core.Transaction{}, err
		}
	}
	if req.DueDate != "" {
		if draft.DueDate, err = core.ParseDate(req.DueDate); err != nil {
			return core.Transaction{}, err
		}
	}
	return draft, nil
}

// transactionPatchRequest is the partial update payload. Absent fields stay
// untouched.
type transactionPatchRequest struct {
	Date        *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description *string `json:"description" validate:"omitempty,max=200"`
	Amount      *string `json:"amount"`
	Type        *string `json:"type" validate:"omitempty,oneof=expense income transfer"`
	Method      *string `json:"method" validate:"omitempty,oneof=card pix cash billet wire"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending paid"`
	RefMonth    *string `json:"refMonth" validate:"omitempty,len=7"`
	CategoryID  *string `json:"categoryId"`
	Institution *string `json:"institution" validate:"omitempty,max=100"`
	Notes       *string `json:"notes" validate:"omitempty,max=500"`
	CardID      *string `json:"cardId"`
	DueDate     *string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
}

func (req transactionPatchRequest) toPatch() (core.TransactionPatch, error) {
	var patch core.TransactionPatch

	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			return patch, err
		}
		patch.Date = &date
	}
	if req.RefMonth != nil {
		month, err := core.ParseMonthKey(*req.RefMonth)
		if err != nil {
			return patch, err
		}
		patch.RefMonth = &month
	}
	if req.Amount != nil {
		cents, err := core.ParseAmountCents(*req.Amount)
		if err != nil {
			return patch, err
		}
		patch.AmountCents = &cents
	}
	if req.DueDate != nil {
		due, err := core.ParseDate(*req.DueDate)
		if err != nil {
			return patch, err
		}
		patch.DueDate = &due
	}

	patch.Description = req.Description
	patch.CategoryID = req.CategoryID
	patch.Institution = req.Institution
	patch.Notes = req.Notes
	patch.CardID = req.CardID
	if req.Type != nil {
		t := core.TxType(*req.Type)
		patch.Type = &t
	}
	if req.Method != nil {
		m := core.PaymentMethod(*req.Method)
		patch.Method = &m
	}
	if req.Status != nil {
		st := core.TxStatus(*req.Status)
		patch.Status = &st
	}
	return patch, nil
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid"`
}

type cardRequest struct {
	Name            string `json:"name" validate:"required,max=100"`
	ClosingDay      int    `json:"closingDay" validate:"required,min=1,max=31"`
	DueDay          int    `json:"dueDay" validate:"required,min=1,max=31"`
	DueOffsetMonths int    `json:"dueOffsetMonths" validate:"min=0,max=3"`
	Active          bool   `json:"active"`
}

func (req cardRequest) toCard(id string) core.Card {
	return core.Card{
		ID:              id,
		Name:            req.Name,
		ClosingDay:      req.ClosingDay,
		DueDay:          req.DueDay,
		DueOffsetMonths: req.DueOffsetMonths,
		Active:          req.Active,
	}
}

type billRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	CategoryID  string `json:"categoryId" validate:"omitempty,uuid4"`
	Amount      string `json:"amount" validate:"required"`
	DueDay      int    `json:"dueDay" validate:"required,min=1,max=31"`
	Type        string `json:"type" validate:"required,oneof=expense income"`
	Method      string `json:"method" validate:"required,oneof=card pix cash billet wire"`
	Institution string `json:"institution" validate:"omitempty,max=100"`
	CardID      string `json:"cardId" validate:"omitempty,uuid4"`
	Active      bool   `json:"active"`
	Notes       string `json:"notes" validate:"omitempty,max=500"`
}

func (req billRequest) toBill(id string) (core.FixedBill, error) {
	cents, err := core.ParseAmountCents(req.Amount)
	if err != nil {
		return core.FixedBill{}, err
	}
	return core.FixedBill{
		ID:          id,
		Name:        req.Name,
		CategoryID:  req.CategoryID,
		AmountCents: cents,
		DueDay:      req.DueDay,
		Type:        core.TxType(req.Type),
		Method:      core.PaymentMethod(req.Method),
		Institution: req.Institution,
		CardID:      req.CardID,
		Active:      req.Active,
		Notes:       req.Notes,
	}, nil
}

type planRequest struct {
	PurchaseDate string `json:"purchaseDate" validate:"required,datetime=2006-01-02"`
	Description  string `json:"description" validate:"required,max=200"`
	CategoryID   string `json:"categoryId" validate:"omitempty,uuid4"`
	CardID       string `json:"cardId" validate:"required,uuid4"`
	TotalAmount  string `json:"totalAmount" validate:"required"`
	Installments int    `json:"installments" validate:"required,min=2,max=120"`
	Mode         string `json:"mode" validate:"required,oneof=materialize project"`
}

func (req planRequest) toPlan() (core.InstallmentPlan, error) {
	date, err := core.ParseDate(req.PurchaseDate)
	if err != nil {
		return core.InstallmentPlan{}, err
	}
	cents, err := core.ParseAmountCents(req.TotalAmount)
	if err != nil {
		return core.InstallmentPlan{}, err
	}
	return core.InstallmentPlan{
		PurchaseDate: date,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		CardID:       req.CardID,
		TotalCents:   cents,
		Installments: req.Installments,
		Mode:         core.PlanMode(req.Mode),
	}, nil
}

type categoryRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Kind      string `json:"kind" validate:"required,oneof=expense income both"`
	ColorHint string `json:"colorHint" validate:"omitempty,hexcolor"`
}

func (req categoryRequest) toCategory(id string) core.Category {
	return core.Category{
		ID:        id,
		Name:      req.Name,
		Kind:      req.Kind,
		ColorHint: req.ColorHint,
	}
}

type settingsRequest struct {
	BaseYearForLegacySheets int    `json:"baseYearForLegacySheets" validate:"required,min=1970,max=2100"`
	Currency                string `json:"currency" validate:"required,len=3,uppercase"`
}
