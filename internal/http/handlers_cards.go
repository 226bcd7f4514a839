package http

import (
	"net/http"

	"github.com/google/uuid"

	"contas/internal/core"
)

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	card := req.toCard(uuid.NewString())
	if err := card.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.store.CreateCard(r.Context(), card); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.store.ListCards(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.store.GetCard(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	card := req.toCard(r.PathValue("id"))
	if err := card.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.store.UpdateCard(r.Context(), card); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	// Transactions keep their cardId; it simply dangles from here on.
	if err := s.store.DeleteCard(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCardStatement lists the card's transactions for one statement
// month, projected installments included, with the statement total.
func (s *Server) handleCardStatement(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cardID := r.PathValue("id")
	card, err := s.store.GetCard(r.Context(), cardID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	txs, err := s.store.ListCardStatement(r.Context(), cardID, month)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var totalCents int64
	for _, tx := range txs {
		switch tx.Type {
		case core.TypeIncome:
			totalCents -= tx.AmountCents
		default:
			totalCents += tx.AmountCents
		}
	}

	writeJSON(w, http.StatusOK, struct {
		Card           core.Card          `json:"card"`
		StatementMonth core.MonthKey      `json:"statementMonth"`
		TotalCents     int64              `json:"totalCents"`
		Transactions   []core.Transaction `json:"transactions"`
	}{Card: card, StatementMonth: month, TotalCents: totalCents, Transactions: txs})
}
