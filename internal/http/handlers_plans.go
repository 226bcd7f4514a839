package http

import (
	"net/http"

	"contas/internal/core"
	"contas/internal/log"
)

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	draft, err := req.toPlan()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	plan, err := s.planner.CreatePlan(r.Context(), draft)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Create plan failed",
			log.FieldError, err, log.FieldOperation, log.OpCreate, log.FieldCardID, draft.CardID)
		writeDomainError(w, err)
		return
	}

	// Installments land across several months; the short cache TTL covers
	// the ones not invalidated here.
	s.invalidateOverview(plan.PurchaseDate.MonthKey())
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.store.ListPlans(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	plan, err := s.store.GetPlan(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	txs, err := s.store.ListPlanTransactions(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Plan         core.InstallmentPlan `json:"plan"`
		Transactions []core.Transaction   `json:"transactions"`
	}{Plan: plan, Transactions: txs})
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.planner.DeletePlan(r.Context(), id); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Delete plan failed",
			log.FieldError, err, log.FieldOperation, log.OpDelete, log.FieldPlanID, id)
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
