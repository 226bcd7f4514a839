package http

import (
	"net/http"

	"contas/internal/core"
	"contas/internal/log"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	draft, err := req.toDraft()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	tx, err := s.ledger.AddTransaction(r.Context(), draft)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Create transaction failed",
			log.FieldError, err, log.FieldOperation, log.OpCreate)
		writeDomainError(w, err)
		return
	}

	s.invalidateOverview(tx.RefMonth)
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.store.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	id := r.PathValue("id")
	before, err := s.store.GetTransaction(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	tx, err := s.ledger.UpdateTransaction(r.Context(), id, patch)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Update transaction failed",
			log.FieldError, err, log.FieldOperation, log.OpUpdate, log.FieldTxID, id)
		writeDomainError(w, err)
		return
	}

	s.invalidateOverview(before.RefMonth)
	s.invalidateOverview(tx.RefMonth)
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleSetTransactionStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id := r.PathValue("id")
	if err := s.ledger.SetStatus(r.Context(), id, core.TxStatus(req.Status)); err != nil {
		writeDomainError(w, err)
		return
	}

	tx, err := s.store.GetTransaction(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateOverview(tx.RefMonth)
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// Deleting a missing transaction is a no-op, but the affected month is
	// only knowable while the row still exists.
	if tx, err := s.store.GetTransaction(r.Context(), id); err == nil {
		defer s.invalidateOverview(tx.RefMonth)
	}

	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Delete transaction failed",
			log.FieldError, err, log.FieldOperation, log.OpDelete, log.FieldTxID, id)
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
