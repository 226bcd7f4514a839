package http

import (
	"net/http"

	"github.com/google/uuid"
)

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	bill, err := req.toBill(uuid.NewString())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := bill.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.store.CreateFixedBill(r.Context(), bill); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bill)
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.store.ListFixedBills(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bills)
}

func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := s.store.GetFixedBill(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// Edits apply to future months only; already materialized transactions
	// are never touched.
	bill, err := req.toBill(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if err := bill.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}
	if err := s.store.UpdateFixedBill(r.Context(), bill); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteFixedBill(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
