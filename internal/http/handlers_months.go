package http

import (
	"net/http"

	"contas/internal/core"
	"contas/internal/log"
)

// handleMonthTransactions lists a month's ledger. Recurring bills for the
// month are materialized first so the listing is complete on first read.
func (s *Server) handleMonthTransactions(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.materializer.EnsureMonth(r.Context(), month)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Materialize before listing failed",
			log.FieldError, err, log.FieldRefMonth, month)
		writeDomainError(w, err)
		return
	}
	if created > 0 {
		s.invalidateOverview(month)
	}

	txs, err := s.store.ListTransactionsByRefMonth(r.Context(), month)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Month        core.MonthKey      `json:"month"`
		Transactions []core.Transaction `json:"transactions"`
	}{Month: month, Transactions: txs})
}

func (s *Server) handleMonthOverview(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if overview, found := s.overviewCache.Get(string(month)); found {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Overview cache hit", log.FieldRefMonth, month)
		writeJSON(w, http.StatusOK, overview)
		return
	}

	overview, err := s.store.MonthOverview(r.Context(), month)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.overviewCache.Set(string(month), overview)
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := s.store.GetMonthSummary(r.Context(), month)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleMaterializeMonth(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.materializer.EnsureMonth(r.Context(), month)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Materialize month failed",
			log.FieldError, err, log.FieldOperation, log.OpMaterialize, log.FieldRefMonth, month)
		writeDomainError(w, err)
		return
	}

	if created > 0 {
		s.invalidateOverview(month)
	}
	writeJSON(w, http.StatusOK, struct {
		Month   core.MonthKey `json:"month"`
		Created int           `json:"created"`
	}{Month: month, Created: created})
}

// handleDueBetween lists transactions with a due date inside [from, to].
func (s *Server) handleDueBetween(w http.ResponseWriter, r *http.Request) {
	from, err := core.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'from' date")
		return
	}
	to, err := core.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'to' date")
		return
	}
	if to.Time.Before(from.Time) {
		writeError(w, http.StatusBadRequest, "'to' must not precede 'from'")
		return
	}

	txs, err := s.store.ListDueBetween(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		From         core.Date          `json:"from"`
		To           core.Date          `json:"to"`
		Transactions []core.Transaction `json:"transactions"`
	}{From: from, To: to, Transactions: txs})
}
