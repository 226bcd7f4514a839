// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"contas/internal/cache"
	"contas/internal/core"
	"contas/internal/log"
)

// Ledger is the transaction write path.
type Ledger interface {
	AddTransaction(ctx context.Context, draft core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, patch core.TransactionPatch) (core.Transaction, error)
	SetStatus(ctx context.Context, id string, status core.TxStatus) error
	DeleteTransaction(ctx context.Context, id string) error
}

// Planner creates and deletes installment plans.
type Planner interface {
	CreatePlan(ctx context.Context, spec core.InstallmentPlan) (core.InstallmentPlan, error)
	DeletePlan(ctx context.Context, id string) error
}

// Materializer expands recurring bills into a month's transactions.
type Materializer interface {
	EnsureMonth(ctx context.Context, month core.MonthKey) (int, error)
}

// Store covers the read side and the plain entity CRUD the API serves
// directly, without going through a service.
type Store interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListTransactionsByRefMonth(ctx context.Context, month core.MonthKey) ([]core.Transaction, error)
	ListCardStatement(ctx context.Context, cardID string, statementMonth core.MonthKey) ([]core.Transaction, error)
	ListDueBetween(ctx context.Context, from, to core.Date) ([]core.Transaction, error)

	CreateCard(ctx context.Context, card core.Card) error
	GetCard(ctx context.Context, id string) (core.Card, error)
	ListCards(ctx context.Context) ([]core.Card, error)
	UpdateCard(ctx context.Context, card core.Card) error
	DeleteCard(ctx context.Context, id string) error

	CreateFixedBill(ctx context.Context, bill core.FixedBill) error
	GetFixedBill(ctx context.Context, id string) (core.FixedBill, error)
	ListFixedBills(ctx context.Context) ([]core.FixedBill, error)
	UpdateFixedBill(ctx context.Context, bill core.FixedBill) error
	DeleteFixedBill(ctx context.Context, id string) error

	GetPlan(ctx context.Context, id string) (core.InstallmentPlan, error)
	ListPlans(ctx context.Context) ([]core.InstallmentPlan, error)
	ListPlanTransactions(ctx context.Context, planID string) ([]core.Transaction, error)

	CreateCategory(ctx context.Context, cat core.Category) error
	GetCategory(ctx context.Context, id string) (core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	UpdateCategory(ctx context.Context, cat core.Category) error
	DeleteCategory(ctx context.Context, id string) error

	GetSettings(ctx context.Context) (core.AppSettings, error)
	SaveSettings(ctx context.Context, s core.AppSettings) error

	MonthOverview(ctx context.Context, month core.MonthKey) (core.MonthOverview, error)
	GetMonthSummary(ctx context.Context, month core.MonthKey) (core.MonthSummary, error)
}

type Server struct {
	http.Server

	ledger       Ledger
	planner      Planner
	materializer Materializer
	store        Store

	rateLimiter *rateLimiter
	httpLog     *log.HTTPLogger

	// Cached month overviews; the short TTL also covers invalidation
	// gaps when an update moves a transaction across months.
	overviewCache *cache.LRUCache[core.MonthOverview]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger Ledger, planner Planner, materializer Materializer, store Store, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ledger:        ledger,
		planner:       planner,
		materializer:  materializer,
		store:         store,
		rateLimiter:   newRateLimiter(),
		httpLog:       log.NewHTTPLogger(logger),
		overviewCache: cache.NewLRUCache[core.MonthOverview](100, time.Minute),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.overviewCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	s.route(mux, "POST /api/transactions", s.handleCreateTransaction)
	s.route(mux, "GET /api/transactions/{id}", s.handleGetTransaction)
	s.route(mux, "PATCH /api/transactions/{id}", s.handleUpdateTransaction)
	s.route(mux, "DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	s.route(mux, "PUT /api/transactions/{id}/status", s.handleSetTransactionStatus)

	s.route(mux, "GET /api/months/{month}/transactions", s.handleMonthTransactions)
	s.route(mux, "GET /api/months/{month}/overview", s.handleMonthOverview)
	s.route(mux, "GET /api/months/{month}/summary", s.handleMonthSummary)
	s.route(mux, "POST /api/months/{month}/materialize", s.handleMaterializeMonth)
	s.route(mux, "GET /api/due", s.handleDueBetween)

	s.route(mux, "POST /api/cards", s.handleCreateCard)
	s.route(mux, "GET /api/cards", s.handleListCards)
	s.route(mux, "GET /api/cards/{id}", s.handleGetCard)
	s.route(mux, "PUT /api/cards/{id}", s.handleUpdateCard)
	s.route(mux, "DELETE /api/cards/{id}", s.handleDeleteCard)
	s.route(mux, "GET /api/cards/{id}/statement/{month}", s.handleCardStatement)

	s.route(mux, "POST /api/bills", s.handleCreateBill)
	s.route(mux, "GET /api/bills", s.handleListBills)
	s.route(mux, "GET /api/bills/{id}", s.handleGetBill)
	s.route(mux, "PUT /api/bills/{id}", s.handleUpdateBill)
	s.route(mux, "DELETE /api/bills/{id}", s.handleDeleteBill)

	s.route(mux, "POST /api/plans", s.handleCreatePlan)
	s.route(mux, "GET /api/plans", s.handleListPlans)
	s.route(mux, "GET /api/plans/{id}", s.handleGetPlan)
	s.route(mux, "DELETE /api/plans/{id}", s.handleDeletePlan)

	s.route(mux, "POST /api/categories", s.handleCreateCategory)
	s.route(mux, "GET /api/categories", s.handleListCategories)
	s.route(mux, "PUT /api/categories/{id}", s.handleUpdateCategory)
	s.route(mux, "DELETE /api/categories/{id}", s.handleDeleteCategory)

	s.route(mux, "GET /api/settings", s.handleGetSettings)
	s.route(mux, "PUT /api/settings", s.handleSaveSettings)

	return s
}

func (s *Server) route(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	mux.HandleFunc(pattern, s.withMiddleware(handler))
}

// withMiddleware adds security headers, rate limiting and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ip := clientIP(r)
		requestID := generateRequestID()

		reqLogger := log.FromContext(r.Context()).With(log.FieldRequestID, requestID)
		ctx := log.NewContext(r.Context(), reqLogger)
		r = r.WithContext(ctx)

		s.httpLog.Start(ctx, r, requestID, ip)

		// Rate limit writes only; reads are cheap and cached.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(ip) {
			reqLogger.WarnContext(ctx, "Rate limit exceeded", log.FieldClientIP, ip, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.httpLog.End(ctx, r, requestID, ip, rw.statusCode, time.Since(start).Milliseconds())
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func (s *Server) invalidateOverview(month core.MonthKey) {
	if month != "" {
		s.overviewCache.Delete(string(month))
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
