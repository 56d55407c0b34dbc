// Package http exposes the community ledger over a JSON API. Handlers are
// thin: they parse, call the ledger services, and map the shared error
// taxonomy onto statuses. Read endpoints for stats and the matrix sit
// behind a small LRU cache that also serves stale entries when the store
// is down.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"iuran/internal/auth"
	"iuran/internal/cache"
	"iuran/internal/core"
	"iuran/internal/ledger"
	"iuran/internal/middleware/ratelimit"
	"iuran/internal/middleware/security"
	"iuran/internal/middleware/trace"
)

const (
	readCacheSize = 128
	readCacheTTL  = 30 * time.Second
	handlerBudget = 7 * time.Second
)

// Deps carries everything the server needs. Store backs the CRUD-lite
// endpoints directly; the ledger services own the domain operations.
type Deps struct {
	Stats    *ledger.StatsService
	Matrix   *ledger.MatrixService
	Expenses *ledger.ExpenseService
	Payments *ledger.PaymentService
	Store    ledger.Store
	Auth     *auth.Service
}

type Server struct {
	http.Server

	stats    *ledger.StatsService
	matrix   *ledger.MatrixService
	expenses *ledger.ExpenseService
	payments *ledger.PaymentService
	store    ledger.Store
	auth     *auth.Service

	// Read caches are capacity-bound only: expired entries must stay
	// resident so GetStale can answer during a store outage.
	statsCache  *cache.LRUCache[core.Stats]
	matrixCache *cache.LRUCache[[]core.MatrixRow]

	limiter   *ratelimit.Limiter
	extractor *security.IPExtractor

	shutdownOnce sync.Once
}

func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		stats:       deps.Stats,
		matrix:      deps.Matrix,
		expenses:    deps.Expenses,
		payments:    deps.Payments,
		store:       deps.Store,
		auth:        deps.Auth,
		statsCache:  cache.NewLRUCache[core.Stats](readCacheSize, readCacheTTL),
		matrixCache: cache.NewLRUCache[[]core.MatrixRow](readCacheSize, readCacheTTL),
		limiter:     ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		extractor:   security.NewIPExtractor(),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.extractor.ClientIP)

	var handler http.Handler = mux
	handler = s.limitWrites(handler)
	handler = tracer.Middleware(handler)
	handler = headers.Middleware(handler)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/v1/login", s.handleLogin)

	mux.HandleFunc("GET /api/v1/stats", s.requireCap(core.CapViewLedger, s.handleGetStats))
	mux.HandleFunc("GET /api/v1/matrix", s.requireCap(core.CapViewLedger, s.handleGetMatrix))

	mux.HandleFunc("GET /api/v1/expenses", s.requireCap(core.CapViewLedger, s.handleListExpenses))
	mux.HandleFunc("GET /api/v1/expenses/{id}", s.requireCap(core.CapViewLedger, s.handleGetExpense))
	mux.HandleFunc("POST /api/v1/expenses", s.requireCap(core.CapSubmitExpense, s.handleSubmitExpense))
	mux.HandleFunc("POST /api/v1/expenses/{id}/decision", s.requireCap(core.CapDecideExpense, s.handleDecideExpense))

	mux.HandleFunc("GET /api/v1/payments", s.requireCap(core.CapViewLedger, s.handleListPayments))
	mux.HandleFunc("POST /api/v1/payments", s.requireCap(core.CapSubmitExpense, s.handleRecordPayment))
	mux.HandleFunc("POST /api/v1/payments/{id}/verify", s.requireCap(core.CapDecideExpense, s.handleVerifyPayment))

	mux.HandleFunc("GET /api/v1/residents", s.requireCap(core.CapViewLedger, s.handleListResidents))
	mux.HandleFunc("POST /api/v1/residents", s.requireCap(core.CapManageResidents, s.handleCreateResident))
	mux.HandleFunc("DELETE /api/v1/residents/{id}", s.requireCap(core.CapManageResidents, s.handleDeactivateResident))

	mux.HandleFunc("GET /api/v1/contribution-types", s.requireCap(core.CapViewLedger, s.handleListContributionTypes))
	mux.HandleFunc("POST /api/v1/contribution-types", s.requireCap(core.CapManageResidents, s.handleCreateContributionType))
	mux.HandleFunc("DELETE /api/v1/contribution-types/{id}", s.requireCap(core.CapManageResidents, s.handleDeactivateContributionType))

	mux.HandleFunc("GET /api/v1/categories", s.requireCap(core.CapViewLedger, s.handleListCategories))
	mux.HandleFunc("POST /api/v1/categories", s.requireCap(core.CapManageResidents, s.handleCreateCategory))
	mux.HandleFunc("DELETE /api/v1/categories/{id}", s.requireCap(core.CapManageResidents, s.handleDeactivateCategory))

	mux.HandleFunc("GET /api/v1/settings", s.requireCap(core.CapViewLedger, s.handleGetSettings))
	mux.HandleFunc("GET /api/v1/settings/{key}", s.requireCap(core.CapViewLedger, s.handleGetSetting))
	mux.HandleFunc("PUT /api/v1/settings", s.requireCap(core.CapManageSettings, s.handlePutSettings))
}

// limitWrites rate-limits mutating requests per client IP. Reads go
// through uncounted; they are cheap and cached.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if !s.limiter.Allow(s.extractor.ClientIP(r)) {
				writeRateLimited(w, r)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady probes the store with a cheap read so orchestrators stop
// routing traffic while the database is unreachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := s.store.ListSettings(ctx); err != nil {
		slog.WarnContext(r.Context(), "Readiness probe failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops background upkeep and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
