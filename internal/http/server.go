package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"prestiti/internal/cache"
	"prestiti/internal/core"
	"prestiti/internal/middleware/security"
	"prestiti/internal/middleware/trace"
	"prestiti/internal/services"
	"prestiti/internal/views"
)

// ReadStore is the read surface the handlers need beyond the derived views.
type ReadStore interface {
	GetClient(ctx context.Context, id int64) (*core.Client, error)
	ListClients(ctx context.Context) ([]core.Client, error)
	GetLoan(ctx context.Context, id int64) (*core.Loan, error)
	ListLoans(ctx context.Context) ([]core.Loan, error)
	ListLoansByClient(ctx context.Context, clientID int64) ([]core.Loan, error)
	ListPaymentsByLoan(ctx context.Context, loanID int64) ([]core.Payment, error)
}

type Server struct {
	http.Server
	ledger *services.LedgerService
	views  *views.Service
	store  ReadStore

	// Derived snapshots are cheap but recomputed per request; cache them and
	// drop everything on any ledger write.
	summaryCache   *cache.LRUCache[core.ClientSummary]
	dashboardCache *cache.LRUCache[core.DashboardState]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger *services.LedgerService, viewsSvc *views.Service, store ReadStore) *Server {
	mux := http.NewServeMux()

	s := &Server{
		ledger:         ledger,
		views:          viewsSvc,
		store:          store,
		summaryCache:   cache.NewLRUCache[core.ClientSummary](200, 5*time.Minute),
		dashboardCache: cache.NewLRUCache[core.DashboardState](1, 5*time.Minute),
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.dashboardCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /clients", s.handleListClients)
	mux.HandleFunc("GET /clients/stream", s.handleClientsStream)
	mux.HandleFunc("POST /clients", s.handleCreateClient)
	mux.HandleFunc("GET /clients/{id}", s.handleGetClient)
	mux.HandleFunc("PUT /clients/{id}", s.handleUpdateClient)
	mux.HandleFunc("DELETE /clients/{id}", s.handleDeleteClient)
	mux.HandleFunc("GET /clients/{id}/loans", s.handleListClientLoans)
	mux.HandleFunc("GET /clients/{id}/loans/stream", s.handleClientLoansStream)
	mux.HandleFunc("GET /clients/{id}/summary", s.handleClientSummary)
	mux.HandleFunc("GET /clients/{id}/summary/stream", s.handleClientSummaryStream)

	mux.HandleFunc("GET /loans", s.handleListLoans)
	mux.HandleFunc("POST /loans", s.handleCreateLoan)
	mux.HandleFunc("GET /loans/{id}", s.handleGetLoan)
	mux.HandleFunc("PUT /loans/{id}", s.handleUpdateLoan)
	mux.HandleFunc("DELETE /loans/{id}", s.handleDeleteLoan)
	mux.HandleFunc("GET /loans/{id}/details", s.handleLoanDetails)
	mux.HandleFunc("GET /loans/{id}/details/stream", s.handleLoanDetailsStream)
	mux.HandleFunc("GET /loans/{id}/payments", s.handleListLoanPayments)
	mux.HandleFunc("GET /loans/{id}/payments/stream", s.handleLoanPaymentsStream)
	mux.HandleFunc("POST /loans/{id}/payments", s.handleRecordPayment)

	mux.HandleFunc("POST /payments", s.handleCreatePayment)
	mux.HandleFunc("DELETE /payments/{id}", s.handleDeletePayment)

	mux.HandleFunc("GET /areas", s.handleAreaSummaries)
	mux.HandleFunc("GET /dashboard", s.handleDashboard)
	mux.HandleFunc("GET /dashboard/stream", s.handleDashboardStream)

	traceMw := trace.NewMiddleware(extractClientIP)
	headersMw := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	s.Server = http.Server{
		Addr:    addr,
		Handler: traceMw.Middleware(headersMw.Middleware(mux)),
	}

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// invalidateDerived drops all cached snapshots. Called after every ledger
// write; correctness over cleverness.
func (s *Server) invalidateDerived() {
	s.summaryCache.Clear()
	s.dashboardCache.Clear()
}

func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
