package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"kakeibo/internal/core"
	"kakeibo/internal/middleware/ratelimit"
	"kakeibo/internal/middleware/security"
	"kakeibo/internal/middleware/trace"
)

// Service is the application surface the HTTP layer exposes.
type Service interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	CreateCategory(ctx context.Context, name string, typ core.EntryType, color string) (core.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListTransactions(ctx context.Context, month string) ([]core.TransactionWithCategory, error)
	CreateTransaction(ctx context.Context, t core.Transaction) (core.TransactionWithCategory, error)
	DeleteTransaction(ctx context.Context, id string) error

	ListBudgets(ctx context.Context, bt core.BudgetType, period string) ([]core.BudgetWithProgress, error)
	CreateBudget(ctx context.Context, b core.Budget) (core.BudgetWithCategory, error)
	DeleteBudget(ctx context.Context, id string) error

	Dashboard(ctx context.Context, month string) (core.Dashboard, error)
}

// Options tune the server's middleware.
type Options struct {
	// RateLimitPerMinute caps mutating requests per client IP. Zero uses
	// the limiter's default.
	RateLimitPerMinute int
}

// Server wraps http.Server with the tracker routes and middleware.
type Server struct {
	http.Server
	svc          Service
	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc Service, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		svc: svc,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
	}

	ips := security.NewResolver()
	limited := s.limiter.Middleware(ips.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	})

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.Handle("POST /categories", limited(http.HandlerFunc(s.handleCreateCategory)))
	mux.Handle("DELETE /categories/{id}", limited(http.HandlerFunc(s.handleDeleteCategory)))

	mux.HandleFunc("GET /transactions", s.handleListTransactions)
	mux.Handle("POST /transactions", limited(http.HandlerFunc(s.handleCreateTransaction)))
	mux.Handle("DELETE /transactions/{id}", limited(http.HandlerFunc(s.handleDeleteTransaction)))

	mux.HandleFunc("GET /budgets", s.handleListBudgets)
	mux.Handle("POST /budgets", limited(http.HandlerFunc(s.handleCreateBudget)))
	mux.Handle("DELETE /budgets/{id}", limited(http.HandlerFunc(s.handleDeleteBudget)))

	mux.HandleFunc("GET /dashboard", s.handleDashboard)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	traced := trace.NewMiddleware(ips.ClientIP)
	s.Handler = traced.Middleware(headers.Middleware(mux))

	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
