package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

type Server struct {
	http.Server

	users        *services.UserService
	transactions *services.TransactionService
	budgets      *services.BudgetService
	reports      *services.ReportService

	rateLimiter  *rateLimiter
	metrics      *securityMetrics
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, users *services.UserService, transactions *services.TransactionService, budgets *services.BudgetService, reports *services.ReportService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		users:        users,
		transactions: transactions,
		budgets:      budgets,
		reports:      reports,
		rateLimiter:  newRateLimiter(),
		metrics:      &securityMetrics{},
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/auth/register", s.guard(s.handleRegister))
	mux.HandleFunc("POST /api/auth/login", s.guard(s.handleLogin))
	mux.HandleFunc("POST /api/auth/avatar/{id}", s.guard(s.handleAvatar))

	mux.HandleFunc("POST /api/v1/transactions", s.guard(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/v1/transactions", s.guard(s.handleListTransactions))
	mux.HandleFunc("PUT /api/v1/transactions/{id}", s.guard(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/v1/transactions/{id}", s.guard(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/v1/analytics", s.guard(s.handleAnalytics))
	mux.HandleFunc("GET /api/v1/notifications", s.guard(s.handleNotifications))
	mux.HandleFunc("GET /api/v1/export", s.guard(s.handleExport))

	mux.HandleFunc("GET /api/v1/budgets", s.guard(s.handleListBudgets))
	mux.HandleFunc("PUT /api/v1/budgets", s.guard(s.handleUpsertBudget))
	mux.HandleFunc("DELETE /api/v1/budgets/{category}", s.guard(s.handleDeleteBudget))
	mux.HandleFunc("GET /api/v1/budgets/status", s.guard(s.handleBudgetStatus))

	tracer := trace.NewMiddleware(extractClientIP)
	s.Server = http.Server{
		Addr:    addr,
		Handler: tracer.Middleware(mux),
	}

	return s
}

// guard applies security headers, suspicious-request detection, and rate
// limiting for mutating methods.
func (s *Server) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)

		if detectSuspiciousRequest(r, s.metrics) {
			slog.WarnContext(r.Context(), "Suspicious request blocked",
				"client_ip", clientIP, "path", r.URL.Path)
			respondFailure(w, http.StatusBadRequest, "bad request")
			return
		}

		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if !s.rateLimiter.allow(clientIP, s.metrics) {
				slog.WarnContext(r.Context(), "Rate limit exceeded",
					"client_ip", clientIP, "method", r.Method, "path", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				respondFailure(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
				return
			}
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		next(w, r)
	}
}

// Shutdown stops the background cleanup goroutines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
