// Package http exposes the JSON API consumed by the dashboard UI and by
// remote automation: subscription and ledger CRUD, the cashflow summary,
// and the reconcile trigger.
package http

import (
	"net/http"
	"time"

	"kas/internal/middleware/ratelimit"
	"kas/internal/middleware/trace"
	"kas/internal/services"
	"kas/internal/storage"
)

type Server struct {
	store           *storage.SQLiteRepository
	transactions    *services.TransactionService
	reconciler      *services.Reconciler
	defaultCurrency string
}

// NewServer wires the API handlers and returns a ready-to-run http.Server.
func NewServer(addr string, store *storage.SQLiteRepository, transactions *services.TransactionService, reconciler *services.Reconciler, defaultCurrency string) *http.Server {
	s := &Server{
		store:           store,
		transactions:    transactions,
		reconciler:      reconciler,
		defaultCurrency: defaultCurrency,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/subscriptions", s.handleSubscriptions)
	mux.HandleFunc("/api/subscriptions/", s.handleSubscriptionByID)
	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/transactions/", s.handleTransactionByID)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/reconcile", s.handleReconcile)

	limiter := ratelimit.NewLimiter(ratelimit.DefaultConfig())
	traced := trace.NewMiddleware(trace.ClientIP)

	handler := traced.Handler(limiter.Handler(mux))

	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16, // 64KB
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
