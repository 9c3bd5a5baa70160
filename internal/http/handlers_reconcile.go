package http

import (
	"log/slog"
	"net/http"
	"time"
)

// handleReconcile runs one reconciliation pass against the current clock.
// The UI calls this on startup and when the user asks for a manual sweep.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	result, err := s.reconciler.Reconcile(r.Context(), time.Now())
	if err != nil {
		slog.ErrorContext(r.Context(), "Reconciliation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "reconciliation failed")
		return
	}

	if result.DeductionsMade > 0 {
		s.transactions.FlushSummaries()
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"deductionsMade": result.DeductionsMade,
		"failed":         result.Failed,
	})
}
