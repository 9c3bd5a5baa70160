package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"kas/internal/core"
)

// maxBodySize caps request bodies; the API only moves small records.
const maxBodySize = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// pathID extracts the trailing ID from routes like /api/subscriptions/{id}.
func pathID(path, prefix string) string {
	id := strings.TrimPrefix(path, prefix)
	return strings.Trim(id, "/")
}

func parseDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, fmt.Errorf("date is required")
	}
	// Full ISO-8601 timestamps and bare dates are both accepted.
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return core.Date{Time: t}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return core.Date{}, fmt.Errorf("invalid date %q", s)
	}
	return core.Date{Time: t}, nil
}
