package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"kas/internal/core"
	"kas/internal/storage"
)

type transactionPayload struct {
	Title    string      `json:"title"`
	Category string      `json:"category"`
	Type     string      `json:"type"`
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
	Date     string      `json:"date"`
}

type transactionResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Type      string `json:"type"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Date      string `json:"date"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:        t.ID,
		Title:     t.Title,
		Category:  t.Category,
		Type:      string(t.Type),
		Amount:    t.Amount.Units,
		Currency:  t.Currency,
		Date:      t.Date.Format(time.RFC3339),
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *Server) transactionFromPayload(payload transactionPayload) (core.Transaction, error) {
	date, err := parseDate(payload.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(payload.Amount.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid amount %q", payload.Amount)
	}
	currency := payload.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	return core.Transaction{
		Title:    payload.Title,
		Category: payload.Category,
		Type:     core.TransactionType(payload.Type),
		Amount:   core.Money{Units: amount},
		Currency: currency,
		Date:     date,
	}, nil
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		txs, err := s.transactions.List(r.Context(), r.URL.Query().Get("currency"))
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to list transactions", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list transactions")
			return
		}
		out := make([]transactionResponse, 0, len(txs))
		for _, t := range txs {
			out = append(out, toTransactionResponse(t))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var payload transactionPayload
		if err := readJSON(w, r, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		t, err := s.transactionFromPayload(payload)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		created, err := s.transactions.Create(r.Context(), t)
		if err != nil {
			if isValidationError(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			slog.ErrorContext(r.Context(), "Failed to create transaction", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create transaction")
			return
		}
		writeJSON(w, http.StatusCreated, toTransactionResponse(created))

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/transactions/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "transaction id is required")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var payload transactionPayload
		if err := readJSON(w, r, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		t, err := s.transactionFromPayload(payload)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		t.ID = id

		err = s.transactions.Update(r.Context(), t)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		if err != nil {
			if isValidationError(err) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			slog.ErrorContext(r.Context(), "Failed to update transaction", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update transaction")
			return
		}
		writeJSON(w, http.StatusOK, toTransactionResponse(t))

	case http.MethodDelete:
		err := s.transactions.Delete(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to delete transaction", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to delete transaction")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		methodNotAllowed(w, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	currency := r.URL.Query().Get("currency")
	if currency == "" {
		currency = s.defaultCurrency
	}

	summary, err := s.transactions.Summary(r.Context(), currency)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to build summary", "currency", currency, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"currency": summary.Currency,
		"income":   summary.Income.Units,
		"expense":  summary.Expense.Units,
		"balance":  summary.Balance(),
	})
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrEmptyTitle,
		core.ErrEmptyCategory,
		core.ErrInvalidType,
		core.ErrInvalidAmount,
		core.ErrEmptyCurrency,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
