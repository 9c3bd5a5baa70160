package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"kas/internal/core"
	"kas/internal/storage"
)

type subscriptionPayload struct {
	Name   string      `json:"name"`
	Cost   json.Number `json:"cost"`
	DueDay int         `json:"dueDay"`
}

type subscriptionResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Cost         int64  `json:"cost"`
	DueDay       int    `json:"dueDay"`
	LastPaidDate string `json:"lastPaidDate,omitempty"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

func toSubscriptionResponse(sub core.Subscription) subscriptionResponse {
	resp := subscriptionResponse{
		ID:        sub.ID,
		Name:      sub.Name,
		Cost:      sub.Cost.Units,
		DueDay:    sub.DueDay,
		CreatedAt: sub.CreatedAt.Format(time.RFC3339),
		UpdatedAt: sub.UpdatedAt.Format(time.RFC3339),
	}
	if !sub.LastPaidDate.IsEmpty() {
		resp.LastPaidDate = sub.LastPaidDate.Format(time.RFC3339)
	}
	return resp
}

func (s *Server) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		subs, err := s.store.ListSubscriptions(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to list subscriptions", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
			return
		}
		out := make([]subscriptionResponse, 0, len(subs))
		for _, sub := range subs {
			out = append(out, toSubscriptionResponse(sub))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var payload subscriptionPayload
		if err := readJSON(w, r, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		cost, err := core.ParseAmount(payload.Cost.String())
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid cost")
			return
		}
		sub := core.Subscription{
			Name:   payload.Name,
			Cost:   core.Money{Units: cost},
			DueDay: payload.DueDay,
		}
		if err := sub.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		created, err := s.store.CreateSubscription(r.Context(), sub)
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to create subscription", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create subscription")
			return
		}
		writeJSON(w, http.StatusCreated, toSubscriptionResponse(created))

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleSubscriptionByID(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/subscriptions/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "subscription id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		sub, err := s.store.GetSubscription(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "subscription not found")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to get subscription", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get subscription")
			return
		}
		writeJSON(w, http.StatusOK, toSubscriptionResponse(sub))

	case http.MethodPut:
		var payload subscriptionPayload
		if err := readJSON(w, r, &payload); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		existing, err := s.store.GetSubscription(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "subscription not found")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to get subscription", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get subscription")
			return
		}

		cost, err := core.ParseAmount(payload.Cost.String())
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid cost")
			return
		}
		existing.Name = payload.Name
		existing.Cost = core.Money{Units: cost}
		existing.DueDay = payload.DueDay
		if err := existing.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := s.store.UpdateSubscription(r.Context(), existing); err != nil {
			slog.ErrorContext(r.Context(), "Failed to update subscription", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update subscription")
			return
		}
		writeJSON(w, http.StatusOK, toSubscriptionResponse(existing))

	case http.MethodDelete:
		err := s.store.DeleteSubscription(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "subscription not found")
			return
		}
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to delete subscription", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to delete subscription")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}
