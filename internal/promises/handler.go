package promises

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/riverline/collections-platform/pkg/logging"
)

// Handler handles HTTP requests for promises
type Handler struct {
	repo    Repository
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new promises handler
func NewHandler(repo Repository, service *Service, logger *logging.Logger) *Handler {
	return &Handler{repo: repo, service: service, logger: logger}
}

// List handles GET /promises?borrower_id=...
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		rows []*Promise
		err  error
	)
	if borrowerID := r.URL.Query().Get("borrower_id"); borrowerID != "" {
		rows, err = h.repo.ListByBorrower(r.Context(), borrowerID)
	} else {
		rows, err = h.repo.List(r.Context())
	}
	if err != nil {
		h.logger.Error("failed to list promises", "error", err)
		http.Error(w, "failed to list promises", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []*Promise{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

// Create handles POST /promises
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePromiseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.Record(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to record promise", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(p)
}

// MarkKept handles POST /promises/{id}/kept
func (h *Handler) MarkKept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.MarkKept)
}

// MarkBroken handles POST /promises/{id}/broken
func (h *Handler) MarkBroken(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.MarkBroken)
}

// Cancel handles POST /promises/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Cancel)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) error) {
	id := chi.URLParam(r, "id")
	if err := fn(r.Context(), id); err != nil {
		if errors.Is(err, ErrPromiseNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to transition promise", "error", err, "promise_id", id)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
