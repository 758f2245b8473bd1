package payments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/riverline/collections-platform/internal/borrowers"
	"github.com/riverline/collections-platform/pkg/logging"
)

// Handler handles HTTP requests for payments
type Handler struct {
	repo    Repository
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new payments handler
func NewHandler(repo Repository, service *Service, logger *logging.Logger) *Handler {
	return &Handler{repo: repo, service: service, logger: logger}
}

// Collect handles POST /payments
func (h *Handler) Collect(w http.ResponseWriter, r *http.Request) {
	var req CollectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.service.Collect(r.Context(), &req)
	if err != nil {
		if errors.Is(err, borrowers.ErrBorrowerNotFound) {
			http.Error(w, "Borrower not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to collect payment", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// ListByBorrower handles GET /payments?borrower_id=...
func (h *Handler) ListByBorrower(w http.ResponseWriter, r *http.Request) {
	borrowerID := r.URL.Query().Get("borrower_id")
	if borrowerID == "" {
		http.Error(w, "missing borrower_id", http.StatusBadRequest)
		return
	}

	rows, err := h.repo.ListByBorrower(r.Context(), borrowerID)
	if err != nil {
		h.logger.Error("failed to list payments", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []*Payment{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}
