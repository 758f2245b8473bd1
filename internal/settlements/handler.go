package settlements

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/riverline/collections-platform/internal/borrowers"
	"github.com/riverline/collections-platform/pkg/logging"
)

// Handler handles HTTP requests for settlement offers
type Handler struct {
	repo    Repository
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new settlements handler
func NewHandler(repo Repository, service *Service, logger *logging.Logger) *Handler {
	return &Handler{repo: repo, service: service, logger: logger}
}

// Recommend handles GET /settlements/{borrowerID}/recommendation
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Recommend(r.Context(), chi.URLParam(r, "borrowerID"))
	if err != nil {
		if errors.Is(err, borrowers.ErrBorrowerNotFound) {
			http.Error(w, "Borrower not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to build recommendation", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

// CreateOffer handles POST /settlements/{borrowerID}/offers
func (h *Handler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req CreateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	offer, err := h.service.CreateOffer(r.Context(), chi.URLParam(r, "borrowerID"), &req)
	if err != nil {
		switch {
		case errors.Is(err, borrowers.ErrBorrowerNotFound):
			http.Error(w, "Borrower not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidAmount):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to create offer", "error", err)
			http.Error(w, "Server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(offer)
}

// ListOffers handles GET /settlements/{borrowerID}/offers
func (h *Handler) ListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.repo.ListByBorrower(r.Context(), chi.URLParam(r, "borrowerID"))
	if err != nil {
		h.logger.Error("failed to list offers", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	if offers == nil {
		offers = []*Offer{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(offers)
}

// Accept handles POST /settlements/offers/{id}/accept
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Accept(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, ErrOfferNotFound) {
			http.Error(w, "Offer not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to accept offer", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
