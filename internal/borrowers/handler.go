package borrowers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/riverline/collections-platform/internal/compliance"
	"github.com/riverline/collections-platform/internal/persona"
	"github.com/riverline/collections-platform/pkg/logging"
)

// PromiseStats reports a borrower's promise history; implemented by the
// promises repository.
type PromiseStats interface {
	StatsForBorrower(ctx context.Context, borrowerID string) (kept, broken int, err error)
}

// OutcomeSource reports recent call outcomes, newest first; implemented
// by the conversation store.
type OutcomeSource interface {
	RecentOutcomes(ctx context.Context, borrowerID string, limit int) ([]string, error)
}

// Handler handles HTTP requests for borrowers
type Handler struct {
	repo     Repository
	promises PromiseStats
	outcomes OutcomeSource
	logger   *logging.Logger
}

// NewHandler creates a new borrowers handler
func NewHandler(repo Repository, promises PromiseStats, outcomes OutcomeSource, logger *logging.Logger) *Handler {
	return &Handler{
		repo:     repo,
		promises: promises,
		outcomes: outcomes,
		logger:   logger,
	}
}

// Create handles POST /borrowers requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBorrowerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	b, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create borrower", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("borrower created", "id", b.ID, "risk_level", b.RiskLevel)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(b)
}

// List handles GET /borrowers. Obviously fake numbers found along the
// way get their invalid flag persisted as quick data hygiene.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list borrowers", "error", err)
		http.Error(w, "failed to list borrowers", http.StatusInternalServerError)
		return
	}

	persisted := 0
	for _, b := range list {
		if !b.InvalidNumberFlag && compliance.DetectFakeNumber(b.Phone) {
			b.InvalidNumberFlag = true
			if err := h.repo.Update(r.Context(), b); err != nil {
				h.logger.Error("failed to persist invalid number flag", "error", err, "borrower_id", b.ID)
				continue
			}
			persisted++
		}
	}
	if persisted > 0 {
		h.logger.Info("persisted invalid number flags", "count", persisted)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// Get handles GET /borrowers/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrBorrowerNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get borrower", "error", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(b)
}

// SetFlags handles PATCH /borrowers/{id}/flags
func (h *Handler) SetFlags(w http.ResponseWriter, r *http.Request) {
	var req FlagsUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	b, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrBorrowerNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	if req.Hardship != nil {
		b.HardshipFlag = *req.Hardship
	}
	if req.Dispute != nil {
		b.DisputeFlag = *req.Dispute
	}
	if err := h.repo.Update(r.Context(), b); err != nil {
		h.logger.Error("failed to update flags", "error", err, "borrower_id", b.ID)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"ok":       true,
		"hardship": b.HardshipFlag,
		"dispute":  b.DisputeFlag,
	})
}

// RecomputePersona handles POST /borrowers/{id}/persona. It reclassifies
// from live promise and outcome history and persists the result.
func (h *Handler) RecomputePersona(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	b, err := h.repo.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrBorrowerNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	kept, broken, err := h.promises.StatsForBorrower(ctx, b.ID)
	if err != nil {
		h.logger.Error("failed to load promise stats", "error", err, "borrower_id", b.ID)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	outcomes, err := h.outcomes.RecentOutcomes(ctx, b.ID, 10)
	if err != nil {
		h.logger.Error("failed to load outcomes", "error", err, "borrower_id", b.ID)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	dpd := DaysPastDue(b)
	b.Persona = persona.Classify(persona.Signals{
		DPD:            dpd,
		KeptPromises:   kept,
		BrokenPromises: broken,
		CallOutcomes:   outcomes,
	})
	if err := h.repo.Update(ctx, b); err != nil {
		h.logger.Error("failed to persist persona", "error", err, "borrower_id", b.ID)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("persona recomputed", "borrower_id", b.ID, "persona", b.Persona, "dpd", dpd)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"persona": b.Persona})
}
