package ops

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/riverline/collections-platform/internal/borrowers"
	"github.com/riverline/collections-platform/internal/notify"
	"github.com/riverline/collections-platform/pkg/logging"
)

// Handler handles HTTP requests for the operations surface
type Handler struct {
	service *Service
	email   notify.Sender
	eodTo   string
	logger  *logging.Logger
}

// NewHandler creates a new ops handler. email and eodTo configure the
// EOD report delivery; both may be empty.
func NewHandler(service *Service, email notify.Sender, eodTo string, logger *logging.Logger) *Handler {
	return &Handler{service: service, email: email, eodTo: eodTo, logger: logger}
}

// Queue handles GET /ops/queue
func (h *Handler) Queue(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.PriorityQueue(r.Context())
	if err != nil {
		h.logger.Error("failed to build priority queue", "error", err)
		http.Error(w, "failed to build priority queue", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// TodayQueue handles GET /ops/queue/today
func (h *Handler) TodayQueue(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.TodayQueue(r.Context())
	if err != nil {
		h.logger.Error("failed to build today queue", "error", err)
		http.Error(w, "failed to build today queue", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// Recovery handles GET /ops/recovery/{id}
func (h *Handler) Recovery(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.RecoveryForBorrower(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, borrowers.ErrBorrowerNotFound) {
			http.Error(w, "Borrower not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to compute recovery", "error", err)
		http.Error(w, "failed to compute recovery", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// Dashboard handles GET /ops/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("failed to build dashboard", "error", err)
		http.Error(w, "failed to build dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// Leaderboard handles GET /ops/leaderboard
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Leaderboard(r.Context())
	if err != nil {
		h.logger.Error("failed to build leaderboard", "error", err)
		http.Error(w, "failed to build leaderboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

// Compliance handles GET /ops/compliance
func (h *Handler) Compliance(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.service.ComplianceCheck())
}

// StartCall handles POST /ops/call/{id}
func (h *Handler) StartCall(w http.ResponseWriter, r *http.Request) {
	sid, err := h.service.StartCall(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, borrowers.ErrBorrowerNotFound):
			http.Error(w, "Borrower not found", http.StatusNotFound)
		case errors.Is(err, ErrCallLocked):
			http.Error(w, "Call locked for this borrower.", http.StatusForbidden)
		case errors.Is(err, ErrWebhookNotConfigured):
			http.Error(w, err.Error(), http.StatusInternalServerError)
		default:
			h.logger.Error("failed to start call", "error", err)
			http.Error(w, "failed to start call", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"ok":      true,
		"sid":     sid,
		"message": "Call initiated.",
	})
}

// EODReport handles GET /reports/eod. With ?email=true the report is
// also mailed to the configured supervisor address.
func (h *Handler) EODReport(w http.ResponseWriter, r *http.Request) {
	var (
		report *EODReport
		err    error
	)
	if r.URL.Query().Get("email") == "true" {
		report, err = h.service.EmailEndOfDayReport(r.Context(), h.email, h.eodTo)
	} else {
		report, err = h.service.EndOfDayReport(r.Context())
	}
	if err != nil {
		h.logger.Error("failed to build eod report", "error", err)
		http.Error(w, "failed to build eod report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
