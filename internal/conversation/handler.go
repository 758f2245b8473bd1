package conversation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/riverline/collections-platform/internal/borrowers"
	"github.com/riverline/collections-platform/pkg/logging"
)

// Handler handles HTTP requests for conversations
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new conversations handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Start handles POST /conversations/start
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conv, err := h.service.Start(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, borrowers.ErrBorrowerNotFound):
			http.Error(w, "Borrower not found", http.StatusNotFound)
		case errors.Is(err, ErrBorrowerLocked):
			http.Error(w, "Call locked for this borrower.", http.StatusForbidden)
		default:
			h.logger.Error("failed to start conversation", "error", err)
			http.Error(w, "failed to start conversation", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(conv)
}

// Utter handles POST /conversations/utter
func (h *Handler) Utter(w http.ResponseWriter, r *http.Request) {
	var req UtterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conv, err := h.service.Utterance(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrConversationNotFound):
			http.Error(w, "Conversation not found", http.StatusNotFound)
		case errors.Is(err, ErrMissingText):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("failed to process utterance", "error", err)
			http.Error(w, "failed to process utterance", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conv)
}

// Get handles GET /conversations/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	conv, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			http.Error(w, "Conversation not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to fetch conversation", "error", err)
		http.Error(w, "failed to fetch conversation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conv)
}

// Summary handles GET /conversations/{id}/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			http.Error(w, "Conversation not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to summarize conversation", "error", err)
		http.Error(w, "failed to summarize conversation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"summary": summary})
}

// SetOutcome handles POST /conversations/outcome
func (h *Handler) SetOutcome(w http.ResponseWriter, r *http.Request) {
	var req OutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.SetOutcome(r.Context(), &req); err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			http.Error(w, "Conversation not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to set outcome", "error", err)
		http.Error(w, "failed to set outcome", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// ScheduleFollowup handles POST /conversations/followup
func (h *Handler) ScheduleFollowup(w http.ResponseWriter, r *http.Request) {
	var req FollowupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.ScheduleFollowup(r.Context(), &req); err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			http.Error(w, "Conversation not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to schedule followup", "error", err)
		http.Error(w, "failed to schedule followup", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// Voice handles POST webhooks from Twilio for phone calls. The reply is
// TwiML; Twilio posts gathered speech back to the same endpoint.
func (h *Handler) Voice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	twiml, err := h.service.VoiceTurn(r.Context(), VoiceRequest{
		CallSid:      r.PostFormValue("CallSid"),
		From:         r.PostFormValue("From"),
		To:           r.PostFormValue("To"),
		SpeechResult: r.PostFormValue("SpeechResult"),
		GatherAction: r.URL.Path,
	})
	if err != nil {
		h.logger.Error("voice webhook failed", "error", err)
	}

	w.Header().Set("Content-Type", "text/xml")
	w.Write([]byte(twiml))
}
