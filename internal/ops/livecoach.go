package ops

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/riverline/collections-platform/internal/coaching"
	"github.com/riverline/collections-platform/internal/conversation"
	"github.com/riverline/collections-platform/pkg/logging"
)

// CoachEvent is one live update pushed to a subscribed agent console.
type CoachEvent struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversation_id"`
	State          string          `json:"state"`
	Outcome        string          `json:"outcome,omitempty"`
	AgentReply     string          `json:"agent_reply,omitempty"`
	Coaching       coaching.Advice `json:"coaching"`
	At             string          `json:"at"`
}

// CoachHub fans persisted conversation turns out to WebSocket
// subscribers, keyed by conversation ID. It implements
// conversation.TurnListener.
type CoachHub struct {
	upgrader websocket.Upgrader
	logger   *logging.Logger

	mu   sync.RWMutex
	subs map[string]map[*websocket.Conn]struct{}
}

// NewCoachHub creates the live coaching hub.
func NewCoachHub(logger *logging.Logger) *CoachHub {
	if logger == nil {
		logger = logging.Default()
	}
	return &CoachHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
		subs:   make(map[string]map[*websocket.Conn]struct{}),
	}
}

// HandleStream upgrades to WebSocket and streams coaching updates for
// the conversation named by the `conv` query parameter.
func (h *CoachHub) HandleStream(w http.ResponseWriter, r *http.Request) {
	convID := r.URL.Query().Get("conv")
	if convID == "" {
		http.Error(w, "conv parameter required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("coach stream: upgrade failed", "error", err)
		return
	}

	h.subscribe(convID, conn)
	h.logger.Info("coach stream: subscriber connected", "conversation_id", convID)

	defer func() {
		h.unsubscribe(convID, conn)
		_ = conn.Close()
	}()

	// Reads only drive connection liveness; subscribers never send
	// payloads we act on.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.logger.Debug("coach stream: subscriber disconnected", "conversation_id", convID)
			return
		}
	}
}

// ConversationUpdated pushes the latest turn's state, reply, and
// coaching annotation to everyone watching the conversation.
func (h *CoachHub) ConversationUpdated(conv *conversation.Conversation) {
	if h == nil || conv == nil {
		return
	}
	event := CoachEvent{
		Type:           "coaching",
		ConversationID: conv.ID,
		State:          string(conv.State),
		Outcome:        conv.Outcome,
		AgentReply:     conv.LastAgentText(),
		Coaching:       conv.Coaching,
		At:             time.Now().UTC().Format(time.RFC3339),
	}
	h.broadcast(conv.ID, event)
}

func (h *CoachHub) subscribe(convID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[convID] == nil {
		h.subs[convID] = make(map[*websocket.Conn]struct{})
	}
	h.subs[convID][conn] = struct{}{}
}

func (h *CoachHub) unsubscribe(convID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[convID], conn)
	if len(h.subs[convID]) == 0 {
		delete(h.subs, convID)
	}
}

func (h *CoachHub) broadcast(convID string, event CoachEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.subs[convID] {
		if err := conn.WriteJSON(event); err != nil {
			h.logger.Debug("coach stream: dropping subscriber", "conversation_id", convID, "error", err)
			_ = conn.Close()
			delete(h.subs[convID], conn)
		}
	}
}
