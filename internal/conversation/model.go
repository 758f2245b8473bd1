// Package conversation owns the live negotiation session: turn history,
// dialogue state, audit trail, agent coaching, and the async LLM
// enrichment that upgrades coaching after the fast reply has gone out.
package conversation

import (
	"time"

	"github.com/riverline/collections-platform/internal/coaching"
	"github.com/riverline/collections-platform/internal/dialog"
	"github.com/riverline/collections-platform/internal/nlu"
)

// Channel is how the borrower is being reached.
type Channel string

const (
	ChannelVoice    Channel = "voice"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelEmail    Channel = "email"
)

// Turn roles.
const (
	RoleBorrower = "borrower"
	RoleAgent    = "agent"
)

// Turn is one utterance, borrower or agent.
type Turn struct {
	Role     string    `json:"role"`
	Text     string    `json:"text"`
	Language string    `json:"language"`
	At       time.Time `json:"at"`
}

// Audit event types recorded on a conversation.
const (
	AuditConvStart     = "CONV_START"
	AuditAbuseDetected = "ABUSE_DETECTED"
	AuditPTPCreated    = "PTP_CREATED"
	AuditWhatsAppSent  = "WHATSAPP_CONFIRM_SENT"
	AuditCallStart     = "TWILIO_CALL_START"
	AuditCallEnd       = "TWILIO_CALL_END"
)

// AuditEvent is one entry in the conversation's append-only audit trail.
type AuditEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
	At   time.Time      `json:"at"`
}

// Conversation is a single negotiation session with one borrower.
type Conversation struct {
	ID          string          `json:"id"`
	BorrowerID  string          `json:"borrower_id"`
	Channel     Channel         `json:"channel"`
	State       dialog.State    `json:"state"`
	Entities    nlu.Entities    `json:"entities"`
	Turns       []Turn          `json:"turns"`
	Audit       []AuditEvent    `json:"audit"`
	Tone        dialog.Tone     `json:"tone"`
	Outcome     string          `json:"outcome,omitempty"`
	FollowUpAt  *time.Time      `json:"follow_up_at,omitempty"`
	Coaching    coaching.Advice `json:"coaching"`
	Experiments []string        `json:"experiments"`
	CallSid     string          `json:"call_sid,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (c *Conversation) addTurn(role, text, language string, at time.Time) {
	c.Turns = append(c.Turns, Turn{Role: role, Text: text, Language: language, At: at})
}

func (c *Conversation) addAudit(eventType string, data map[string]any, at time.Time) {
	c.Audit = append(c.Audit, AuditEvent{Type: eventType, Data: data, At: at})
}

// HasAudit reports whether any audit entry of the given type exists.
func (c *Conversation) HasAudit(eventType string) bool {
	for _, e := range c.Audit {
		if e.Type == eventType {
			return true
		}
	}
	return false
}

// LastAgentText returns the most recent agent utterance, or "".
func (c *Conversation) LastAgentText() string {
	for i := len(c.Turns) - 1; i >= 0; i-- {
		if c.Turns[i].Role == RoleAgent {
			return c.Turns[i].Text
		}
	}
	return ""
}

// RecentBorrowerTexts returns up to n of the latest borrower
// utterances in chronological order.
func (c *Conversation) RecentBorrowerTexts(n int) []string {
	var texts []string
	for _, t := range c.Turns {
		if t.Role == RoleBorrower {
			texts = append(texts, t.Text)
		}
	}
	if len(texts) > n {
		texts = texts[len(texts)-n:]
	}
	return texts
}

// Closed reports whether the dialogue can accept no further turns.
func (c *Conversation) Closed() bool {
	return c.State == dialog.StateResolve || c.State == dialog.StateEnd
}

// StartRequest opens a conversation.
type StartRequest struct {
	BorrowerID string      `json:"borrower_id"`
	Channel    Channel     `json:"channel"`
	Tone       dialog.Tone `json:"tone"`
}

// UtterRequest feeds one borrower utterance into a conversation.
type UtterRequest struct {
	ConversationID string `json:"conv_id"`
	Text           string `json:"text"`
}

// OutcomeRequest records how the contact attempt ended.
type OutcomeRequest struct {
	ConversationID string `json:"conv_id"`
	Outcome        string `json:"outcome"`
}

// FollowupRequest schedules the next touch.
type FollowupRequest struct {
	ConversationID string    `json:"conv_id"`
	When           time.Time `json:"when"`
}
