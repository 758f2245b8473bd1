package conversation

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/riverline/collections-platform/internal/borrowers"
	"github.com/riverline/collections-platform/internal/coaching"
	"github.com/riverline/collections-platform/internal/compliance"
	"github.com/riverline/collections-platform/internal/dialog"
	"github.com/riverline/collections-platform/internal/observability/metrics"
	"github.com/riverline/collections-platform/internal/promises"
	"github.com/riverline/collections-platform/pkg/logging"
)

// Tone experiment: half of new conversations get the urgent register so
// resolution rates can be compared across the two groups.
const experimentToneUrgent = "tone_urgent_test"

// safetyResponse closes a call after abusive language, verbatim in
// English regardless of the borrower's declared language.
const safetyResponse = "I've detected abusive language. To protect our agents, this call will be locked. Please contact support."

const defaultPromiseDays = 7

// PromiseRecorder is the slice of the promise service the conversation
// flow needs when a commitment materializes mid-call.
type PromiseRecorder interface {
	Record(ctx context.Context, req *promises.CreatePromiseRequest) (*promises.Promise, error)
}

// TurnListener receives a snapshot of a conversation after every
// persisted turn. Implementations must not block.
type TurnListener interface {
	ConversationUpdated(conv *Conversation)
}

// Service drives conversations end to end: session lifecycle, dialogue
// turns, safety interrupts, coaching, and promise side effects.
type Service struct {
	store     Store
	borrowers borrowers.Repository
	promises  PromiseRecorder
	machine   *dialog.Machine
	enricher  *Enricher
	metrics   *metrics.CollectionsMetrics
	listener  TurnListener
	logger    *logging.Logger

	now  func() time.Time
	roll func() float64
}

// SetMetrics attaches Prometheus instrumentation. Optional; the
// service runs unobserved otherwise.
func (s *Service) SetMetrics(m *metrics.CollectionsMetrics) {
	s.metrics = m
}

// SetTurnListener attaches a live observer of persisted turns, such as
// the agent-console coaching stream. Optional.
func (s *Service) SetTurnListener(l TurnListener) {
	s.listener = l
}

func (s *Service) notifyListener(conv *Conversation) {
	if s.listener == nil {
		return
	}
	s.listener.ConversationUpdated(conv)
}

// NewService wires a conversation service. The enricher may be nil.
func NewService(store Store, borrowerRepo borrowers.Repository, recorder PromiseRecorder, enricher *Enricher, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:     store,
		borrowers: borrowerRepo,
		promises:  recorder,
		machine:   dialog.NewMachine(),
		enricher:  enricher,
		logger:    logger,
		now:       time.Now,
		roll:      rand.Float64,
	}
}

// Start opens a conversation and speaks the localized greeting.
func (s *Service) Start(ctx context.Context, req *StartRequest) (*Conversation, error) {
	b, err := s.borrowers.GetByID(ctx, req.BorrowerID)
	if err != nil {
		return nil, err
	}
	if b.Locked() {
		return nil, ErrBorrowerLocked
	}

	channel := req.Channel
	if channel == "" {
		channel = ChannelVoice
	}
	tone := req.Tone
	if tone == "" {
		tone = dialog.ToneNeutral
	}

	var experiments []string
	if s.roll() < 0.5 {
		experiments = append(experiments, experimentToneUrgent)
		tone = dialog.ToneUrgent
	}

	now := s.now()
	conv := &Conversation{
		BorrowerID:  b.ID,
		Channel:     channel,
		State:       dialog.StateContact,
		Tone:        tone,
		Experiments: experiments,
	}

	result := s.machine.NextTurn(dialog.TurnRequest{
		State:    dialog.StateContact,
		Borrower: borrowerContext(b),
		Text:     "",
		Tone:     tone,
		Now:      now,
	})
	conv.State = result.NextState
	conv.Entities = result.Entities
	conv.addTurn(RoleAgent, result.Reply, b.Language, now)
	conv.addAudit(AuditConvStart, map[string]any{
		"channel":     channel,
		"tone":        tone,
		"experiments": experiments,
	}, now)

	if err := s.store.Create(ctx, conv); err != nil {
		return nil, err
	}
	s.logger.Info("conversation started",
		"conversation_id", conv.ID,
		"borrower_id", b.ID,
		"channel", channel,
		"tone", tone,
	)
	return conv, nil
}

// Utterance processes one borrower utterance and returns the updated
// conversation carrying the agent's reply as its last turn.
func (s *Service) Utterance(ctx context.Context, req *UtterRequest) (*Conversation, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrMissingText
	}

	conv, err := s.store.GetByID(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}
	b, err := s.borrowers.GetByID(ctx, conv.BorrowerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	conv.addTurn(RoleBorrower, req.Text, b.Language, now)

	if compliance.DetectAbuse(req.Text) {
		return s.lockForAbuse(ctx, conv, b, req.Text, now)
	}

	result := s.machine.NextTurn(dialog.TurnRequest{
		State:    conv.State,
		Borrower: borrowerContext(b),
		Text:     req.Text,
		Tone:     conv.Tone,
		Memory:   conv.Entities,
		Now:      now,
	})

	conv.State = result.NextState
	conv.Entities = result.Entities

	advice := coaching.Advise(req.Text)
	advice.LLMSuggestion = conv.Coaching.LLMSuggestion
	conv.Coaching = advice

	conv.addTurn(RoleAgent, result.Reply, b.Language, now)

	if result.Action == dialog.ActionCreatePTP {
		if err := s.createPromise(ctx, conv, b, now, ""); err != nil {
			return nil, err
		}
	}

	if err := s.store.Update(ctx, conv); err != nil {
		return nil, err
	}
	s.metrics.ObserveTurn(string(conv.Channel), string(conv.State))
	s.notifyListener(conv)

	if err := s.enricher.Enqueue(ctx, conv, req.Text, result.Reply); err != nil {
		s.logger.Error("enrichment enqueue failed", "error", err, "conversation_id", conv.ID)
	}
	return conv, nil
}

func (s *Service) lockForAbuse(ctx context.Context, conv *Conversation, b *borrowers.Borrower, text string, now time.Time) (*Conversation, error) {
	b.SafeModeFlag = true
	if err := s.borrowers.Update(ctx, b); err != nil {
		return nil, err
	}

	conv.addAudit(AuditAbuseDetected, map[string]any{"text": strings.ToLower(text)}, now)
	conv.addTurn(RoleAgent, safetyResponse, "en", now)
	conv.State = dialog.StateEnd

	if err := s.store.Update(ctx, conv); err != nil {
		return nil, err
	}
	s.logger.Warn("abusive language detected, borrower locked",
		"conversation_id", conv.ID,
		"borrower_id", b.ID,
	)
	s.notifyListener(conv)
	return conv, nil
}

// createPromise records a commitment with declared-entity fallbacks:
// the EMI when no amount was stated, a week out when no date was.
func (s *Service) createPromise(ctx context.Context, conv *Conversation, b *borrowers.Borrower, now time.Time, callSid string) error {
	amount := b.EMIAmount
	if conv.Entities.Amount != nil {
		amount = *conv.Entities.Amount
	}
	due := now.AddDate(0, 0, defaultPromiseDays)
	if conv.Entities.DueDate != nil {
		due = *conv.Entities.DueDate
	}

	if _, err := s.promises.Record(ctx, &promises.CreatePromiseRequest{
		BorrowerID: b.ID,
		Amount:     amount,
		DueDate:    due,
	}); err != nil {
		return fmt.Errorf("conversation: promise creation failed: %w", err)
	}

	data := map[string]any{"amount": amount, "due_date": due}
	if callSid != "" {
		data["call_sid"] = callSid
	}
	conv.addAudit(AuditPTPCreated, data, now)
	s.logger.Info("promise created from conversation",
		"conversation_id", conv.ID,
		"borrower_id", b.ID,
		"amount", amount,
	)
	return nil
}

// Get fetches one conversation.
func (s *Service) Get(ctx context.Context, id string) (*Conversation, error) {
	return s.store.GetByID(ctx, id)
}

// SetOutcome records how the contact ended, on the conversation and on
// the borrower's last_outcome signal.
func (s *Service) SetOutcome(ctx context.Context, req *OutcomeRequest) error {
	conv, err := s.store.GetByID(ctx, req.ConversationID)
	if err != nil {
		return err
	}
	conv.Outcome = req.Outcome
	if err := s.store.Update(ctx, conv); err != nil {
		return err
	}

	b, err := s.borrowers.GetByID(ctx, conv.BorrowerID)
	if err != nil {
		return err
	}
	b.LastOutcome = req.Outcome
	return s.borrowers.Update(ctx, b)
}

// ScheduleFollowup stamps the next contact time on the conversation.
func (s *Service) ScheduleFollowup(ctx context.Context, req *FollowupRequest) error {
	conv, err := s.store.GetByID(ctx, req.ConversationID)
	if err != nil {
		return err
	}
	when := req.When
	conv.FollowUpAt = &when
	return s.store.Update(ctx, conv)
}

// Summary renders a short call summary from turns and audit.
func (s *Service) Summary(ctx context.Context, id string) (string, error) {
	conv, err := s.store.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	lines := []string{
		fmt.Sprintf("Channel: %s • Tone: %s", conv.Channel, conv.Tone),
	}
	if says := conv.RecentBorrowerTexts(3); len(says) > 0 {
		lines = append(lines, fmt.Sprintf("Borrower said: “%s”", strings.Join(says, "” | “")))
	}
	lines = append(lines, fmt.Sprintf("Agent final: “%s”", conv.LastAgentText()))
	if conv.HasAudit(AuditPTPCreated) {
		lines = append(lines, "Outcome: Promise-to-Pay created.")
	}
	if conv.HasAudit(AuditWhatsAppSent) {
		lines = append(lines, "Follow-up: WhatsApp confirmation sent.")
	}
	return strings.Join(lines, "\n"), nil
}

func borrowerContext(b *borrowers.Borrower) dialog.BorrowerContext {
	return dialog.BorrowerContext{
		Name:      b.Name,
		Language:  b.Language,
		AmountDue: b.AmountDue,
	}
}
