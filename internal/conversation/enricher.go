package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riverline/collections-platform/internal/observability/metrics"
	"github.com/riverline/collections-platform/pkg/logging"
)

const (
	enricherSystemPrompt = "You are an expert collections agent for Riverline, an AI-first bank. " +
		"Your goal is to secure a Promise-to-Pay while being empathetic and compliant. " +
		"Refine the default reply to be more persuasive, empathetic, and natural. " +
		"If the default reply is good, repeat it. " +
		"Do not suggest any amounts or dates not already mentioned. " +
		"Keep the reply to one or two sentences."

	enricherMaxTokens   = 120
	enricherTemperature = 0.5
	enricherHistory     = 4

	enricherWaitSeconds = 2
	enricherBatchSize   = 5
)

// Enricher upgrades coaching with an LLM reply suggestion after the
// fast rule-based reply has already been sent. Enqueue never blocks the
// request path on the model; workers patch the stored conversation when
// the suggestion arrives.
type Enricher struct {
	queue    queueClient
	store    Store
	llm      LLMClient
	metrics  *metrics.CollectionsMetrics
	listener TurnListener
	logger   *logging.Logger

	wg sync.WaitGroup
}

// SetMetrics attaches Prometheus instrumentation. Optional.
func (e *Enricher) SetMetrics(m *metrics.CollectionsMetrics) {
	e.metrics = m
}

// SetTurnListener streams patched conversations to a live observer,
// so agent consoles see the suggestion when it lands. Set before Run.
func (e *Enricher) SetTurnListener(l TurnListener) {
	e.listener = l
}

// NewEnricher wires an enricher. A nil LLM client disables enrichment;
// Enqueue becomes a no-op so callers never need to branch.
func NewEnricher(queue queueClient, store Store, llm LLMClient, logger *logging.Logger) *Enricher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Enricher{queue: queue, store: store, llm: llm, logger: logger}
}

// Enqueue publishes an enrichment job for the latest turn.
func (e *Enricher) Enqueue(ctx context.Context, conv *Conversation, borrowerText, defaultReply string) error {
	if e == nil || e.llm == nil {
		return nil
	}

	var history []string
	turns := conv.Turns
	if len(turns) > enricherHistory {
		turns = turns[len(turns)-enricherHistory:]
	}
	for _, t := range turns {
		history = append(history, t.Role+": "+t.Text)
	}

	_, body, err := encodeJob(enrichmentJob{
		ConversationID: conv.ID,
		State:          string(conv.State),
		BorrowerText:   borrowerText,
		DefaultReply:   defaultReply,
		History:        history,
	})
	if err != nil {
		return err
	}
	if err := e.queue.Send(ctx, body); err != nil {
		return fmt.Errorf("conversation: failed to enqueue enrichment: %w", err)
	}
	return nil
}

// Run consumes enrichment jobs until ctx is cancelled.
func (e *Enricher) Run(ctx context.Context, workers int) {
	if e.llm == nil {
		return
	}
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.loop(ctx)
		}()
	}
}

// Wait blocks until all workers have exited.
func (e *Enricher) Wait() {
	e.wg.Wait()
}

func (e *Enricher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		messages, err := e.queue.Receive(ctx, enricherBatchSize, enricherWaitSeconds)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			e.logger.Error("enrichment receive failed", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, msg := range messages {
			if err := e.process(ctx, msg.Body); err != nil {
				e.metrics.ObserveEnrichment("failed")
				e.logger.Error("enrichment job failed", "error", err, "message_id", msg.ID)
			} else {
				e.metrics.ObserveEnrichment("ok")
			}
			if err := e.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
				e.logger.Error("enrichment delete failed", "error", err, "message_id", msg.ID)
			}
		}
	}
}

func (e *Enricher) process(ctx context.Context, body string) error {
	var job enrichmentJob
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		return fmt.Errorf("conversation: failed to decode enrichment job: %w", err)
	}

	prompt := fmt.Sprintf(
		"Current conversation state: %s\nBorrower's last message: %q\nYour default reply is: %q\n\nConversation history:\n%s\n\nRefined reply:",
		job.State, job.BorrowerText, job.DefaultReply, strings.Join(job.History, "\n"),
	)

	resp, err := e.llm.Complete(ctx, LLMRequest{
		System:      []string{enricherSystemPrompt},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens:   enricherMaxTokens,
		Temperature: enricherTemperature,
	})
	if err != nil {
		return fmt.Errorf("conversation: llm completion failed: %w", err)
	}

	suggestion := strings.TrimSpace(resp.Text)
	if suggestion == "" {
		return nil
	}

	conv, err := e.store.GetByID(ctx, job.ConversationID)
	if err != nil {
		return err
	}
	conv.Coaching.LLMSuggestion = suggestion
	if err := e.store.Update(ctx, conv); err != nil {
		return err
	}
	if e.listener != nil {
		e.listener.ConversationUpdated(conv)
	}

	e.logger.Info("coaching enriched", "conversation_id", job.ConversationID)
	return nil
}
