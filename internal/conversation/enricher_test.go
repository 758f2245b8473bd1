package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverline/collections-platform/internal/dialog"
	"github.com/riverline/collections-platform/pkg/logging"
)

type stubLLM struct {
	mu    sync.Mutex
	reply string
	err   error
	seen  []LLMRequest
}

func (s *stubLLM) Complete(_ context.Context, req LLMRequest) (LLMResponse, error) {
	s.mu.Lock()
	s.seen = append(s.seen, req)
	s.mu.Unlock()
	if s.err != nil {
		return LLMResponse{}, s.err
	}
	return LLMResponse{Text: s.reply, StopReason: "stop"}, nil
}

func (s *stubLLM) calls() []LLMRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LLMRequest(nil), s.seen...)
}

func seedConversation(t *testing.T, store Store) *Conversation {
	t.Helper()
	conv := &Conversation{
		BorrowerID: "b-1",
		Channel:    ChannelVoice,
		State:      dialog.StateIntent,
		Tone:       dialog.ToneNeutral,
	}
	conv.addTurn(RoleAgent, "Am I speaking to Ravi?", "en", time.Now())
	conv.addTurn(RoleBorrower, "yes but money is tight", "en", time.Now())
	require.NoError(t, store.Create(context.Background(), conv))
	return conv
}

func TestEnricherPatchesSuggestion(t *testing.T) {
	store := NewInMemoryStore()
	conv := seedConversation(t, store)
	llm := &stubLLM{reply: "I hear you. Could a smaller amount this week work?"}
	enricher := NewEnricher(NewMemoryQueue(4), store, llm, logging.New("debug"))

	require.NoError(t, enricher.Enqueue(context.Background(), conv, "money is tight", "What amount and date work for you?"))

	ctx, cancel := context.WithCancel(context.Background())
	enricher.Run(ctx, 1)

	require.Eventually(t, func() bool {
		got, err := store.GetByID(context.Background(), conv.ID)
		return err == nil && got.Coaching.LLMSuggestion != ""
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	enricher.Wait()

	got, err := store.GetByID(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Equal(t, llm.reply, got.Coaching.LLMSuggestion)

	calls := llm.calls()
	require.Len(t, calls, 1)
	prompt := calls[0].Messages[0].Content
	assert.Contains(t, prompt, "money is tight")
	assert.Contains(t, prompt, "What amount and date work for you?")
	assert.True(t, strings.Contains(calls[0].System[0], "Promise-to-Pay"))
}

type recordingListener struct {
	mu    sync.Mutex
	convs []*Conversation
}

func (r *recordingListener) ConversationUpdated(conv *Conversation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.convs = append(r.convs, conv)
}

func (r *recordingListener) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.convs)
}

func TestEnricherNotifiesListener(t *testing.T) {
	store := NewInMemoryStore()
	conv := seedConversation(t, store)
	llm := &stubLLM{reply: "Would paying half now and half next week help?"}
	enricher := NewEnricher(NewMemoryQueue(4), store, llm, logging.New("debug"))
	listener := &recordingListener{}
	enricher.SetTurnListener(listener)

	require.NoError(t, enricher.Enqueue(context.Background(), conv, "money is tight", "What amount works?"))

	ctx, cancel := context.WithCancel(context.Background())
	enricher.Run(ctx, 1)

	require.Eventually(t, func() bool {
		return listener.count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	enricher.Wait()

	listener.mu.Lock()
	defer listener.mu.Unlock()
	assert.Equal(t, llm.reply, listener.convs[0].Coaching.LLMSuggestion)
}

func TestEnricherSurvivesLLMFailure(t *testing.T) {
	store := NewInMemoryStore()
	conv := seedConversation(t, store)
	llm := &stubLLM{err: errors.New("model unavailable")}
	enricher := NewEnricher(NewMemoryQueue(4), store, llm, logging.New("debug"))

	require.NoError(t, enricher.Enqueue(context.Background(), conv, "hello", "hi"))

	ctx, cancel := context.WithCancel(context.Background())
	enricher.Run(ctx, 1)

	require.Eventually(t, func() bool {
		return len(llm.calls()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	enricher.Wait()

	got, err := store.GetByID(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Coaching.LLMSuggestion)
}

func TestNilEnricherEnqueueIsNoop(t *testing.T) {
	var enricher *Enricher
	assert.NoError(t, enricher.Enqueue(context.Background(), &Conversation{}, "a", "b"))
}

func TestEnqueueWithoutLLMIsNoop(t *testing.T) {
	store := NewInMemoryStore()
	queue := NewMemoryQueue(1)
	enricher := NewEnricher(queue, store, nil, nil)

	require.NoError(t, enricher.Enqueue(context.Background(), &Conversation{ID: "c-1"}, "a", "b"))

	msgs, err := queue.Receive(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
