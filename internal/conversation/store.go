package conversation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists conversations.
type Store interface {
	Create(ctx context.Context, c *Conversation) error
	GetByID(ctx context.Context, id string) (*Conversation, error)
	Update(ctx context.Context, c *Conversation) error
	// ListByBorrower returns conversations newest first, at most limit
	// when limit > 0.
	ListByBorrower(ctx context.Context, borrowerID string, limit int) ([]*Conversation, error)
	// ListAll returns every conversation, newest first. Feeds the
	// operations dashboard and reporting aggregates.
	ListAll(ctx context.Context) ([]*Conversation, error)
	// FindByCallSid returns the conversation bound to a voice call, or
	// ErrConversationNotFound.
	FindByCallSid(ctx context.Context, callSid string) (*Conversation, error)
	// RecentOutcomes returns the latest non-empty outcomes, newest
	// first. Implements the borrower persona's outcome source.
	RecentOutcomes(ctx context.Context, borrowerID string, limit int) ([]string, error)
}

// InMemoryStore is a Store for tests and local runs.
type InMemoryStore struct {
	mu    sync.RWMutex
	convs map[string]*Conversation
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{convs: make(map[string]*Conversation)}
}

func (s *InMemoryStore) Create(_ context.Context, c *Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	stored := *c
	s.convs[c.ID] = &stored
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.convs[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *InMemoryStore) Update(_ context.Context, c *Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.convs[c.ID]; !ok {
		return ErrConversationNotFound
	}
	c.UpdatedAt = time.Now()
	stored := *c
	s.convs[c.ID] = &stored
	return nil
}

func (s *InMemoryStore) ListByBorrower(_ context.Context, borrowerID string, limit int) ([]*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Conversation
	for _, c := range s.convs {
		if c.BorrowerID == borrowerID {
			copied := *c
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) ListAll(_ context.Context) ([]*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Conversation, 0, len(s.convs))
	for _, c := range s.convs {
		copied := *c
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *InMemoryStore) FindByCallSid(_ context.Context, callSid string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.convs {
		if c.CallSid != "" && c.CallSid == callSid {
			copied := *c
			return &copied, nil
		}
	}
	return nil, ErrConversationNotFound
}

func (s *InMemoryStore) RecentOutcomes(ctx context.Context, borrowerID string, limit int) ([]string, error) {
	convs, err := s.ListByBorrower(ctx, borrowerID, 0)
	if err != nil {
		return nil, err
	}
	var outcomes []string
	for _, c := range convs {
		if c.Outcome == "" {
			continue
		}
		outcomes = append(outcomes, c.Outcome)
		if limit > 0 && len(outcomes) == limit {
			break
		}
	}
	return outcomes, nil
}
