package promises

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for promise storage
type Repository interface {
	Create(ctx context.Context, req *CreatePromiseRequest) (*Promise, error)
	GetByID(ctx context.Context, id string) (*Promise, error)
	List(ctx context.Context) ([]*Promise, error)
	ListByBorrower(ctx context.Context, borrowerID string) ([]*Promise, error)
	UpdateStatus(ctx context.Context, id, status string) (*Promise, error)
	HasOpen(ctx context.Context, borrowerID string) (bool, error)
	StatsForBorrower(ctx context.Context, borrowerID string) (kept, broken int, err error)
}

// InMemoryRepository keeps promises in memory for tests and local runs.
type InMemoryRepository struct {
	mu       sync.RWMutex
	promises map[string]*Promise
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{promises: make(map[string]*Promise)}
}

// Create records a new open promise
func (r *InMemoryRepository) Create(ctx context.Context, req *CreatePromiseRequest) (*Promise, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &Promise{
		ID:         uuid.New().String(),
		BorrowerID: req.BorrowerID,
		Amount:     req.Amount,
		DueDate:    req.DueDate,
		Status:     StatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	r.mu.Lock()
	r.promises[p.ID] = p
	r.mu.Unlock()

	return p, nil
}

// GetByID retrieves a promise by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Promise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.promises[id]
	if !ok {
		return nil, ErrPromiseNotFound
	}
	cp := *p
	return &cp, nil
}

// List returns every promise, newest first.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Promise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(*Promise) bool { return true }), nil
}

// ListByBorrower returns a borrower's promises, newest first.
func (r *InMemoryRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]*Promise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(p *Promise) bool { return p.BorrowerID == borrowerID }), nil
}

// UpdateStatus transitions a promise and returns the updated record.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id, status string) (*Promise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.promises[id]
	if !ok {
		return nil, ErrPromiseNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

// HasOpen reports whether the borrower still has an open promise.
func (r *InMemoryRepository) HasOpen(ctx context.Context, borrowerID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.promises {
		if p.BorrowerID == borrowerID && p.Status == StatusOpen {
			return true, nil
		}
	}
	return false, nil
}

// StatsForBorrower counts kept and broken promises.
func (r *InMemoryRepository) StatsForBorrower(ctx context.Context, borrowerID string) (int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kept, broken := 0, 0
	for _, p := range r.promises {
		if p.BorrowerID != borrowerID {
			continue
		}
		switch p.Status {
		case StatusKept:
			kept++
		case StatusBroken:
			broken++
		}
	}
	return kept, broken, nil
}

func (r *InMemoryRepository) collect(keep func(*Promise) bool) []*Promise {
	var out []*Promise
	for _, p := range r.promises {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
