package payments

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrPaymentNotFound is returned when a payment is not found
var ErrPaymentNotFound = errors.New("payment not found")

// Repository defines the interface for payment storage
type Repository interface {
	Create(ctx context.Context, p *Payment) (*Payment, error)
	ListByBorrower(ctx context.Context, borrowerID string) ([]*Payment, error)
}

// InMemoryRepository keeps payments in memory for tests and local runs.
type InMemoryRepository struct {
	mu       sync.RWMutex
	payments map[string]*Payment
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{payments: make(map[string]*Payment)}
}

// Create records a payment
func (r *InMemoryRepository) Create(ctx context.Context, p *Payment) (*Payment, error) {
	cp := *p
	cp.ID = uuid.New().String()
	cp.CreatedAt = time.Now().UTC()
	if cp.At.IsZero() {
		cp.At = cp.CreatedAt
	}

	r.mu.Lock()
	r.payments[cp.ID] = &cp
	r.mu.Unlock()

	out := cp
	return &out, nil
}

// ListByBorrower returns a borrower's payments, newest first.
func (r *InMemoryRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]*Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Payment
	for _, p := range r.payments {
		if p.BorrowerID == borrowerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	return out, nil
}
