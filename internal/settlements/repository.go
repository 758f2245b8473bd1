package settlements

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for settlement offer storage
type Repository interface {
	Create(ctx context.Context, o *Offer) (*Offer, error)
	GetByID(ctx context.Context, id string) (*Offer, error)
	List(ctx context.Context) ([]*Offer, error)
	ListByBorrower(ctx context.Context, borrowerID string) ([]*Offer, error)
	Update(ctx context.Context, o *Offer) error
}

// InMemoryRepository keeps offers in memory for tests and local runs.
type InMemoryRepository struct {
	mu     sync.RWMutex
	offers map[string]*Offer
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{offers: make(map[string]*Offer)}
}

// Create stores a new offer, assigning identity and timestamps.
func (r *InMemoryRepository) Create(ctx context.Context, o *Offer) (*Offer, error) {
	now := time.Now().UTC()
	cp := *o
	cp.ID = uuid.New().String()
	cp.Status = StatusOffered
	cp.CreatedAt = now
	cp.UpdatedAt = now
	if cp.Audit == nil {
		cp.Audit = []AuditEvent{}
	}

	r.mu.Lock()
	r.offers[cp.ID] = &cp
	r.mu.Unlock()

	out := cp
	return &out, nil
}

// GetByID retrieves an offer by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.offers[id]
	if !ok {
		return nil, ErrOfferNotFound
	}
	cp := *o
	return &cp, nil
}

// List returns every offer, newest first.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(*Offer) bool { return true }), nil
}

// ListByBorrower returns a borrower's offers, newest first.
func (r *InMemoryRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]*Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(o *Offer) bool { return o.BorrowerID == borrowerID }), nil
}

// Update writes back a modified offer.
func (r *InMemoryRepository) Update(ctx context.Context, o *Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.offers[o.ID]; !ok {
		return ErrOfferNotFound
	}
	cp := *o
	cp.UpdatedAt = time.Now().UTC()
	r.offers[o.ID] = &cp
	return nil
}

func (r *InMemoryRepository) collect(keep func(*Offer) bool) []*Offer {
	var out []*Offer
	for _, o := range r.offers {
		if keep(o) {
			cp := *o
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
