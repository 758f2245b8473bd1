package borrowers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for borrower storage
type Repository interface {
	Create(ctx context.Context, req *CreateBorrowerRequest) (*Borrower, error)
	GetByID(ctx context.Context, id string) (*Borrower, error)
	GetByPhone(ctx context.Context, phone string) (*Borrower, error)
	List(ctx context.Context) ([]*Borrower, error)
	Update(ctx context.Context, b *Borrower) error
}

// InMemoryRepository is an in-memory Repository used by tests and by
// local runs without a database.
type InMemoryRepository struct {
	mu        sync.RWMutex
	borrowers map[string]*Borrower
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		borrowers: make(map[string]*Borrower),
	}
}

// Create onboards a new borrower in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateBorrowerRequest) (*Borrower, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b := &Borrower{
		ID:               uuid.New().String(),
		Name:             req.Name,
		Phone:            req.Phone,
		Language:         req.Language,
		TotalLoanAmount:  req.TotalLoanAmount,
		EMIAmount:        req.EMIAmount,
		NextDueDate:      req.NextDueDate,
		LoanTenureMonths: req.LoanTenureMonths,
		MonthsPaid:       req.MonthsPaid,
		AmountDue:        req.AmountDue,
		MinSettlementPct: req.MinSettlementPct,
		RiskLevel:        req.RiskLevel,
		Persona:          "neutral",
		Segments:         req.Segments,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	r.mu.Lock()
	r.borrowers[b.ID] = b
	r.mu.Unlock()

	return b, nil
}

// GetByID retrieves a borrower by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Borrower, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.borrowers[id]
	if !ok {
		return nil, ErrBorrowerNotFound
	}
	cp := *b
	return &cp, nil
}

// GetByPhone retrieves a borrower by the 10-digit phone the record was
// onboarded with.
func (r *InMemoryRepository) GetByPhone(ctx context.Context, phone string) (*Borrower, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.borrowers {
		if b.Phone == phone {
			cp := *b
			return &cp, nil
		}
	}
	return nil, ErrBorrowerNotFound
}

// List returns all borrowers ordered by creation time.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Borrower, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Borrower, 0, len(r.borrowers))
	for _, b := range r.borrowers {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Update persists a modified borrower record.
func (r *InMemoryRepository) Update(ctx context.Context, b *Borrower) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.borrowers[b.ID]; !ok {
		return ErrBorrowerNotFound
	}
	cp := *b
	cp.UpdatedAt = time.Now().UTC()
	r.borrowers[b.ID] = &cp
	return nil
}
