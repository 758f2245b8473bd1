package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/riverline/collections-platform/internal/borrowers"
	"github.com/riverline/collections-platform/pkg/logging"
)

// Service applies received payments to borrower accounts.
type Service struct {
	repo      Repository
	borrowers borrowers.Repository
	logger    *logging.Logger
}

// NewService wires the payment flow.
func NewService(repo Repository, borrowerRepo borrowers.Repository, logger *logging.Logger) *Service {
	return &Service{repo: repo, borrowers: borrowerRepo, logger: logger}
}

// Collect records a payment and, when it covers a full EMI, advances
// the due date to the first of the next month. Partial payments are
// recorded but do not advance the cycle.
func (s *Service) Collect(ctx context.Context, req *CollectRequest) (*CollectResult, error) {
	b, err := s.borrowers.GetByID(ctx, req.BorrowerID)
	if err != nil {
		return nil, err
	}

	amt := req.Amount
	if amt < 0 {
		amt = 0
	}

	if _, err := s.repo.Create(ctx, &Payment{
		BorrowerID: b.ID,
		Amount:     amt,
		At:         time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	applied := amt
	if applied > b.EMIAmount {
		applied = b.EMIAmount
	}

	if applied >= b.EMIAmount {
		b.MonthsPaid++
		b.NextDueDate = addMonthsKeepDayOne(b.NextDueDate, 1)
		if err := s.borrowers.Update(ctx, b); err != nil {
			return nil, fmt.Errorf("payments: borrower sync failed: %w", err)
		}
	}

	s.logger.Info("payment collected", "borrower_id", b.ID, "amount", amt, "applied", applied)

	return &CollectResult{
		OK:          true,
		Applied:     applied,
		NextDueDate: b.NextDueDate,
		MonthsPaid:  b.MonthsPaid,
	}, nil
}

// addMonthsKeepDayOne returns the first of the month n months after d.
// Anchoring to day one sidesteps Go's AddDate overflow on short months.
func addMonthsKeepDayOne(d time.Time, n int) time.Time {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
	return first.AddDate(0, n, 0)
}
