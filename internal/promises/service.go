package promises

import (
	"context"
	"fmt"

	"github.com/riverline/collections-platform/internal/borrowers"
	"github.com/riverline/collections-platform/internal/observability/metrics"
	"github.com/riverline/collections-platform/internal/scoring"
	"github.com/riverline/collections-platform/pkg/logging"
)

// Three broken promises moves the account to the legal track and out of
// the dialer queue.
const legalEscalationThreshold = 3

// Service owns the promise lifecycle and keeps the borrower's cached
// queue signals (active_ptp, broken counter, escalation flag) in sync.
type Service struct {
	repo      Repository
	borrowers borrowers.Repository
	cache     *scoring.QueueCache
	metrics   *metrics.CollectionsMetrics
	logger    *logging.Logger
}

// SetMetrics attaches Prometheus instrumentation. Optional.
func (s *Service) SetMetrics(m *metrics.CollectionsMetrics) {
	s.metrics = m
}

// NewService wires the promise lifecycle. cache may be nil.
func NewService(repo Repository, borrowerRepo borrowers.Repository, cache *scoring.QueueCache, logger *logging.Logger) *Service {
	return &Service{
		repo:      repo,
		borrowers: borrowerRepo,
		cache:     cache,
		logger:    logger,
	}
}

// Record creates an open promise and marks the borrower as committed.
func (s *Service) Record(ctx context.Context, req *CreatePromiseRequest) (*Promise, error) {
	b, err := s.borrowers.GetByID(ctx, req.BorrowerID)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	b.ActivePTP = true
	if err := s.borrowers.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("promises: borrower sync failed: %w", err)
	}

	s.invalidateQueue(ctx)
	s.metrics.ObservePromise(StatusOpen)
	s.logger.Info("promise recorded", "promise_id", p.ID, "borrower_id", b.ID,
		"amount", p.Amount, "due_date", p.DueDate.Format("2006-01-02"))
	return p, nil
}

// MarkKept resolves a promise as honored.
func (s *Service) MarkKept(ctx context.Context, id string) error {
	p, err := s.repo.UpdateStatus(ctx, id, StatusKept)
	if err != nil {
		return err
	}
	if err := s.syncActiveFlag(ctx, p.BorrowerID, nil); err != nil {
		return err
	}
	s.invalidateQueue(ctx)
	s.metrics.ObservePromise(StatusKept)
	s.logger.Info("promise kept", "promise_id", id, "borrower_id", p.BorrowerID)
	return nil
}

// MarkBroken resolves a promise as broken, bumps the borrower's penalty
// counter and escalates to legal once the threshold is crossed.
func (s *Service) MarkBroken(ctx context.Context, id string) error {
	p, err := s.repo.UpdateStatus(ctx, id, StatusBroken)
	if err != nil {
		return err
	}

	escalated := false
	err = s.syncActiveFlag(ctx, p.BorrowerID, func(b *borrowers.Borrower) {
		b.BrokenPTPCount++
		if b.BrokenPTPCount >= legalEscalationThreshold {
			b.LegalEscalationFlag = true
			escalated = true
		}
	})
	if err != nil {
		return err
	}

	s.invalidateQueue(ctx)
	s.metrics.ObservePromise(StatusBroken)
	if escalated {
		s.logger.Warn("legal escalation triggered", "borrower_id", p.BorrowerID)
	}
	s.logger.Info("promise broken", "promise_id", id, "borrower_id", p.BorrowerID)
	return nil
}

// Cancel voids an open promise without penalty.
func (s *Service) Cancel(ctx context.Context, id string) error {
	p, err := s.repo.UpdateStatus(ctx, id, StatusCancelled)
	if err != nil {
		return err
	}
	if err := s.syncActiveFlag(ctx, p.BorrowerID, nil); err != nil {
		return err
	}
	s.invalidateQueue(ctx)
	return nil
}

// syncActiveFlag recomputes active_ptp from open promises and applies
// an optional extra mutation in the same write.
func (s *Service) syncActiveFlag(ctx context.Context, borrowerID string, mutate func(*borrowers.Borrower)) error {
	b, err := s.borrowers.GetByID(ctx, borrowerID)
	if err != nil {
		return err
	}
	open, err := s.repo.HasOpen(ctx, borrowerID)
	if err != nil {
		return err
	}
	b.ActivePTP = open
	if mutate != nil {
		mutate(b)
	}
	if err := s.borrowers.Update(ctx, b); err != nil {
		return fmt.Errorf("promises: borrower sync failed: %w", err)
	}
	return nil
}

func (s *Service) invalidateQueue(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Error("failed to invalidate queue cache", "error", err)
	}
}
