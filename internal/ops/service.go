// Package ops exposes the operational surface for collections agents
// and supervisors: the prioritized dialing queue, recovery analytics,
// compliance checks, outbound call initiation, and reporting.
package ops

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/riverline/collections-platform/internal/borrowers"
	"github.com/riverline/collections-platform/internal/compliance"
	"github.com/riverline/collections-platform/internal/conversation"
	"github.com/riverline/collections-platform/internal/messaging"
	"github.com/riverline/collections-platform/internal/observability/metrics"
	"github.com/riverline/collections-platform/internal/promises"
	"github.com/riverline/collections-platform/internal/recovery"
	"github.com/riverline/collections-platform/internal/scoring"
	"github.com/riverline/collections-platform/internal/settlements"
	"github.com/riverline/collections-platform/pkg/logging"
)

var (
	// ErrCallLocked is returned when dialing a borrower in safe mode or
	// legal escalation.
	ErrCallLocked = errors.New("ops: call locked for this borrower")

	// ErrWebhookNotConfigured is returned when the voice webhook base
	// URL is missing or not publicly reachable.
	ErrWebhookNotConfigured = errors.New("ops: webhook base URL is not configured to a public HTTPS URL")
)

var httpURLRE = regexp.MustCompile(`(?i)^https?://`)

const todayQueueLimit = 20

// recoveryHistoryDepth bounds how far back the behavioral inputs look.
const recoveryHistoryDepth = 15

// Service aggregates the feature stores into operator-facing views.
type Service struct {
	borrowers borrowers.Repository
	promises  promises.Repository
	offers    settlements.Repository
	convs     conversation.Store
	cache     *scoring.QueueCache
	caller    messaging.Sender
	window    compliance.CallWindow

	webhookBaseURL string
	metrics        *metrics.CollectionsMetrics
	logger         *logging.Logger
	now            func() time.Time
}

// SetMetrics attaches Prometheus instrumentation. Optional.
func (s *Service) SetMetrics(m *metrics.CollectionsMetrics) {
	s.metrics = m
}

// SetCallWindow overrides the default RBI calling window.
func (s *Service) SetCallWindow(w compliance.CallWindow) {
	s.window = w
}

// NewService wires the ops service. The queue cache and caller may be
// nil; the corresponding operations degrade rather than fail.
func NewService(
	borrowerRepo borrowers.Repository,
	promiseRepo promises.Repository,
	offerRepo settlements.Repository,
	convStore conversation.Store,
	cache *scoring.QueueCache,
	caller messaging.Sender,
	webhookBaseURL string,
	logger *logging.Logger,
) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		borrowers:      borrowerRepo,
		promises:       promiseRepo,
		offers:         offerRepo,
		convs:          convStore,
		cache:          cache,
		caller:         caller,
		window:         compliance.DefaultCallWindow(),
		webhookBaseURL: webhookBaseURL,
		logger:         logger,
		now:            time.Now,
	}
}

// PriorityQueue returns every borrower ranked by collection priority.
// Served from cache when a fresh ranking is available.
func (s *Service) PriorityQueue(ctx context.Context) ([]scoring.QueueEntry, error) {
	if entries, ok, err := s.cache.Get(ctx); err != nil {
		s.logger.Error("queue cache read failed", "error", err)
	} else if ok {
		return entries, nil
	}

	list, err := s.borrowers.List(ctx)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	entries := scoring.BuildQueue(list, s.now())
	s.metrics.ObserveQueueBuild(time.Since(started).Seconds())

	if err := s.cache.Put(ctx, entries); err != nil {
		s.logger.Error("queue cache write failed", "error", err)
	}
	return entries, nil
}

// TodayQueue is the dialing worklist: the top of the priority queue.
func (s *Service) TodayQueue(ctx context.Context) ([]scoring.QueueEntry, error) {
	entries, err := s.PriorityQueue(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) > todayQueueLimit {
		entries = entries[:todayQueueLimit]
	}
	return entries, nil
}

// RecoveryReport is the per-borrower recovery outlook.
type RecoveryReport struct {
	Exp7     int64                  `json:"exp7"`
	Exp30    int64                  `json:"exp30"`
	KeptRate float64                `json:"keptRate"`
	Accept   float64                `json:"acceptProb"`
	Engage   float64                `json:"engage"`
	BestTime recovery.ContactWindow `json:"bestTime"`
	Channels []string               `json:"channels"`
}

// RecoveryForBorrower assembles the estimator inputs from promise and
// conversation history and returns the recovery outlook.
func (s *Service) RecoveryForBorrower(ctx context.Context, borrowerID string) (*RecoveryReport, error) {
	b, err := s.borrowers.GetByID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dpd := borrowers.DaysPastDueAt(b, now)

	kept, broken, err := s.promises.StatsForBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	keptRate := recovery.PTPReliability(kept, broken)

	convs, err := s.convs.ListByBorrower(ctx, borrowerID, recoveryHistoryDepth)
	if err != nil {
		return nil, err
	}
	var outcomes []string
	var connectedAt []time.Time
	for _, c := range convs {
		if c.Outcome == "" {
			continue
		}
		outcomes = append(outcomes, c.Outcome)
		if c.Outcome == "connected" {
			connectedAt = append(connectedAt, c.CreatedAt)
		}
	}

	engage := recovery.EngagementScore(outcomes)
	acceptProb := recovery.OfferAcceptProb(dpd, b.ActiveOffer)

	remainingMonths := b.LoanTenureMonths - b.MonthsPaid
	if remainingMonths < 0 {
		remainingMonths = 0
	}
	outstanding := int64(remainingMonths) * b.EMIAmount

	est := recovery.ExpectedRecovery(recovery.Inputs{
		Outstanding: outstanding,
		EMI:         b.EMIAmount,
		DPD:         dpd,
		KeptRate:    keptRate,
		AcceptProb:  acceptProb,
		Engagement:  engage,
	})

	return &RecoveryReport{
		Exp7:     est.Exp7,
		Exp30:    est.Exp30,
		KeptRate: keptRate,
		Accept:   acceptProb,
		Engage:   engage,
		BestTime: recovery.BestContactTime(connectedAt, s.window.Location),
		Channels: recovery.ChannelMix(outcomes),
	}, nil
}

// ComplianceCheck reports whether calling is allowed right now.
func (s *Service) ComplianceCheck() compliance.CheckResult {
	return s.window.Check(s.now())
}

// StartCall dials a borrower through the voice gateway, pointing the
// call at the conversation webhook.
func (s *Service) StartCall(ctx context.Context, borrowerID string) (string, error) {
	b, err := s.borrowers.GetByID(ctx, borrowerID)
	if err != nil {
		return "", err
	}
	if b.Locked() {
		return "", ErrCallLocked
	}

	base := s.webhookBaseURL
	if base == "" || !httpURLRE.MatchString(base) || strings.Contains(base, "localhost") {
		s.logger.Warn("webhook base URL not set for outbound calling", "base", base)
		return "", ErrWebhookNotConfigured
	}
	if s.caller == nil {
		return "", errors.New("ops: voice gateway not configured")
	}

	sid, err := s.caller.StartCall(ctx, b.Phone, fmt.Sprintf("%s/api/twilio/voice", strings.TrimRight(base, "/")))
	if err != nil {
		return "", err
	}
	s.logger.Info("outbound call initiated", "borrower_id", borrowerID, "sid", sid)
	return sid, nil
}
