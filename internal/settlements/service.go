package settlements

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/riverline/collections-platform/internal/borrowers"
	"github.com/riverline/collections-platform/pkg/logging"
)

// WhatsAppSender delivers outbound WhatsApp messages; implemented by
// the messaging package.
type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, to, body string) (sid string, err error)
}

// Service owns settlement recommendations and the offer lifecycle.
type Service struct {
	repo      Repository
	borrowers borrowers.Repository
	whatsapp  WhatsAppSender
	logger    *logging.Logger
	now       func() time.Time
}

// NewService wires the settlement flow. whatsapp may be nil, in which
// case offers are created without the outbound notification.
func NewService(repo Repository, borrowerRepo borrowers.Repository, whatsapp WhatsAppSender, logger *logging.Logger) *Service {
	return &Service{
		repo:      repo,
		borrowers: borrowerRepo,
		whatsapp:  whatsapp,
		logger:    logger,
		now:       time.Now,
	}
}

// Recommend computes the discount guidance for a borrower.
func (s *Service) Recommend(ctx context.Context, borrowerID string) (*Recommendation, error) {
	b, err := s.borrowers.GetByID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}

	dpd := borrowers.DaysPastDueAt(b, s.now())
	outstanding := Outstanding(b.TotalLoanAmount, b.EMIAmount, b.MonthsPaid)
	recommended, pct := RecommendAmount(dpd, outstanding)

	recoveredPct := 0
	if b.TotalLoanAmount > 0 {
		recoveredPct = int(float64(recommended)/float64(b.TotalLoanAmount)*100 + 0.5)
	}

	return &Recommendation{
		BorrowerID:        borrowerID,
		DPD:               dpd,
		Outstanding:       outstanding,
		RecommendedAmount: recommended,
		DiscountPct:       int((1-pct)*100 + 0.5),
		ROI:               ROI{RecoveredPct: recoveredPct, DaysToCash: 7},
	}, nil
}

// CreateOffer extends an offer, flags the borrower for the queue and
// notifies them on WhatsApp. The send result lands in the audit trail
// either way; a failed send never fails the offer.
func (s *Service) CreateOffer(ctx context.Context, borrowerID string, req *CreateOfferRequest) (*Offer, error) {
	if req.OfferedAmount <= 0 {
		return nil, ErrInvalidAmount
	}
	validDays := req.ValidDays
	if validDays <= 0 {
		validDays = 7
	}

	b, err := s.borrowers.GetByID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	offer, err := s.repo.Create(ctx, &Offer{
		BorrowerID:           b.ID,
		DPDAtOffer:           borrowers.DaysPastDueAt(b, now),
		PrincipalOutstanding: Outstanding(b.TotalLoanAmount, b.EMIAmount, b.MonthsPaid),
		RecommendedAmount:    req.OfferedAmount,
		OfferedAmount:        req.OfferedAmount,
		ValidUntil:           now.Add(time.Duration(validDays) * 24 * time.Hour),
		Notes:                req.Notes,
	})
	if err != nil {
		return nil, err
	}

	b.ActiveOffer = true
	if err := s.borrowers.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("settlements: borrower sync failed: %w", err)
	}

	if s.whatsapp != nil {
		body := fmt.Sprintf(
			"Hi %s, this is Riverline. We can settle your dues at %s if paid within %d days. Reply YES to confirm.",
			b.Name, FormatINR(req.OfferedAmount), validDays)

		if sid, err := s.whatsapp.SendWhatsApp(ctx, b.Phone, body); err != nil {
			s.logger.Error("offer whatsapp failed", "error", err, "offer_id", offer.ID)
			offer.Audit = append(offer.Audit, AuditEvent{Type: "WA_OFFER_FAILED", Error: err.Error(), At: now})
		} else {
			offer.Audit = append(offer.Audit, AuditEvent{Type: "WA_OFFER_SENT", Ref: sid, At: now})
		}
		if err := s.repo.Update(ctx, offer); err != nil {
			return nil, err
		}
	}

	s.logger.Info("settlement offer created", "offer_id", offer.ID,
		"borrower_id", b.ID, "amount", offer.OfferedAmount)
	return offer, nil
}

// Accept marks an offer accepted. Acceptance implies a payment promise,
// so the queue urgency dampens accordingly.
func (s *Service) Accept(ctx context.Context, id string) error {
	offer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	offer.Status = StatusAccepted
	offer.AcceptedAt = &now
	if err := s.repo.Update(ctx, offer); err != nil {
		return err
	}

	b, err := s.borrowers.GetByID(ctx, offer.BorrowerID)
	if err != nil {
		return err
	}
	b.ActiveOffer = false
	b.ActivePTP = true
	if err := s.borrowers.Update(ctx, b); err != nil {
		return fmt.Errorf("settlements: borrower sync failed: %w", err)
	}

	s.logger.Info("settlement offer accepted", "offer_id", id, "borrower_id", b.ID)
	return nil
}

// FormatINR renders whole rupees with Indian digit grouping, e.g.
// ₹1,20,000.
func FormatINR(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) > 3 {
		head := s[:len(s)-3]
		out := ""
		for len(head) > 2 {
			out = "," + head[len(head)-2:] + out
			head = head[:len(head)-2]
		}
		s = head + out + "," + s[len(s)-3:]
	}
	if neg {
		return "-₹" + s
	}
	return "₹" + s
}
