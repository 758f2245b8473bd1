package settlements

import "time"

// Offer statuses.
const (
	StatusOffered  = "OFFERED"
	StatusAccepted = "ACCEPTED"
	StatusExpired  = "EXPIRED"
	StatusRejected = "REJECTED"
)

// AuditEvent is one entry in an offer's audit trail, typically the
// outcome of an outbound message.
type AuditEvent struct {
	Type  string    `json:"type"`
	Ref   string    `json:"ref,omitempty"`
	Error string    `json:"error,omitempty"`
	At    time.Time `json:"at"`
}

// Offer is a settlement offer extended to a borrower.
type Offer struct {
	ID                   string       `json:"id"`
	BorrowerID           string       `json:"borrower_id"`
	DPDAtOffer           int          `json:"dpd_at_offer"`
	PrincipalOutstanding int64        `json:"principal_outstanding"`
	RecommendedAmount    int64        `json:"recommended_amount"`
	OfferedAmount        int64        `json:"offered_amount"`
	Status               string       `json:"status"`
	ValidUntil           time.Time    `json:"valid_until"`
	AcceptedAt           *time.Time   `json:"accepted_at,omitempty"`
	Notes                string       `json:"notes,omitempty"`
	Audit                []AuditEvent `json:"audit"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

// Recommendation is the discount guidance for one account.
type Recommendation struct {
	BorrowerID        string `json:"borrower_id"`
	DPD               int    `json:"dpd"`
	Outstanding       int64  `json:"outstanding"`
	RecommendedAmount int64  `json:"recommended_amount"`
	DiscountPct       int    `json:"discount_pct"`
	ROI               ROI    `json:"roi"`
}

// ROI frames the recommendation for an operator.
type ROI struct {
	RecoveredPct int `json:"recovered_pct"`
	DaysToCash   int `json:"days_to_cash"`
}

// CreateOfferRequest is the payload for extending an offer.
type CreateOfferRequest struct {
	OfferedAmount int64  `json:"offered_amount"`
	ValidDays     int    `json:"valid_days"`
	Notes         string `json:"notes"`
}
