package borrowers

import (
	"strings"
	"time"
)

// Risk levels assigned at onboarding.
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Borrower is the full account record the dialer and the priority
// queue operate on. Monetary amounts are whole rupees.
type Borrower struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Language string `json:"language"`

	TotalLoanAmount  int64     `json:"total_loan_amount"`
	EMIAmount        int64     `json:"emi_amount"`
	NextDueDate      time.Time `json:"next_due_date"`
	LoanTenureMonths int       `json:"loan_tenure_months"`
	MonthsPaid       int       `json:"months_paid"`

	AmountDue        int64  `json:"amount_due"`
	MinSettlementPct int    `json:"min_settlement_pct"`
	HardshipFlag     bool   `json:"hardship_flag"`
	DisputeFlag      bool   `json:"dispute_flag"`
	RiskLevel        string `json:"risk_level"`

	Persona        string `json:"persona"`
	ActivePTP      bool   `json:"active_ptp"`
	ActiveOffer    bool   `json:"active_offer"`
	BrokenPTPCount int    `json:"broken_ptp"`
	LastOutcome    string `json:"last_outcome,omitempty"`

	SafeModeFlag        bool `json:"safe_mode_flag"`
	InvalidNumberFlag   bool `json:"invalid_number_flag"`
	LegalEscalationFlag bool `json:"legal_escalation_flag"`

	Segments []string `json:"segments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Locked reports whether the account is out of the active queue:
// abuse safe mode or legal escalation.
func (b *Borrower) Locked() bool {
	return b.SafeModeFlag || b.LegalEscalationFlag
}

// CreateBorrowerRequest is the payload for onboarding an account.
type CreateBorrowerRequest struct {
	Name             string    `json:"name"`
	Phone            string    `json:"phone"`
	Language         string    `json:"language"`
	TotalLoanAmount  int64     `json:"total_loan_amount"`
	EMIAmount        int64     `json:"emi_amount"`
	NextDueDate      time.Time `json:"next_due_date"`
	LoanTenureMonths int       `json:"loan_tenure_months"`
	MonthsPaid       int       `json:"months_paid"`
	AmountDue        int64     `json:"amount_due"`
	MinSettlementPct int       `json:"min_settlement_pct"`
	RiskLevel        string    `json:"risk_level"`
	Segments         []string  `json:"segments"`
}

// Validate checks the required onboarding fields and defaults the rest.
func (r *CreateBorrowerRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.Phone) == "" {
		return ErrMissingPhone
	}
	switch r.Language {
	case "":
		r.Language = "en"
	case "en", "hi", "te", "ta":
	default:
		return ErrUnsupportedLanguage
	}
	switch r.RiskLevel {
	case "":
		r.RiskLevel = RiskMedium
	case RiskLow, RiskMedium, RiskHigh:
	default:
		return ErrInvalidRiskLevel
	}
	if r.EMIAmount <= 0 {
		return ErrInvalidAmount
	}
	if r.MinSettlementPct == 0 {
		r.MinSettlementPct = 50
	}
	return nil
}

// FlagsUpdate carries the operator-editable flags; nil means unchanged.
type FlagsUpdate struct {
	Hardship *bool `json:"hardship"`
	Dispute  *bool `json:"dispute"`
}
