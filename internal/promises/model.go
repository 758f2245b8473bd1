package promises

import "time"

// Promise statuses. PTP is the open state; the rest are terminal.
const (
	StatusOpen      = "PTP"
	StatusKept      = "KEPT"
	StatusBroken    = "BROKEN"
	StatusCancelled = "CANCELLED"
)

// Promise is one promise-to-pay commitment.
type Promise struct {
	ID         string    `json:"id"`
	BorrowerID string    `json:"borrower_id"`
	Amount     int64     `json:"amount"`
	DueDate    time.Time `json:"due_date"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreatePromiseRequest is the payload for recording a new commitment.
type CreatePromiseRequest struct {
	BorrowerID string    `json:"borrower_id"`
	Amount     int64     `json:"amount"`
	DueDate    time.Time `json:"due_date"`
}

// Validate checks the required fields.
func (r *CreatePromiseRequest) Validate() error {
	if r.BorrowerID == "" {
		return ErrMissingBorrower
	}
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	if r.DueDate.IsZero() {
		return ErrMissingDueDate
	}
	return nil
}
