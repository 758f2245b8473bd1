package payments

import "time"

// Payment is one received payment, recorded as-is before EMI
// application logic runs.
type Payment struct {
	ID         string    `json:"id"`
	BorrowerID string    `json:"borrower_id"`
	Amount     int64     `json:"amount"`
	At         time.Time `json:"at"`
	CreatedAt  time.Time `json:"created_at"`
}

// CollectRequest is the payload for posting a payment.
type CollectRequest struct {
	BorrowerID string `json:"borrower_id"`
	Amount     int64  `json:"amount"`
}

// CollectResult reports how the payment was applied.
type CollectResult struct {
	OK          bool      `json:"ok"`
	Applied     int64     `json:"applied"`
	NextDueDate time.Time `json:"next_due_date"`
	MonthsPaid  int       `json:"months_paid"`
}
