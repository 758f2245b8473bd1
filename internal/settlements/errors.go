package settlements

import "errors"

var (
	// ErrInvalidAmount is returned when the offered amount is not positive
	ErrInvalidAmount = errors.New("offered_amount must be positive")

	// ErrOfferNotFound is returned when an offer is not found
	ErrOfferNotFound = errors.New("offer not found")
)
