package promises

import "errors"

var (
	// ErrMissingBorrower is returned when the borrower id is empty
	ErrMissingBorrower = errors.New("borrower_id is required")

	// ErrInvalidAmount is returned when the promised amount is not positive
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrMissingDueDate is returned when the due date is unset
	ErrMissingDueDate = errors.New("due_date is required")

	// ErrPromiseNotFound is returned when a promise is not found
	ErrPromiseNotFound = errors.New("promise not found")
)
