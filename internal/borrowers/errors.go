package borrowers

import "errors"

var (
	// ErrInvalidName is returned when the name is empty
	ErrInvalidName = errors.New("name is required")

	// ErrMissingPhone is returned when the phone number is empty
	ErrMissingPhone = errors.New("phone is required")

	// ErrUnsupportedLanguage is returned for a language outside en/hi/te/ta
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrInvalidRiskLevel is returned for a risk level outside low/medium/high
	ErrInvalidRiskLevel = errors.New("invalid risk level")

	// ErrInvalidAmount is returned when the EMI amount is not positive
	ErrInvalidAmount = errors.New("emi amount must be positive")

	// ErrBorrowerNotFound is returned when a borrower is not found
	ErrBorrowerNotFound = errors.New("borrower not found")
)
