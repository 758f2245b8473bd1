package conversation

import "errors"

var (
	// ErrConversationNotFound is returned when the conversation id does
	// not exist.
	ErrConversationNotFound = errors.New("conversation: conversation not found")

	// ErrBorrowerLocked is returned when a start is attempted on a
	// borrower whose account is in safe mode or legal escalation.
	ErrBorrowerLocked = errors.New("conversation: call locked for this borrower")

	// ErrMissingText is returned when an utterance carries no text.
	ErrMissingText = errors.New("conversation: text is required")
)
