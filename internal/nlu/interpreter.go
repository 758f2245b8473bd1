// Package nlu interprets borrower utterances: intent, monetary amount,
// due date, and sentiment. Understanding is ordered keyword/regex
// matching over mixed English, Hindi, and Telugu transliterations, not
// a statistical model; precedence between rules is part of the
// contract and must not be reordered.
package nlu

import (
	"strings"
	"time"
)

// Entities holds the two negotiation slots extracted from text. A nil
// field means the slot could not be resolved.
type Entities struct {
	Amount  *int64     `json:"amount"`
	DueDate *time.Time `json:"due_date"`
}

// Result is the full interpretation of one utterance.
type Result struct {
	Intent    Intent    `json:"intent"`
	Entities  Entities  `json:"entities"`
	Sentiment Sentiment `json:"sentiment"`
}

// Interpret classifies text using the current wall clock for relative
// date resolution. The language is the borrower's declared language; it
// is advisory only, since the lexicons cover all supported languages at
// once and code-switching mid-sentence is common.
func Interpret(text, language string) Result {
	return InterpretAt(text, language, time.Now())
}

// InterpretAt is Interpret with an explicit reference time.
func InterpretAt(text, language string, now time.Time) Result {
	t := strings.ToLower(strings.TrimSpace(text))

	intent := IntentUnknown
	for _, rule := range intentRules {
		if rule.re.MatchString(t) {
			intent = rule.intent
			break
		}
	}

	entities := Entities{
		Amount:  extractAmount(t),
		DueDate: extractDueDate(t, now),
	}

	return Result{
		Intent:    effectiveIntent(intent, entities),
		Entities:  entities,
		Sentiment: scoreSentiment(t),
	}
}

// effectiveIntent folds a payment-ish raw intent plus extracted slots
// into the composite PTP_INTENT that downstream dialogue logic keys on.
// An utterance that carries both slots ("₹1200 next Friday") is a
// promise even when no payment keyword classified.
func effectiveIntent(raw Intent, e Entities) Intent {
	payish := raw == IntentPay || raw == IntentConfirm || raw == IntentPayLater
	if payish && (e.Amount != nil || e.DueDate != nil) {
		return IntentPTP
	}
	if raw == IntentUnknown && e.Amount != nil && e.DueDate != nil {
		return IntentPTP
	}
	return raw
}
