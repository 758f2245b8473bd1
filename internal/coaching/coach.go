// Package coaching produces real-time agent guidance from the latest
// borrower utterance. It is intentionally lexical and fast; richer
// suggestions arrive asynchronously from the enrichment worker and are
// merged by the conversation service.
package coaching

import (
	"regexp"
	"strings"
)

// Advice is the per-turn coaching annotation attached to a conversation.
type Advice struct {
	Sentiment     string   `json:"sentiment"`
	Noise         float64  `json:"noise"`
	Tips          []string `json:"tips"`
	LLMSuggestion string   `json:"llm_suggestion,omitempty"`
}

// The coaching sentiment lexicon is narrower than the one the
// interpreter uses; the two are tuned independently and must not be
// unified.
var coachNegative = []string{
	"problem", "issue", "cant", "cannot", "nahi", "broke",
	"hardship", "late", "later", "angry",
}

var coachPositive = []string{
	"ok", "yes", "haan", "sure", "confirm", "pay", "payment", "done",
}

var (
	ellipsisRE = regexp.MustCompile(`\.\.\.`)
	fillerRE   = regexp.MustCompile(`\b(uh|um|hmm)\b`)
	duesAskRE  = regexp.MustCompile(`how much|due`)
)

// Advise analyzes one lowercased borrower utterance. Each tip fires
// independently, so zero to three tips can apply to the same turn.
func Advise(text string) Advice {
	text = strings.ToLower(text)

	a := Advice{
		Sentiment: sentiment(text),
		Noise:     noiseScore(text),
		Tips:      []string{},
	}
	if a.Sentiment == "negative" {
		a.Tips = append(a.Tips, "Acknowledge hardship and slow down tone.")
	}
	if a.Noise > 0.5 {
		a.Tips = append(a.Tips, "Line noisy — repeat key info and confirm details.")
	}
	if duesAskRE.MatchString(text) {
		a.Tips = append(a.Tips, "Answer dues clearly then ask for commitment (amount + date).")
	}
	return a
}

func sentiment(text string) string {
	score := 0
	for _, w := range coachNegative {
		if strings.Contains(text, w) {
			score--
		}
	}
	for _, w := range coachPositive {
		if strings.Contains(text, w) {
			score++
		}
	}
	switch {
	case score > 0:
		return "positive"
	case score < 0:
		return "negative"
	default:
		return "neutral"
	}
}

// noiseScore counts ellipses and filler words, saturating at 1.0 once
// five markers appear in a single utterance.
func noiseScore(text string) float64 {
	n := len(ellipsisRE.FindAllString(text, -1)) + len(fillerRE.FindAllString(text, -1))
	score := float64(n) / 5
	if score > 1 {
		return 1
	}
	return score
}
