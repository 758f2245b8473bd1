// Package persona buckets borrowers into behavioral archetypes used by
// the priority scorer and the talk-track selection.
package persona

// Persona labels, ordered roughly from most to least cooperative.
const (
	Friendly   = "friendly"
	Neutral    = "neutral"
	Distressed = "distressed"
	Avoider    = "avoider"
	Aggressive = "aggressive"
)

// Signals is the behavioral history a classification is based on.
type Signals struct {
	DPD            int
	KeptPromises   int
	BrokenPromises int
	CallOutcomes   []string
}

// KeptRate is the share of resolved promises that were honored. With no
// promise history at all it reports 0, which deliberately reads as
// "unproven" rather than "reliable".
func (s Signals) KeptRate() float64 {
	total := s.KeptPromises + s.BrokenPromises
	if total == 0 {
		return 0
	}
	return float64(s.KeptPromises) / float64(total)
}

func (s Signals) countOutcome(outcome string) int {
	n := 0
	for _, o := range s.CallOutcomes {
		if o == outcome {
			n++
		}
	}
	return n
}

// Classify applies the rules top to bottom; the first matching rule
// decides. A current borrower with a strong kept rate is friendly even
// if earlier contact attempts went unanswered.
func Classify(s Signals) string {
	switch {
	case s.DPD <= 0 && s.KeptRate() >= 0.75:
		return Friendly
	case s.DPD > 30 && s.countOutcome("no_answer") >= 2:
		return Avoider
	case s.BrokenPromises >= 2 || s.KeptRate() < 0.25:
		return Aggressive
	case s.DPD > 0 && s.KeptRate() < 0.5:
		return Distressed
	default:
		return Neutral
	}
}
