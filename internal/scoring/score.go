// Package scoring ranks borrower accounts into the daily priority
// queue. Scores are additive and deliberately explainable; every
// contribution maps to one account attribute an operator can see.
package scoring

import (
	"sort"
	"time"

	"github.com/riverline/collections-platform/internal/borrowers"
	"github.com/riverline/collections-platform/internal/compliance"
)

// LockedScore pushes locked or uncontactable accounts to the bottom of
// any ranking without removing them from the result set.
const LockedScore = -999

// QueueEntry is one ranked account.
type QueueEntry struct {
	Borrower      *borrowers.Borrower `json:"borrower"`
	DPD           int                 `json:"dpd"`
	PriorityScore int                 `json:"priority_score"`
}

// personaModifiers biases the ranking toward personas that need firmer
// or earlier handling.
var personaModifiers = map[string]int{
	"aggressive": 18,
	"avoider":    12,
	"friendly":   -5,
	"distressed": -8,
}

// Score computes the priority score and DPD for one account at the
// given instant. Accounts in safe mode, under legal escalation, or with
// an invalid number score LockedScore.
func Score(b *borrowers.Borrower, now time.Time) (dpd, score int) {
	dpd = borrowers.DaysPastDueAt(b, now)

	if b.Locked() || b.InvalidNumberFlag {
		return dpd, LockedScore
	}

	switch {
	case dpd > 90:
		score += 60
	case dpd > 60:
		score += 45
	case dpd > 30:
		score += 30
	case dpd > 0:
		score += 15
	}

	if b.BrokenPTPCount > 0 {
		penalty := 10 + 8*b.BrokenPTPCount
		if penalty > 35 {
			penalty = 35
		}
		score += penalty
	}
	if b.ActivePTP {
		score -= 15
	}
	if b.ActiveOffer {
		score -= 10
	}

	switch b.LastOutcome {
	case "no_answer":
		score += 8
	case "voicemail":
		score += 4
	case "busy":
		score += 2
	case "connected":
		score -= 5
	}

	score += personaModifiers[b.Persona]

	switch b.RiskLevel {
	case borrowers.RiskHigh:
		score += 6
	case borrowers.RiskMedium:
		score += 3
	}

	return dpd, score
}

// BuildQueue scores every account and returns them ranked best-first.
// Accounts with an obviously fake number are flagged for this run even
// if the flag was never persisted. The sort is stable, so equal scores
// keep their input order.
func BuildQueue(list []*borrowers.Borrower, now time.Time) []QueueEntry {
	entries := make([]QueueEntry, 0, len(list))
	for _, b := range list {
		cp := *b
		if !cp.InvalidNumberFlag {
			cp.InvalidNumberFlag = compliance.DetectFakeNumber(cp.Phone)
		}
		dpd, score := Score(&cp, now)
		entries = append(entries, QueueEntry{Borrower: &cp, DPD: dpd, PriorityScore: score})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PriorityScore > entries[j].PriorityScore
	})
	return entries
}
