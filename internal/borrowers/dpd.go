package borrowers

import "time"

// DaysPastDue returns whole days elapsed since the next due date,
// measured at local midnight so a payment is never "past due" on the
// due date itself.
func DaysPastDue(b *Borrower) int {
	return DaysPastDueAt(b, time.Now())
}

// DaysPastDueAt computes DPD against an explicit reference instant.
func DaysPastDueAt(b *Borrower, today time.Time) int {
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	due := b.NextDueDate
	if !t.After(due) {
		return 0
	}
	days := int(t.Sub(due).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
