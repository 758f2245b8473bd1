package settlements

import "math"

// RecommendAmount applies the DPD-tiered discount schedule to the
// outstanding principal. Deeper delinquency earns a bigger discount
// because expected recovery decays faster than the haircut.
func RecommendAmount(dpd int, outstanding int64) (recommended int64, pct float64) {
	pct = 1.0
	switch {
	case dpd > 90:
		pct = 0.6
	case dpd > 60:
		pct = 0.75
	case dpd > 30:
		pct = 0.85
	}
	recommended = int64(math.Round(float64(outstanding) * pct))
	if recommended < 0 {
		recommended = 0
	}
	return recommended, pct
}

// Outstanding is the simple linear remaining principal, total less the
// EMIs already paid. Not an amortization schedule.
func Outstanding(total, emi int64, monthsPaid int) int64 {
	out := total - emi*int64(monthsPaid)
	if out < 0 {
		return 0
	}
	return out
}
