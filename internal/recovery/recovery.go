// Package recovery estimates expected cash recovery and recommends
// contact timing and channel mix for an account. All functions are
// pure; the ops layer assembles their inputs from storage.
package recovery

import (
	"fmt"
	"math"
	"time"
)

// Inputs is the behavioral snapshot the estimator works from.
type Inputs struct {
	Outstanding int64
	EMI         int64
	DPD         int
	KeptRate    float64
	AcceptProb  float64
	Engagement  float64
}

// Estimate is the expected recovery over the short and long horizon.
// Exp30 is cumulative, so it always includes Exp7's window.
type Estimate struct {
	Exp7  int64 `json:"exp_7d"`
	Exp30 int64 `json:"exp_30d"`
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// PTPReliability is the kept share of resolved promises. An account
// with no history sits at 0.5, unknown rather than unreliable.
func PTPReliability(kept, broken int) float64 {
	total := kept + broken
	if total == 0 {
		return 0.5
	}
	return float64(kept) / float64(total)
}

// OfferAcceptProb estimates how likely a settlement offer is to land,
// rising with delinquency depth and with an offer already on the table.
// The result is clamped to [0.05, 0.9].
func OfferAcceptProb(dpd int, hasOffer bool) float64 {
	var base float64
	switch {
	case dpd > 90:
		base = 0.5
	case dpd > 60:
		base = 0.4
	case dpd > 30:
		base = 0.3
	default:
		base = 0.15
	}
	if hasOffer {
		base += 0.1
	}
	return math.Min(0.9, math.Max(0.05, base))
}

// EngagementScore maps recent call outcomes onto [0, 1]. Connected
// calls raise it, unanswered and busy calls lower it.
func EngagementScore(outcomes []string) float64 {
	score := 0.5
	for _, o := range outcomes {
		switch o {
		case "connected":
			score += 0.15
		case "no_answer":
			score -= 0.1
		case "busy":
			score -= 0.05
		}
	}
	return math.Max(0, math.Min(1, score))
}

// ExpectedRecovery blends reliability, offer acceptance, engagement and
// a DPD decay into expected cash over 7 and 30 days. The 7 day horizon
// is capped at one EMI, the incremental 30 day slice at two.
func ExpectedRecovery(in Inputs) Estimate {
	if in.Outstanding <= 0 {
		return Estimate{}
	}
	short := (0.35*in.KeptRate +
		0.25*in.AcceptProb +
		0.2*in.Engagement +
		0.2*sigmoid((30-float64(in.DPD))/20)) * float64(in.EMI)
	long := (0.25*in.KeptRate +
		0.35*in.AcceptProb +
		0.2*in.Engagement +
		0.2*sigmoid((60-float64(in.DPD))/30)) * math.Min(float64(in.Outstanding), 2*float64(in.EMI))

	return Estimate{
		Exp7:  int64(math.Round(short)),
		Exp30: int64(math.Round(short + long)),
	}
}

// ContactWindow is the recommended one-hour calling slot.
type ContactWindow struct {
	Hour   int    `json:"hour"`
	Window string `json:"window"`
}

// BestContactTime picks the hour bucket with the most past connected
// calls, evaluated in the given zone and clamped into 08:00 to 19:00 so
// the recommendation always fits the regulatory window. With no history
// it recommends the evening slot.
func BestContactTime(connectedAt []time.Time, loc *time.Location) ContactWindow {
	var buckets [24]int
	for _, ts := range connectedAt {
		buckets[ts.In(loc).Hour()]++
	}

	best := 19
	max := 0
	for hour, n := range buckets {
		if n > max {
			max = n
			best = hour
		}
	}
	if best < 8 {
		best = 8
	}
	if best > 19 {
		best = 19
	}
	return ContactWindow{
		Hour:   best,
		Window: fmt.Sprintf("%02d:00–%02d:00", best, best+1),
	}
}

// ChannelMix orders outreach channels by how the borrower has been
// answering. Repeated no-answers push messaging ahead of voice.
func ChannelMix(outcomes []string) []string {
	noAnswer, voicemail := 0, 0
	for _, o := range outcomes {
		switch o {
		case "no_answer":
			noAnswer++
		case "voicemail":
			voicemail++
		}
	}
	if noAnswer >= 2 {
		return []string{"whatsapp", "sms", "voice"}
	}
	if voicemail >= 2 {
		return []string{"whatsapp", "voice"}
	}
	return []string{"voice", "whatsapp"}
}
