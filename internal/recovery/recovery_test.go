package recovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPTPReliability(t *testing.T) {
	assert.Equal(t, 0.5, PTPReliability(0, 0))
	assert.Equal(t, 0.75, PTPReliability(3, 1))
	assert.Equal(t, 0.0, PTPReliability(0, 4))
}

func TestOfferAcceptProb(t *testing.T) {
	assert.InDelta(t, 0.15, OfferAcceptProb(0, false), 1e-9)
	assert.InDelta(t, 0.3, OfferAcceptProb(45, false), 1e-9)
	assert.InDelta(t, 0.4, OfferAcceptProb(75, false), 1e-9)
	assert.InDelta(t, 0.5, OfferAcceptProb(120, false), 1e-9)
	assert.InDelta(t, 0.6, OfferAcceptProb(120, true), 1e-9)
}

func TestEngagementScoreClamps(t *testing.T) {
	assert.InDelta(t, 0.5, EngagementScore(nil), 1e-9)
	assert.InDelta(t, 0.65, EngagementScore([]string{"connected"}), 1e-9)
	assert.InDelta(t, 0.35, EngagementScore([]string{"no_answer", "busy"}), 1e-9)

	many := make([]string, 10)
	for i := range many {
		many[i] = "connected"
	}
	assert.Equal(t, 1.0, EngagementScore(many))

	for i := range many {
		many[i] = "no_answer"
	}
	assert.Equal(t, 0.0, EngagementScore(many))
}

func TestExpectedRecoveryZeroOutstanding(t *testing.T) {
	est := ExpectedRecovery(Inputs{Outstanding: 0, EMI: 5000, DPD: 30})
	assert.Zero(t, est.Exp7)
	assert.Zero(t, est.Exp30)
}

func TestExpectedRecoveryCumulative(t *testing.T) {
	est := ExpectedRecovery(Inputs{
		Outstanding: 50000,
		EMI:         5000,
		DPD:         45,
		KeptRate:    0.6,
		AcceptProb:  0.3,
		Engagement:  0.5,
	})
	assert.Greater(t, est.Exp7, int64(0))
	assert.Greater(t, est.Exp30, est.Exp7)
	// 7 day slice can never exceed one EMI.
	assert.LessOrEqual(t, est.Exp7, int64(5000))
}

func TestExpectedRecoveryMonotoneInKeptRate(t *testing.T) {
	base := Inputs{Outstanding: 50000, EMI: 5000, DPD: 45, AcceptProb: 0.3, Engagement: 0.5}

	prev := Estimate{}
	for _, kr := range []float64{0, 0.25, 0.5, 0.75, 1} {
		in := base
		in.KeptRate = kr
		est := ExpectedRecovery(in)
		assert.GreaterOrEqual(t, est.Exp7, prev.Exp7, "kept rate %v", kr)
		assert.GreaterOrEqual(t, est.Exp30, prev.Exp30, "kept rate %v", kr)
		prev = est
	}
}

func TestBestContactTime(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		ist = time.FixedZone("IST", 5*3600+1800)
	}

	at := func(hour int) time.Time {
		return time.Date(2025, 11, 3, hour, 15, 0, 0, ist)
	}

	// No history recommends the evening slot.
	assert.Equal(t, 19, BestContactTime(nil, ist).Hour)

	// Most-connected hour wins.
	w := BestContactTime([]time.Time{at(10), at(14), at(14)}, ist)
	assert.Equal(t, 14, w.Hour)
	assert.Equal(t, "14:00–15:00", w.Window)

	// Early-morning connections clamp into the regulatory window.
	assert.Equal(t, 8, BestContactTime([]time.Time{at(6), at(6)}, ist).Hour)

	// Late-night connections clamp down to 19.
	assert.Equal(t, 19, BestContactTime([]time.Time{at(22), at(22)}, ist).Hour)
}

func TestChannelMix(t *testing.T) {
	assert.Equal(t, []string{"voice", "whatsapp"}, ChannelMix(nil))
	assert.Equal(t, []string{"whatsapp", "sms", "voice"},
		ChannelMix([]string{"no_answer", "connected", "no_answer"}))
	assert.Equal(t, []string{"whatsapp", "voice"},
		ChannelMix([]string{"voicemail", "voicemail"}))
	// No-answer rule takes precedence when both trip.
	assert.Equal(t, []string{"whatsapp", "sms", "voice"},
		ChannelMix([]string{"no_answer", "no_answer", "voicemail", "voicemail"}))
}
