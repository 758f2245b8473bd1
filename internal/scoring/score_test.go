package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverline/collections-platform/internal/borrowers"
)

var scoreNow = time.Date(2025, 11, 4, 12, 0, 0, 0, time.Local)

func dueDaysAgo(days int) time.Time {
	return time.Date(2025, 11, 4, 0, 0, 0, 0, time.Local).AddDate(0, 0, -days)
}

func TestScoreWorkedExample(t *testing.T) {
	// 45 DPD (+30), one broken promise (+18), last call unanswered (+8),
	// distressed persona (-8), medium risk (+3).
	b := &borrowers.Borrower{
		Phone:          "9876501234",
		NextDueDate:    dueDaysAgo(45),
		BrokenPTPCount: 1,
		LastOutcome:    "no_answer",
		Persona:        "distressed",
		RiskLevel:      borrowers.RiskMedium,
	}
	dpd, score := Score(b, scoreNow)
	assert.Equal(t, 45, dpd)
	assert.Equal(t, 51, score)
}

func TestScoreDPDBands(t *testing.T) {
	for _, tt := range []struct {
		days int
		want int
	}{
		{0, 0}, {1, 15}, {30, 15}, {31, 30}, {60, 30}, {61, 45}, {90, 45}, {91, 60}, {120, 60},
	} {
		b := &borrowers.Borrower{Phone: "9876501234", NextDueDate: dueDaysAgo(tt.days), RiskLevel: borrowers.RiskLow}
		_, score := Score(b, scoreNow)
		assert.Equal(t, tt.want, score, "dpd %d", tt.days)
	}
}

func TestScoreBrokenPromisePenaltyCaps(t *testing.T) {
	b := &borrowers.Borrower{Phone: "9876501234", RiskLevel: borrowers.RiskLow}

	b.BrokenPTPCount = 1
	_, score := Score(b, scoreNow)
	assert.Equal(t, 18, score)

	b.BrokenPTPCount = 3
	_, score = Score(b, scoreNow)
	assert.Equal(t, 34, score)

	// 10 + 8*4 = 42 clamps to 35.
	b.BrokenPTPCount = 4
	_, score = Score(b, scoreNow)
	assert.Equal(t, 35, score)
}

func TestScoreActiveCommitmentsReduce(t *testing.T) {
	b := &borrowers.Borrower{
		Phone:       "9876501234",
		NextDueDate: dueDaysAgo(45),
		ActivePTP:   true,
		ActiveOffer: true,
		RiskLevel:   borrowers.RiskLow,
	}
	_, score := Score(b, scoreNow)
	assert.Equal(t, 5, score) // 30 - 15 - 10
}

func TestLockedAccountsScoreSentinel(t *testing.T) {
	for _, mutate := range []func(*borrowers.Borrower){
		func(b *borrowers.Borrower) { b.SafeModeFlag = true },
		func(b *borrowers.Borrower) { b.LegalEscalationFlag = true },
		func(b *borrowers.Borrower) { b.InvalidNumberFlag = true },
	} {
		b := &borrowers.Borrower{Phone: "9876501234", NextDueDate: dueDaysAgo(100), RiskLevel: borrowers.RiskHigh}
		mutate(b)
		dpd, score := Score(b, scoreNow)
		assert.Equal(t, 100, dpd, "dpd still reported for locked accounts")
		assert.Equal(t, LockedScore, score)
	}
}

func TestBuildQueueRanksAndFlagsFakes(t *testing.T) {
	high := &borrowers.Borrower{ID: "high", Phone: "9876501234", NextDueDate: dueDaysAgo(95), RiskLevel: borrowers.RiskHigh}
	low := &borrowers.Borrower{ID: "low", Phone: "9876501235", RiskLevel: borrowers.RiskLow, ActivePTP: true}
	fake := &borrowers.Borrower{ID: "fake", Phone: "9999999999", NextDueDate: dueDaysAgo(95), RiskLevel: borrowers.RiskHigh}

	queue := BuildQueue([]*borrowers.Borrower{low, fake, high}, scoreNow)
	require.Len(t, queue, 3)

	assert.Equal(t, "high", queue[0].Borrower.ID)
	assert.Equal(t, "low", queue[1].Borrower.ID)
	assert.Equal(t, "fake", queue[2].Borrower.ID)
	assert.Equal(t, LockedScore, queue[2].PriorityScore)
	assert.True(t, queue[2].Borrower.InvalidNumberFlag)

	// The input record itself stays untouched.
	assert.False(t, fake.InvalidNumberFlag)
}

func TestBuildQueueStableForEqualScores(t *testing.T) {
	a := &borrowers.Borrower{ID: "a", Phone: "9876501234", RiskLevel: borrowers.RiskLow}
	b := &borrowers.Borrower{ID: "b", Phone: "9876501235", RiskLevel: borrowers.RiskLow}
	queue := BuildQueue([]*borrowers.Borrower{a, b}, scoreNow)
	require.Len(t, queue, 2)
	assert.Equal(t, "a", queue[0].Borrower.ID)
	assert.Equal(t, "b", queue[1].Borrower.ID)
}
