package dialog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverline/collections-platform/internal/nlu"
)

var testNow = time.Date(2025, 11, 4, 11, 0, 0, 0, time.Local) // Tuesday

func borrower() BorrowerContext {
	return BorrowerContext{Name: "Ravi Kumar", Language: "en", AmountDue: 4500}
}

func turn(m *Machine, state State, text string, memory nlu.Entities) TurnResult {
	return m.NextTurn(TurnRequest{
		State:    state,
		Borrower: borrower(),
		Text:     text,
		Tone:     ToneNeutral,
		Memory:   memory,
		Now:      testNow,
	})
}

func TestContactAlwaysAdvancesToVerify(t *testing.T) {
	m := NewMachine()
	res := turn(m, StateContact, "", nlu.Entities{})
	assert.Equal(t, StateVerify, res.NextState)
	assert.Contains(t, res.Reply, "Ravi")
	assert.Equal(t, ActionNone, res.Action)
}

func TestVerifyRequiresConfirmation(t *testing.T) {
	m := NewMachine()

	for _, text := range []string{"yes", "haanji", "hello", "i agree"} {
		res := turn(m, StateVerify, text, nlu.Entities{})
		assert.Equal(t, StateIntent, res.NextState, "text %q", text)
	}

	// Anything else loops on VERIFY, without a retry limit.
	for _, text := range []string{"who is this", "wrong number", "", "cannot pay"} {
		res := turn(m, StateVerify, text, nlu.Entities{})
		assert.Equal(t, StateVerify, res.NextState, "text %q", text)
	}
}

func TestIntentAskDueRestatesAmount(t *testing.T) {
	m := NewMachine()
	res := turn(m, StateIntent, "how much is due", nlu.Entities{})
	assert.Equal(t, StateIntent, res.NextState)
	assert.Contains(t, res.Reply, "4500")
}

func TestIntentPTPWithDateAdvancesToPlan(t *testing.T) {
	m := NewMachine()
	res := turn(m, StateIntent, "i will pay ₹1200 next friday", nlu.Entities{})

	require.Equal(t, StatePlan, res.NextState)
	assert.Equal(t, ActionPTPPreview, res.Action)
	require.NotNil(t, res.Entities.Amount)
	assert.EqualValues(t, 1200, *res.Entities.Amount)
	require.NotNil(t, res.Entities.DueDate)
	assert.Equal(t, time.Friday, res.Entities.DueDate.Weekday())
	assert.Contains(t, res.Reply, "1200")
}

func TestIntentPayWithoutDateAsksForPlan(t *testing.T) {
	m := NewMachine()
	res := turn(m, StateIntent, "i want to pay", nlu.Entities{})
	assert.Equal(t, StateIntent, res.NextState)
	assert.Equal(t, ActionNone, res.Action)
}

func TestIntentHardshipMovesToPlanWithoutAction(t *testing.T) {
	m := NewMachine()
	res := turn(m, StateIntent, "i lost my job, cannot pay this month", nlu.Entities{})
	assert.Equal(t, StatePlan, res.NextState)
	assert.Equal(t, ActionNone, res.Action)
	assert.Contains(t, res.Reply, "smaller amount")
}

func TestIntentCallbackResolves(t *testing.T) {
	m := NewMachine()
	res := turn(m, StateIntent, "please call back tomorrow evening", nlu.Entities{})
	assert.Equal(t, StateResolve, res.NextState)
	assert.Equal(t, ActionScheduleCallback, res.Action)
}

func TestPlanConfirmWithRememberedEntitiesCreatesPTP(t *testing.T) {
	m := NewMachine()
	amount := int64(1500)
	due := time.Date(2025, 11, 14, 0, 0, 0, 0, time.Local)
	res := turn(m, StatePlan, "yes confirm", nlu.Entities{Amount: &amount, DueDate: &due})

	require.Equal(t, StateResolve, res.NextState)
	assert.Equal(t, ActionCreatePTP, res.Action)
	require.NotNil(t, res.Entities.Amount)
	assert.EqualValues(t, 1500, *res.Entities.Amount)
	require.NotNil(t, res.Entities.DueDate)
	assert.True(t, res.Entities.DueDate.Equal(due))
	assert.Contains(t, res.Reply, "14/11/2025")
}

func TestPlanConfirmWithoutDateAsksForDate(t *testing.T) {
	m := NewMachine()
	amount := int64(1500)
	res := turn(m, StatePlan, "yes", nlu.Entities{Amount: &amount})
	assert.Equal(t, StatePlan, res.NextState)
	assert.Equal(t, ActionNone, res.Action)
	assert.Contains(t, res.Reply, "date")
}

func TestPlanDefaultsAmountToDeclaredDue(t *testing.T) {
	m := NewMachine()
	due := time.Date(2025, 11, 20, 0, 0, 0, 0, time.Local)
	res := turn(m, StatePlan, "yes", nlu.Entities{DueDate: &due})

	require.Equal(t, StateResolve, res.NextState)
	require.NotNil(t, res.Entities.Amount)
	assert.EqualValues(t, 4500, *res.Entities.Amount)
}

func TestEntityMemoryIsMonotone(t *testing.T) {
	m := NewMachine()
	amount := int64(2000)

	// No new extraction: the remembered amount must carry forward.
	res := turn(m, StateIntent, "okay fine", nlu.Entities{Amount: &amount})
	require.NotNil(t, res.Entities.Amount)
	assert.EqualValues(t, 2000, *res.Entities.Amount)

	// A new extraction overwrites, never clears.
	res = turn(m, StateIntent, "make it ₹3000 tomorrow", nlu.Entities{Amount: &amount})
	require.NotNil(t, res.Entities.Amount)
	assert.EqualValues(t, 3000, *res.Entities.Amount)
}

func TestResolveEmitsClosingOnly(t *testing.T) {
	m := NewMachine()
	res := turn(m, StateResolve, "thanks", nlu.Entities{})
	assert.Equal(t, StateResolve, res.NextState)
	assert.Equal(t, ActionNone, res.Action)
	assert.NotEmpty(t, res.Reply)
}

func TestToneAndSentimentPrefixes(t *testing.T) {
	m := NewMachine()

	res := m.NextTurn(TurnRequest{
		State: StateIntent, Borrower: borrower(), Text: "big problem, no money",
		Tone: ToneNeutral, Now: testNow,
	})
	assert.True(t, strings.HasPrefix(res.Reply, "I understand. "), "negative sentiment should add empathy prefix: %q", res.Reply)

	res = m.NextTurn(TurnRequest{
		State: StateIntent, Borrower: borrower(), Text: "how much is due",
		Tone: ToneUrgent, Now: testNow,
	})
	assert.True(t, strings.HasPrefix(res.Reply, "Important: "), "urgent tone should add urgency prefix: %q", res.Reply)
}

func TestLocalizationFallsBackToEnglish(t *testing.T) {
	m := NewMachine()
	b := borrower()
	b.Language = "ta" // declared but has no template set
	res := m.NextTurn(TurnRequest{State: StateContact, Borrower: b, Now: testNow})
	assert.Contains(t, res.Reply, "Am I speaking to")
}

func TestHindiTemplateSelected(t *testing.T) {
	m := NewMachine()
	b := borrower()
	b.Language = "hi"
	res := m.NextTurn(TurnRequest{State: StateContact, Borrower: b, Now: testNow})
	assert.Contains(t, res.Reply, "क्या मैं")
}
