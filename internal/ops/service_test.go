package ops

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverline/collections-platform/internal/borrowers"
	"github.com/riverline/collections-platform/internal/conversation"
	"github.com/riverline/collections-platform/internal/dialog"
	"github.com/riverline/collections-platform/internal/messaging"
	"github.com/riverline/collections-platform/internal/promises"
	"github.com/riverline/collections-platform/internal/settlements"
	"github.com/riverline/collections-platform/pkg/logging"
)

var opsNow = time.Date(2025, time.November, 4, 11, 0, 0, 0, time.UTC)

type opsFixture struct {
	service   *Service
	borrowers *borrowers.InMemoryRepository
	promises  *promises.InMemoryRepository
	offers    *settlements.InMemoryRepository
	convs     *conversation.InMemoryStore
	caller    *messaging.FakeSender
}

func newOpsFixture(t *testing.T, webhookBase string) *opsFixture {
	t.Helper()

	f := &opsFixture{
		borrowers: borrowers.NewInMemoryRepository(),
		promises:  promises.NewInMemoryRepository(),
		offers:    settlements.NewInMemoryRepository(),
		convs:     conversation.NewInMemoryStore(),
		caller:    messaging.NewFakeSender(),
	}
	f.service = NewService(f.borrowers, f.promises, f.offers, f.convs, nil, f.caller, webhookBase, logging.New("debug"))
	f.service.now = func() time.Time { return opsNow }
	return f
}

func (f *opsFixture) seedBorrower(t *testing.T, name, phone string, dueDaysAgo int) *borrowers.Borrower {
	t.Helper()
	due := opsNow.Truncate(24 * time.Hour).AddDate(0, 0, -dueDaysAgo)
	b, err := f.borrowers.Create(context.Background(), &borrowers.CreateBorrowerRequest{
		Name:             name,
		Phone:            phone,
		EMIAmount:        3000,
		AmountDue:        3000,
		NextDueDate:      due,
		LoanTenureMonths: 12,
		MonthsPaid:       4,
	})
	require.NoError(t, err)
	return b
}

func TestPriorityQueueRanksDeeperDelinquencyFirst(t *testing.T) {
	f := newOpsFixture(t, "")
	fresh := f.seedBorrower(t, "Asha Patel", "9876500001", 5)
	deep := f.seedBorrower(t, "Vikram Rao", "9876500002", 95)

	entries, err := f.service.PriorityQueue(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, deep.ID, entries[0].Borrower.ID)
	assert.Equal(t, fresh.ID, entries[1].Borrower.ID)
	assert.Greater(t, entries[0].PriorityScore, entries[1].PriorityScore)
}

func TestTodayQueueCapsAtTwenty(t *testing.T) {
	f := newOpsFixture(t, "")
	for i := 0; i < 25; i++ {
		f.seedBorrower(t, "Borrower", fmt.Sprintf("98765%05d", i), 10+i)
	}

	entries, err := f.service.TodayQueue(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

func TestRecoveryForBorrowerAssemblesInputs(t *testing.T) {
	f := newOpsFixture(t, "")
	b := f.seedBorrower(t, "Ravi Kumar", "9876500001", 45)
	ctx := context.Background()

	p, err := f.promises.Create(ctx, &promises.CreatePromiseRequest{
		BorrowerID: b.ID, Amount: 1000, DueDate: opsNow,
	})
	require.NoError(t, err)
	_, err = f.promises.UpdateStatus(ctx, p.ID, promises.StatusKept)
	require.NoError(t, err)

	for _, outcome := range []string{"connected", "no_answer", "no_answer"} {
		conv := &conversation.Conversation{
			BorrowerID: b.ID,
			Channel:    conversation.ChannelVoice,
			State:      dialog.StateResolve,
			Tone:       dialog.ToneNeutral,
			Outcome:    outcome,
		}
		require.NoError(t, f.convs.Create(ctx, conv))
	}

	report, err := f.service.RecoveryForBorrower(ctx, b.ID)
	require.NoError(t, err)

	// One kept promise, no broken: perfect reliability.
	assert.InDelta(t, 1.0, report.KeptRate, 1e-9)
	// dpd 45 without an active offer.
	assert.InDelta(t, 0.3, report.Accept, 1e-9)
	// 0.5 + 0.15 - 0.2 from two no-answers.
	assert.InDelta(t, 0.45, report.Engage, 1e-9)
	assert.Positive(t, report.Exp7)
	assert.GreaterOrEqual(t, report.Exp30, report.Exp7)
	// Two no-answers push messaging channels first.
	assert.Equal(t, []string{"whatsapp", "sms", "voice"}, report.Channels)
	assert.NotEmpty(t, report.BestTime.Window)
}

func TestRecoveryForUnknownBorrower(t *testing.T) {
	f := newOpsFixture(t, "")

	_, err := f.service.RecoveryForBorrower(context.Background(), "missing")
	assert.ErrorIs(t, err, borrowers.ErrBorrowerNotFound)
}

func TestStartCallRequiresPublicWebhook(t *testing.T) {
	f := newOpsFixture(t, "http://localhost:5000")
	b := f.seedBorrower(t, "Ravi Kumar", "9876500001", 10)

	_, err := f.service.StartCall(context.Background(), b.ID)
	assert.ErrorIs(t, err, ErrWebhookNotConfigured)
	assert.Empty(t, f.caller.Calls)
}

func TestStartCallDialsThroughGateway(t *testing.T) {
	f := newOpsFixture(t, "https://riverline.example.com")
	b := f.seedBorrower(t, "Ravi Kumar", "9876500001", 10)

	sid, err := f.service.StartCall(context.Background(), b.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, sid)
	require.Len(t, f.caller.Calls, 1)
	assert.Equal(t, "9876500001", f.caller.Calls[0].To)
	assert.Equal(t, "https://riverline.example.com/api/twilio/voice", f.caller.Calls[0].WebhookURL)
}

func TestStartCallRefusesLockedBorrower(t *testing.T) {
	f := newOpsFixture(t, "https://riverline.example.com")
	b := f.seedBorrower(t, "Ravi Kumar", "9876500001", 10)
	b.LegalEscalationFlag = true
	require.NoError(t, f.borrowers.Update(context.Background(), b))

	_, err := f.service.StartCall(context.Background(), b.ID)
	assert.ErrorIs(t, err, ErrCallLocked)
}

func TestComplianceCheckUsesISTWindow(t *testing.T) {
	f := newOpsFixture(t, "")

	// 11:00 UTC is 16:30 IST, inside the window.
	result := f.service.ComplianceCheck()
	assert.True(t, result.OK)
	assert.Equal(t, 16, result.Hour)
	assert.Equal(t, "08:00–20:00 IST", result.Window)

	// 22:00 UTC is 03:30 IST.
	f.service.now = func() time.Time {
		return time.Date(2025, time.November, 4, 22, 0, 0, 0, time.UTC)
	}
	result = f.service.ComplianceCheck()
	assert.False(t, result.OK)
}
