package ops

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverline/collections-platform/internal/conversation"
	"github.com/riverline/collections-platform/internal/dialog"
	"github.com/riverline/collections-platform/internal/notify"
	"github.com/riverline/collections-platform/internal/promises"
	"github.com/riverline/collections-platform/internal/settlements"
)

type recordingEmail struct {
	sent []notify.Message
}

func (r *recordingEmail) Send(_ context.Context, msg notify.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

func seedActivity(t *testing.T, f *opsFixture) {
	t.Helper()
	ctx := context.Background()
	b := f.seedBorrower(t, "Ravi Kumar", "9876500001", 40)

	kept, err := f.promises.Create(ctx, &promises.CreatePromiseRequest{
		BorrowerID: b.ID, Amount: 1500, DueDate: opsNow,
	})
	require.NoError(t, err)
	_, err = f.promises.UpdateStatus(ctx, kept.ID, promises.StatusKept)
	require.NoError(t, err)

	_, err = f.promises.Create(ctx, &promises.CreatePromiseRequest{
		BorrowerID: b.ID, Amount: 2500, DueDate: opsNow,
	})
	require.NoError(t, err)

	offer, err := f.offers.Create(ctx, &settlements.Offer{
		BorrowerID: b.ID, OfferedAmount: 20000,
	})
	require.NoError(t, err)
	offer.Status = settlements.StatusAccepted
	require.NoError(t, f.offers.Update(ctx, offer))

	conv := &conversation.Conversation{
		BorrowerID: b.ID,
		Channel:    conversation.ChannelVoice,
		State:      dialog.StateResolve,
		Tone:       dialog.ToneNeutral,
		Outcome:    "connected",
	}
	require.NoError(t, f.convs.Create(ctx, conv))
}

func TestDashboardAggregates(t *testing.T) {
	f := newOpsFixture(t, "")
	seedActivity(t, f)

	report, err := f.service.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Totals.Borrowers)
	assert.Equal(t, 1, report.Totals.Conversations)
	assert.Equal(t, 2, report.Totals.PTPCreated)
	assert.Equal(t, 1, report.Totals.PTPKept)
	assert.Equal(t, 0, report.Totals.PTPBroken)
	assert.Equal(t, 1, report.Totals.Offers)
	assert.Equal(t, 1, report.Totals.OffersAccepted)
	assert.Equal(t, int64(4000), report.Totals.PromisedAmount)
	assert.Equal(t, int64(20000), report.Totals.AcceptedAmount)
	assert.Equal(t, 1, report.ByRisk["medium"])
	assert.Equal(t, 1, report.Outcomes["connected"])
}

func TestLeaderboardSingleAgent(t *testing.T) {
	f := newOpsFixture(t, "")
	seedActivity(t, f)

	rows, err := f.service.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "AI-Agent-001", row.Agent)
	assert.Equal(t, 1, row.Calls)
	assert.Equal(t, 1, row.Connected)
	assert.Equal(t, 2, row.PTP)
	assert.Equal(t, 1, row.Kept)
	assert.Equal(t, 50, row.KeptRate)
}

func TestEndOfDayReportCountsTodayOnly(t *testing.T) {
	f := newOpsFixture(t, "")
	seedActivity(t, f)
	// The fixture clock is frozen but repositories stamp wall time;
	// report "today" from the wall clock instead.
	f.service.now = time.Now

	report, err := f.service.EndOfDayReport(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Totals.Borrowers)
	assert.Equal(t, 1, report.Totals.Conversations)
	assert.Equal(t, 2, report.Totals.PTPCreated)
	assert.Equal(t, 1, report.Totals.PTPKept)
	assert.Equal(t, 1, report.Totals.Offers)
	assert.Equal(t, 1, report.Totals.OffersAccepted)
	assert.Equal(t, 50, report.Conversion.PTPKeepRate)
	assert.Equal(t, 100, report.Conversion.OfferAcceptRate)
}

func TestEmailEndOfDayReport(t *testing.T) {
	f := newOpsFixture(t, "")
	seedActivity(t, f)
	f.service.now = time.Now
	email := &recordingEmail{}

	report, err := f.service.EmailEndOfDayReport(context.Background(), email, "supervisor@riverline.example")
	require.NoError(t, err)
	require.NotNil(t, report)

	require.Len(t, email.sent, 1)
	msg := email.sent[0]
	assert.Equal(t, "supervisor@riverline.example", msg.To)
	assert.Contains(t, msg.Subject, "Collections EOD report")
	assert.Contains(t, msg.Body, "Promises created: 2")
	assert.Contains(t, msg.Body, "PTP keep rate: 50%")
}

func TestEmailEndOfDayReportWithoutSender(t *testing.T) {
	f := newOpsFixture(t, "")
	seedActivity(t, f)
	f.service.now = time.Now

	report, err := f.service.EmailEndOfDayReport(context.Background(), nil, "")
	require.NoError(t, err)
	assert.NotNil(t, report)
}
