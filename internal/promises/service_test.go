package promises

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riverline/collections-platform/internal/borrowers"
	"github.com/riverline/collections-platform/pkg/logging"
)

func setupService(t *testing.T) (*Service, Repository, borrowers.Repository, *borrowers.Borrower) {
	t.Helper()
	repo := NewInMemoryRepository()
	borrowerRepo := borrowers.NewInMemoryRepository()
	b, err := borrowerRepo.Create(context.Background(), &borrowers.CreateBorrowerRequest{
		Name:        "Ravi Kumar",
		Phone:       "9876501234",
		EMIAmount:   4500,
		NextDueDate: time.Now().AddDate(0, 0, -10),
	})
	require.NoError(t, err)

	svc := NewService(repo, borrowerRepo, nil, logging.Default())
	return svc, repo, borrowerRepo, b
}

func record(t *testing.T, svc *Service, borrowerID string) *Promise {
	t.Helper()
	p, err := svc.Record(context.Background(), &CreatePromiseRequest{
		BorrowerID: borrowerID,
		Amount:     1500,
		DueDate:    time.Now().AddDate(0, 0, 7),
	})
	require.NoError(t, err)
	return p
}

func TestRecordSetsActivePTP(t *testing.T) {
	svc, _, borrowerRepo, b := setupService(t)

	p := record(t, svc, b.ID)
	assert.Equal(t, StatusOpen, p.Status)

	got, err := borrowerRepo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.True(t, got.ActivePTP)
}

func TestMarkKeptClearsActiveWhenLastOpenResolves(t *testing.T) {
	svc, _, borrowerRepo, b := setupService(t)
	ctx := context.Background()

	p1 := record(t, svc, b.ID)
	p2 := record(t, svc, b.ID)

	require.NoError(t, svc.MarkKept(ctx, p1.ID))
	got, err := borrowerRepo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.ActivePTP, "second promise still open")

	require.NoError(t, svc.MarkKept(ctx, p2.ID))
	got, err = borrowerRepo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, got.ActivePTP)
	assert.Zero(t, got.BrokenPTPCount)
}

func TestMarkBrokenIncrementsCounterAndEscalates(t *testing.T) {
	svc, _, borrowerRepo, b := setupService(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		p := record(t, svc, b.ID)
		require.NoError(t, svc.MarkBroken(ctx, p.ID))

		got, err := borrowerRepo.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, i, got.BrokenPTPCount)
		assert.Equal(t, i >= 3, got.LegalEscalationFlag, "after %d broken", i)
	}
}

func TestCancelDoesNotPenalize(t *testing.T) {
	svc, repo, borrowerRepo, b := setupService(t)
	ctx := context.Background()

	p := record(t, svc, b.ID)
	require.NoError(t, svc.Cancel(ctx, p.ID))

	got, err := borrowerRepo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, got.ActivePTP)
	assert.Zero(t, got.BrokenPTPCount)

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)
}

func TestStatsForBorrower(t *testing.T) {
	svc, repo, _, b := setupService(t)
	ctx := context.Background()

	kept := record(t, svc, b.ID)
	broken := record(t, svc, b.ID)
	record(t, svc, b.ID) // stays open

	require.NoError(t, svc.MarkKept(ctx, kept.ID))
	require.NoError(t, svc.MarkBroken(ctx, broken.ID))

	k, br, err := repo.StatsForBorrower(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, k)
	assert.Equal(t, 1, br)
}

func TestMarkKeptUnknownPromise(t *testing.T) {
	svc, _, _, _ := setupService(t)
	assert.ErrorIs(t, svc.MarkKept(context.Background(), "missing"), ErrPromiseNotFound)
}
