package promises

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	due := now.AddDate(0, 0, 7)

	mock.ExpectQuery("INSERT INTO promises").
		WithArgs(pgxmock.AnyArg(), "b-1", int64(1500), due).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	repo := NewPostgresRepository(mock)
	p, err := repo.Create(context.Background(), &CreatePromiseRequest{
		BorrowerID: "b-1",
		Amount:     1500,
		DueDate:    due,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, p.Status)
	assert.Equal(t, "b-1", p.BorrowerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateStatusNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("UPDATE promises").
		WithArgs("missing", StatusKept).
		WillReturnRows(pgxmock.NewRows([]string{"id", "borrower_id", "amount", "due_date", "status", "created_at", "updated_at"}))

	repo := NewPostgresRepository(mock)
	_, err = repo.UpdateStatus(context.Background(), "missing", StatusKept)
	assert.ErrorIs(t, err, ErrPromiseNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStatsForBorrower(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT").
		WithArgs("b-1", StatusKept, StatusBroken).
		WillReturnRows(pgxmock.NewRows([]string{"kept", "broken"}).AddRow(3, 1))

	repo := NewPostgresRepository(mock)
	kept, broken, err := repo.StatsForBorrower(context.Background(), "b-1")
	require.NoError(t, err)
	assert.Equal(t, 3, kept)
	assert.Equal(t, 1, broken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
