package postgres

import (
	"context"
	"testing"
	"time"

	"commerce-sync-service/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessedEventRepo_TryClaim_Won(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProcessedEventRepo(mock)

	mock.ExpectExec("INSERT INTO processed_events").
		WithArgs("evt-1", domain.StatusPending, float64(600)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ok, err := repo.TryClaim(context.Background(), "evt-1", 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessedEventRepo_TryClaim_AlreadyClaimed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProcessedEventRepo(mock)

	// Conflict on a live claim: no row inserted or updated
	mock.ExpectExec("INSERT INTO processed_events").
		WithArgs("evt-1", domain.StatusPending, float64(600)).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	ok, err := repo.TryClaim(context.Background(), "evt-1", 10*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessedEventRepo_Commit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProcessedEventRepo(mock)

	mock.ExpectExec("UPDATE processed_events").
		WithArgs("evt-1", domain.StatusProcessed).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.Commit(context.Background(), "evt-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessedEventRepo_Commit_NoClaim(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProcessedEventRepo(mock)

	mock.ExpectExec("UPDATE processed_events").
		WithArgs("evt-missing", domain.StatusProcessed).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.Commit(context.Background(), "evt-missing")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessedEventRepo_Release(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewProcessedEventRepo(mock)

	mock.ExpectExec("DELETE FROM processed_events").
		WithArgs("evt-1", domain.StatusPending).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err = repo.Release(context.Background(), "evt-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
