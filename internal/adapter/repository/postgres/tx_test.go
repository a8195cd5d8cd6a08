package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/srgjo27/ticket_marketplace/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		contention bool
	}{
		{"serialization failure", &pq.Error{Code: codeSerializationFailure}, true},
		{"deadlock", fmt.Errorf("wrapped: %w", &pq.Error{Code: codeDeadlockDetected}), true},
		{"lock not available", &pq.Error{Code: codeLockNotAvailable}, true},
		{"unique violation", &pq.Error{Code: "23505"}, false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.err)
			assert.Equal(t, tt.contention, errors.Is(err, domain.ErrAllocationContention))
		})
	}

	assert.NoError(t, classify(nil))
}

func TestTxManager_CommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
		calls++
		_, inTx := conn(ctx, db).(interface{ Commit() error })
		assert.True(t, inTx)
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_NestedCallsJoinOuterTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	m := NewTxManager(db)
	err = m.WithTx(context.Background(), func(outer context.Context) error {
		return m.WithTx(outer, func(inner context.Context) error {
			assert.Same(t, conn(outer, db), conn(inner, db))
			return nil
		})
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxManager_CommitConflictIsContention(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(&pq.Error{Code: codeSerializationFailure})

	err = NewTxManager(db).WithTx(context.Background(), func(ctx context.Context) error {
		return nil
	})

	assert.ErrorIs(t, err, domain.ErrAllocationContention)
	assert.NoError(t, mock.ExpectationsWereMet())
}
