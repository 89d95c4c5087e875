package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Stefhermann/GOpherARun/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockPendingRequestSelectsForUpdate(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewPostgresRelationshipRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "friend_requests" WHERE .*sender_id = \$1 AND receiver_id = \$2 AND status = \$3.* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"sender_id", "receiver_id", "status"}).
			AddRow("alice", "bob", "pending"))
	mock.ExpectQuery(`FROM "friend_requests" .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"sender_id", "receiver_id", "status"}))

	req, err := repo.LockPendingRequest(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, "alice", req.SenderID)
	assert.Equal(t, models.StatusPending, req.Status)

	_, err = repo.LockPendingRequest(ctx, "bob", "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNestedTransactionRollsBackToSavepoint(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewPostgresRelationshipRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`SAVEPOINT sp`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO "friends"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "friends_pkey"})
	mock.ExpectExec(`ROLLBACK TO SAVEPOINT sp`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	var inner error
	err := repo.Transaction(ctx, func(tx RelationshipRepository) error {
		inner = tx.Transaction(ctx, func(sp RelationshipRepository) error {
			return sp.CreateFriendship(ctx, &models.Friendship{UserLow: "alice", UserHigh: "bob", InitiatorID: "alice"})
		})
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, inner, ErrConflict)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRelationshipRepository(db)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "friends" WHERE user_low = \$1 AND user_high = \$2`).
		WithArgs("alice", "bob").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := repo.Transaction(context.Background(), func(tx RelationshipRepository) error {
		n, err := tx.DeleteFriendship(context.Background(), models.NormalizePair("bob", "alice"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestListFriendIDsResolvesOtherSide(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRelationshipRepository(db)

	mock.ExpectQuery(`SELECT "user_low","user_high" FROM "friends" WHERE user_low = \$1 OR user_high = \$2`).
		WithArgs("bob", "bob").
		WillReturnRows(sqlmock.NewRows([]string{"user_low", "user_high"}).
			AddRow("alice", "bob").
			AddRow("bob", "carol"))

	ids, err := repo.ListFriendIDs(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "carol"}, ids)
}
