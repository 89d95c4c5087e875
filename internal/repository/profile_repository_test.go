package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Stefhermann/GOpherARun/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchByUsernamePrefixEscapesWildcards(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE username ILIKE \$1 AND id <> \$2 ORDER BY username LIMIT \$3`).
		WithArgs(`50\%\_off%`, "me", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow("u1", "50%_offer"))

	got, err := repo.SearchByUsernamePrefix(context.Background(), "50%_off", "me", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "50%_offer", got[0].Username)
}

func TestGetProfileByUsernameIgnoresCase(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE lower\(username\) = lower\(\$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow("alice-id", "alice"))
	mock.ExpectQuery(`FROM "profiles" WHERE lower\(username\) = lower\(\$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	p, err := repo.GetProfileByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "alice-id", p.ID)

	_, err = repo.GetProfileByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetProfilesByIDsSkipsEmptyQuery(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewPostgresProfileRepository(db)

	got, err := repo.GetProfilesByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUpsertProfileUsernameTaken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db)

	mock.ExpectExec(`INSERT INTO "profiles" .* ON CONFLICT \("id"\) DO UPDATE SET`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_profiles_username_lower"})

	err := repo.UpsertProfile(context.Background(), &models.Profile{ID: "bob-id", Username: "Alice"})
	assert.ErrorIs(t, err, ErrConflict)
}
