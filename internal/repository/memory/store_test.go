package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Stefhermann/GOpherARun/internal/models"
	"github.com/Stefhermann/GOpherARun/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProfiles(t *testing.T, s *Store, usernames ...string) {
	t.Helper()
	for _, name := range usernames {
		require.NoError(t, s.UpsertProfile(context.Background(), &models.Profile{ID: name, Username: name}))
	}
}

func TestCreateRequestConstraints(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProfiles(t, s, "alice", "bob")

	require.NoError(t, s.CreateRequest(ctx, &models.FriendRequest{SenderID: "alice", ReceiverID: "bob"}))

	err := s.CreateRequest(ctx, &models.FriendRequest{SenderID: "alice", ReceiverID: "bob"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	err = s.CreateRequest(ctx, &models.FriendRequest{SenderID: "alice", ReceiverID: "ghost"})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = s.CreateRequest(ctx, &models.FriendRequest{SenderID: "alice", ReceiverID: "alice"})
	assert.Error(t, err)

	// the reverse direction is a different row
	require.NoError(t, s.CreateRequest(ctx, &models.FriendRequest{SenderID: "bob", ReceiverID: "alice"}))

	incoming, err := s.ListIncomingRequests(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, "alice", incoming[0].Sender.Username)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProfiles(t, s, "alice", "bob")

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx repository.RelationshipRepository) error {
		pair := models.NormalizePair("alice", "bob")
		require.NoError(t, tx.CreateFriendship(ctx, &models.Friendship{UserLow: pair.Low, UserHigh: pair.High, InitiatorID: "alice"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetFriendship(ctx, models.NormalizePair("alice", "bob"))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestNestedTransactionActsAsSavepoint(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProfiles(t, s, "alice", "bob")
	require.NoError(t, s.CreateRequest(ctx, &models.FriendRequest{SenderID: "alice", ReceiverID: "bob"}))

	pair := models.NormalizePair("alice", "bob")
	err := s.Transaction(ctx, func(tx repository.RelationshipRepository) error {
		if err := tx.CreateFriendship(ctx, &models.Friendship{UserLow: pair.Low, UserHigh: pair.High, InitiatorID: "alice"}); err != nil {
			return err
		}
		inner := tx.Transaction(ctx, func(inner repository.RelationshipRepository) error {
			_, err := inner.DeleteRequest(ctx, "alice", "bob")
			require.NoError(t, err)
			return errors.New("rolled back")
		})
		assert.Error(t, inner)
		return nil
	})
	require.NoError(t, err)

	_, err = s.GetFriendship(ctx, pair)
	assert.NoError(t, err, "outer write must survive")
	_, err = s.GetPendingRequest(ctx, "alice", "bob")
	assert.NoError(t, err, "savepoint write must be rolled back")
}

func TestFriendshipOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProfiles(t, s, "alice", "bob", "carol")

	err := s.CreateFriendship(ctx, &models.Friendship{UserLow: "bob", UserHigh: "alice", InitiatorID: "bob"})
	assert.Error(t, err, "unordered pair must be rejected")

	for _, other := range []string{"bob", "carol"} {
		pair := models.NormalizePair("alice", other)
		require.NoError(t, s.CreateFriendship(ctx, &models.Friendship{UserLow: pair.Low, UserHigh: pair.High, InitiatorID: "alice"}))
	}
	err = s.CreateFriendship(ctx, &models.Friendship{UserLow: "alice", UserHigh: "bob", InitiatorID: "bob"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	ids, err := s.ListFriendIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, ids)

	ids, err = s.ListFriendIDs(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, ids)

	n, err := s.DeleteFriendship(ctx, models.NormalizePair("carol", "alice"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = s.DeleteFriendship(ctx, models.NormalizePair("carol", "alice"))
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestParticipantsAndCascade(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProfiles(t, s, "alice", "bob")

	event := &models.Event{ID: uuid.New(), Title: "Sunday long run", Location: "Park", Time: time.Now(), CreatorID: "alice"}
	require.NoError(t, s.CreateEvent(ctx, event))

	added, err := s.AddParticipant(ctx, event.ID, "bob", time.Now())
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddParticipant(ctx, event.ID, "bob", time.Now())
	require.NoError(t, err)
	assert.False(t, added, "second join must not add a row")

	_, err = s.AddParticipant(ctx, uuid.New(), "bob", time.Now())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	people, err := s.ListParticipants(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "bob", people[0].Username)

	joined, err := s.ListJoinedEventIDs(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{event.ID}, joined)

	require.NoError(t, s.DeleteEvent(ctx, event.ID))
	joined, err = s.ListJoinedEventIDs(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, joined)
	assert.ErrorIs(t, s.DeleteEvent(ctx, event.ID), repository.ErrNotFound)
}

func TestListEventsPaginates(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProfiles(t, s, "alice")

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreateEvent(ctx, &models.Event{
			ID: uuid.New(), Title: "run", Location: "track", Time: base.Add(time.Duration(i) * time.Hour), CreatorID: "alice",
		}))
	}

	page, total, err := s.ListEvents(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, page, 2)
	assert.True(t, page[0].Time.After(page[1].Time))

	page, _, err = s.ListEvents(ctx, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	page, _, err = s.ListEvents(ctx, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestSearchByUsernamePrefix(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProfiles(t, s, "carol", "Dave", "dan", "erin")

	got, err := s.SearchByUsernamePrefix(ctx, "DA", "carol", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Dave", got[0].Username)
	assert.Equal(t, "dan", got[1].Username)

	got, err = s.SearchByUsernamePrefix(ctx, "d", "dan", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dave", got[0].Username)
}

func TestUpsertProfileUsernameUnique(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProfiles(t, s, "alice")

	err := s.UpsertProfile(ctx, &models.Profile{ID: "other", Username: "alice"})
	assert.ErrorIs(t, err, repository.ErrConflict)
	err = s.UpsertProfile(ctx, &models.Profile{ID: "other", Username: "Alice"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	require.NoError(t, s.UpsertProfile(ctx, &models.Profile{ID: "alice", Username: "alice", Biography: "5k a day"}))
	p, err := s.GetProfileByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "5k a day", p.Biography)

	p, err = s.GetProfileByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.ID)

	require.NoError(t, s.UpsertProfile(ctx, &models.Profile{ID: "alice", Username: "Alice"}))
}
