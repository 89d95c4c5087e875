package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Stefhermann/GOpherARun/internal/broker"
	"github.com/Stefhermann/GOpherARun/internal/models"
	"github.com/Stefhermann/GOpherARun/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendFriendRequestStatusFromBothSides(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")

	res := f.friends.SendFriendRequest(ctx, "alice", "bob")
	require.True(t, res.Success, res.Message)

	assert.Equal(t, StatusOutgoingRequest, f.friends.FriendStatus(ctx, "alice", "bob"))
	assert.Equal(t, StatusIncomingRequest, f.friends.FriendStatus(ctx, "bob", "alice"))
	assert.Equal(t, []string{broker.FriendRequestSent}, f.publisher.kinds())
}

func TestSendFriendRequestRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("unauthenticated", func(t *testing.T) {
		f := newFixture(t, "alice", "bob")
		res := f.friends.SendFriendRequest(ctx, "", "bob")
		assert.False(t, res.Success)
		assert.True(t, res.Is(ErrUnauthenticated))
	})

	t.Run("self", func(t *testing.T) {
		f := newFixture(t, "alice")
		res := f.friends.SendFriendRequest(ctx, "alice", "alice")
		assert.True(t, res.Is(ErrSelfOperation))
	})

	t.Run("duplicate", func(t *testing.T) {
		f := newFixture(t, "alice", "bob")
		require.True(t, f.friends.SendFriendRequest(ctx, "alice", "bob").Success)
		res := f.friends.SendFriendRequest(ctx, "alice", "bob")
		assert.True(t, res.Is(ErrConflict))
	})

	t.Run("reverse request pending", func(t *testing.T) {
		f := newFixture(t, "alice", "bob")
		require.True(t, f.friends.SendFriendRequest(ctx, "bob", "alice").Success)
		res := f.friends.SendFriendRequest(ctx, "alice", "bob")
		assert.True(t, res.Is(ErrConflict))
	})

	t.Run("already friends", func(t *testing.T) {
		f := newFixture(t, "alice", "bob")
		require.True(t, f.friends.SendFriendRequest(ctx, "alice", "bob").Success)
		require.True(t, f.friends.AcceptFriendRequest(ctx, "bob", "alice").Success)
		res := f.friends.SendFriendRequest(ctx, "bob", "alice")
		assert.True(t, res.Is(ErrConflict))
	})

	t.Run("unknown receiver", func(t *testing.T) {
		f := newFixture(t, "alice")
		res := f.friends.SendFriendRequest(ctx, "alice", "nobody")
		assert.True(t, res.Is(ErrNotFound))
	})
}

func TestConcurrentDuplicateSendKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")

	const attempts = 8
	results := make([]Result, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.friends.SendFriendRequest(ctx, "alice", "bob")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		} else {
			assert.True(t, r.Is(ErrConflict), r.Message)
		}
	}
	assert.Equal(t, 1, succeeded)

	outgoing, err := f.friends.OutgoingRequests(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, outgoing, 1)
}

func TestCancelAndDeclineAreIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")

	require.True(t, f.friends.SendFriendRequest(ctx, "alice", "bob").Success)
	for i := 0; i < 2; i++ {
		res := f.friends.CancelFriendRequest(ctx, "alice", "bob")
		assert.True(t, res.Success, res.Message)
		assert.Equal(t, StatusNone, f.friends.FriendStatus(ctx, "alice", "bob"))
	}

	require.True(t, f.friends.SendFriendRequest(ctx, "alice", "bob").Success)
	for i := 0; i < 2; i++ {
		res := f.friends.DeclineFriendRequest(ctx, "bob", "alice")
		assert.True(t, res.Success, res.Message)
		assert.Equal(t, StatusNone, f.friends.FriendStatus(ctx, "bob", "alice"))
	}

	// only the calls that removed a row publish
	assert.Equal(t, []string{
		broker.FriendRequestSent,
		broker.FriendRequestCancelled,
		broker.FriendRequestSent,
		broker.FriendRequestDeclined,
	}, f.publisher.kinds())
}

func TestAcceptFriendRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")

	require.True(t, f.friends.SendFriendRequest(ctx, "alice", "bob").Success)
	res := f.friends.AcceptFriendRequest(ctx, "bob", "alice")
	require.True(t, res.Success, res.Message)

	friendship, err := f.store.GetFriendship(ctx, models.NormalizePair("alice", "bob"))
	require.NoError(t, err)
	assert.Equal(t, "alice", friendship.InitiatorID)

	_, err = f.store.GetPendingRequest(ctx, "alice", "bob")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.store.GetPendingRequest(ctx, "bob", "alice")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.Equal(t, StatusFriends, f.friends.FriendStatus(ctx, "alice", "bob"))
	assert.Equal(t, StatusFriends, f.friends.FriendStatus(ctx, "bob", "alice"))

	again := f.friends.AcceptFriendRequest(ctx, "bob", "alice")
	assert.True(t, again.Is(ErrNotFound))
}

func TestAcceptFriendRequestRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")

	assert.True(t, f.friends.AcceptFriendRequest(ctx, "", "alice").Is(ErrUnauthenticated))
	assert.True(t, f.friends.AcceptFriendRequest(ctx, "bob", "bob").Is(ErrSelfOperation))
	assert.True(t, f.friends.AcceptFriendRequest(ctx, "bob", "alice").Is(ErrNotFound))

	// the sender cannot accept their own request
	require.True(t, f.friends.SendFriendRequest(ctx, "alice", "bob").Success)
	assert.True(t, f.friends.AcceptFriendRequest(ctx, "alice", "bob").Is(ErrNotFound))
}

// failingDelete makes every request deletion fail, including inside transactions.
type failingDelete struct {
	repository.RelationshipRepository
}

func (f failingDelete) DeleteRequest(context.Context, string, string) (int64, error) {
	return 0, errors.New("connection reset")
}

func (f failingDelete) Transaction(ctx context.Context, fn func(tx repository.RelationshipRepository) error) error {
	return f.RelationshipRepository.Transaction(ctx, func(tx repository.RelationshipRepository) error {
		return fn(failingDelete{tx})
	})
}

func TestAcceptSucceedsWhenRequestDeletionFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")
	require.True(t, f.friends.SendFriendRequest(ctx, "alice", "bob").Success)

	svc := NewFriendshipService(failingDelete{f.store}, f.store, nil)
	res := svc.AcceptFriendRequest(ctx, "bob", "alice")
	require.True(t, res.Success, res.Message)

	assert.Equal(t, StatusFriends, f.friends.FriendStatus(ctx, "alice", "bob"))

	// the orphaned request goes away with the friendship
	require.True(t, f.friends.RemoveFriend(ctx, "alice", "bob").Success)
	_, err := f.store.GetPendingRequest(ctx, "alice", "bob")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, StatusNone, f.friends.FriendStatus(ctx, "bob", "alice"))
}

func TestAcceptCrossedRequests(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")

	// simulate requests crossing in flight
	require.NoError(t, f.store.CreateRequest(ctx, &models.FriendRequest{SenderID: "alice", ReceiverID: "bob"}))
	require.NoError(t, f.store.CreateRequest(ctx, &models.FriendRequest{SenderID: "bob", ReceiverID: "alice"}))

	require.True(t, f.friends.AcceptFriendRequest(ctx, "bob", "alice").Success)
	res := f.friends.AcceptFriendRequest(ctx, "alice", "bob")
	assert.True(t, res.Is(ErrConflict))

	_, err := f.store.GetPendingRequest(ctx, "bob", "alice")
	assert.ErrorIs(t, err, repository.ErrNotFound, "stale request must be cleaned up")
	assert.Equal(t, StatusFriends, f.friends.FriendStatus(ctx, "alice", "bob"))
}

// callOrder records the relationship calls made inside transactions.
type callOrder struct {
	repository.RelationshipRepository
	calls *[]string
}

func (c callOrder) GetPendingRequest(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	*c.calls = append(*c.calls, "get")
	return c.RelationshipRepository.GetPendingRequest(ctx, senderID, receiverID)
}

func (c callOrder) LockPendingRequest(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	*c.calls = append(*c.calls, "lock")
	return c.RelationshipRepository.LockPendingRequest(ctx, senderID, receiverID)
}

func (c callOrder) CreateFriendship(ctx context.Context, f *models.Friendship) error {
	*c.calls = append(*c.calls, "create")
	return c.RelationshipRepository.CreateFriendship(ctx, f)
}

func (c callOrder) DeleteRequest(ctx context.Context, senderID, receiverID string) (int64, error) {
	*c.calls = append(*c.calls, "delete")
	return c.RelationshipRepository.DeleteRequest(ctx, senderID, receiverID)
}

func (c callOrder) Transaction(ctx context.Context, fn func(tx repository.RelationshipRepository) error) error {
	return c.RelationshipRepository.Transaction(ctx, func(tx repository.RelationshipRepository) error {
		return fn(callOrder{RelationshipRepository: tx, calls: c.calls})
	})
}

func TestAcceptLocksRequestBeforeCreatingFriendship(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")
	require.True(t, f.friends.SendFriendRequest(ctx, "alice", "bob").Success)

	var calls []string
	svc := NewFriendshipService(callOrder{RelationshipRepository: f.store, calls: &calls}, f.store, nil)
	require.True(t, svc.AcceptFriendRequest(ctx, "bob", "alice").Success)

	assert.Equal(t, []string{"lock", "create", "delete"}, calls)
}

func TestAcceptAfterCancelFindsNoRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")
	require.True(t, f.friends.SendFriendRequest(ctx, "alice", "bob").Success)
	require.True(t, f.friends.CancelFriendRequest(ctx, "alice", "bob").Success)

	var calls []string
	svc := NewFriendshipService(callOrder{RelationshipRepository: f.store, calls: &calls}, f.store, nil)
	res := svc.AcceptFriendRequest(ctx, "bob", "alice")
	assert.True(t, res.Is(ErrNotFound))
	assert.Equal(t, []string{"lock"}, calls)

	assert.Equal(t, StatusNone, f.friends.FriendStatus(ctx, "alice", "bob"))
	assert.Equal(t, StatusNone, f.friends.FriendStatus(ctx, "bob", "alice"))
	ids, err := f.store.ListFriendIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRemoveFriendIsSymmetric(t *testing.T) {
	ctx := context.Background()

	for _, remover := range []string{"alice", "bob"} {
		t.Run(remover, func(t *testing.T) {
			f := newFixture(t, "alice", "bob")
			require.True(t, f.friends.SendFriendRequest(ctx, "alice", "bob").Success)
			require.True(t, f.friends.AcceptFriendRequest(ctx, "bob", "alice").Success)

			other := "bob"
			if remover == "bob" {
				other = "alice"
			}
			require.True(t, f.friends.RemoveFriend(ctx, remover, other).Success)

			assert.Equal(t, StatusNone, f.friends.FriendStatus(ctx, "alice", "bob"))
			assert.Equal(t, StatusNone, f.friends.FriendStatus(ctx, "bob", "alice"))
		})
	}
}

func TestRemoveFriendRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")

	assert.True(t, f.friends.RemoveFriend(ctx, "", "bob").Is(ErrUnauthenticated))
	assert.True(t, f.friends.RemoveFriend(ctx, "alice", "alice").Is(ErrSelfOperation))
	assert.True(t, f.friends.RemoveFriend(ctx, "alice", "bob").Is(ErrNotFound))
}

func TestFriendStatusPrefersFriendship(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")

	pair := models.NormalizePair("alice", "bob")
	require.NoError(t, f.store.CreateFriendship(ctx, &models.Friendship{UserLow: pair.Low, UserHigh: pair.High, InitiatorID: "alice"}))
	require.NoError(t, f.store.CreateRequest(ctx, &models.FriendRequest{SenderID: "alice", ReceiverID: "bob"}))

	assert.Equal(t, StatusFriends, f.friends.FriendStatus(ctx, "alice", "bob"))
	assert.Equal(t, StatusNone, f.friends.FriendStatus(ctx, "", "bob"))
	assert.Equal(t, StatusNone, f.friends.FriendStatus(ctx, "alice", "alice"))
}

func TestFriendsListAndRequestLists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob", "carol")

	list, err := f.friends.FriendsList(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.friends.FriendsList(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	require.True(t, f.friends.SendFriendRequest(ctx, "alice", "bob").Success)
	require.True(t, f.friends.SendFriendRequest(ctx, "carol", "alice").Success)

	incoming, err := f.friends.IncomingRequests(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, "carol", incoming[0].User.Username)

	outgoing, err := f.friends.OutgoingRequests(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, "bob", outgoing[0].User.Username)

	require.True(t, f.friends.AcceptFriendRequest(ctx, "bob", "alice").Success)
	require.True(t, f.friends.AcceptFriendRequest(ctx, "alice", "carol").Success)

	list, err = f.friends.FriendsList(ctx, "alice")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bob", "carol"}, usernames(list))

	list, err = f.friends.FriendsList(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, usernames(list))
}

func TestFriendshipScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "alice", "bob")

	require.True(t, f.friends.SendFriendRequest(ctx, "alice", "bob").Success)
	require.True(t, f.friends.AcceptFriendRequest(ctx, "bob", "alice").Success)
	require.True(t, f.friends.RemoveFriend(ctx, "alice", "bob").Success)

	assert.Equal(t, StatusNone, f.friends.FriendStatus(ctx, "alice", "bob"))
	assert.Equal(t, StatusNone, f.friends.FriendStatus(ctx, "bob", "alice"))

	for _, user := range []string{"alice", "bob"} {
		list, err := f.friends.FriendsList(ctx, user)
		require.NoError(t, err)
		assert.Empty(t, list)
	}
}

func usernames(profiles []models.PublicProfile) []string {
	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.Username)
	}
	return out
}
