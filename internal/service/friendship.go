package service

import (
	"context"
	"errors"
	"time"

	"github.com/Stefhermann/GOpherARun/internal/broker"
	"github.com/Stefhermann/GOpherARun/internal/models"
	"github.com/Stefhermann/GOpherARun/internal/repository"
	"github.com/sirupsen/logrus"
)

// FriendStatus is the relationship between the caller and another user.
type FriendStatus string

const (
	StatusFriends         FriendStatus = "friends"
	StatusOutgoingRequest FriendStatus = "outgoing_request"
	StatusIncomingRequest FriendStatus = "incoming_request"
	StatusNone            FriendStatus = "none"
)

// PendingRequest is a pending friend request seen from one side.
type PendingRequest struct {
	User   models.PublicProfile `json:"user"`
	SentAt time.Time            `json:"sent_at"`
}

// FriendshipService runs the friend request lifecycle.
type FriendshipService struct {
	relations repository.RelationshipRepository
	profiles  repository.ProfileRepository
	publisher broker.Publisher
}

// NewFriendshipService creates a new FriendshipService.
func NewFriendshipService(relations repository.RelationshipRepository, profiles repository.ProfileRepository, publisher broker.Publisher) *FriendshipService {
	if publisher == nil {
		publisher = broker.NoopPublisher{}
	}
	return &FriendshipService{relations: relations, profiles: profiles, publisher: publisher}
}

// SendFriendRequest creates a pending request from callerID to receiverID.
func (s *FriendshipService) SendFriendRequest(ctx context.Context, callerID, receiverID string) Result {
	if callerID == "" {
		return fail(ErrUnauthenticated, msgAuthRequired)
	}
	if receiverID == "" {
		return fail(ErrInvalidInput, "A user id is required.")
	}
	if callerID == receiverID {
		return fail(ErrSelfOperation, "You cannot send a request to yourself.")
	}

	log := logrus.WithFields(logrus.Fields{
		"function": "SendFriendRequest",
		"sender":   callerID,
		"receiver": receiverID,
	})

	_, err := s.relations.GetFriendship(ctx, models.NormalizePair(callerID, receiverID))
	switch {
	case err == nil:
		return fail(ErrConflict, "You are already friends.")
	case !errors.Is(err, repository.ErrNotFound):
		log.WithError(err).Error("Failed to look up friendship")
		return fail(ErrStoreFailure, "Could not send friend request.")
	}

	_, err = s.relations.GetPendingRequest(ctx, receiverID, callerID)
	switch {
	case err == nil:
		return fail(ErrConflict, "This user already sent you a friend request. Accept it instead.")
	case !errors.Is(err, repository.ErrNotFound):
		log.WithError(err).Error("Failed to look up reverse request")
		return fail(ErrStoreFailure, "Could not send friend request.")
	}

	err = s.relations.CreateRequest(ctx, &models.FriendRequest{
		SenderID:   callerID,
		ReceiverID: receiverID,
		CreatedAt:  time.Now().UTC(),
	})
	switch {
	case errors.Is(err, repository.ErrConflict):
		return fail(ErrConflict, "Friend request already sent.")
	case errors.Is(err, repository.ErrNotFound):
		return fail(ErrNotFound, "User not found.")
	case err != nil:
		log.WithError(err).Error("Failed to create friend request")
		return fail(ErrStoreFailure, "Could not send friend request.")
	}

	log.Info("Friend request sent")
	publish(ctx, s.publisher, broker.Activity{Kind: broker.FriendRequestSent, ActorID: callerID, TargetID: receiverID})
	return succeed("Friend request sent.")
}

// CancelFriendRequest withdraws the caller's pending request. Cancelling a
// request that does not exist succeeds.
func (s *FriendshipService) CancelFriendRequest(ctx context.Context, callerID, receiverID string) Result {
	if callerID == "" {
		return fail(ErrUnauthenticated, msgAuthRequired)
	}
	if callerID == receiverID {
		return fail(ErrSelfOperation, "Invalid operation.")
	}

	n, err := s.relations.DeleteRequest(ctx, callerID, receiverID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "CancelFriendRequest",
			"sender":   callerID,
			"receiver": receiverID,
		}).WithError(err).Error("Failed to delete friend request")
		return fail(ErrStoreFailure, "Failed to cancel friend request.")
	}

	if n > 0 {
		publish(ctx, s.publisher, broker.Activity{Kind: broker.FriendRequestCancelled, ActorID: callerID, TargetID: receiverID})
	}
	return succeed("Friend request cancelled.")
}

// AcceptFriendRequest turns the pending request senderID -> callerID into a
// friendship. The friendship insert is authoritative: if the request row
// cannot be removed afterwards the acceptance still succeeds and the row is
// cleaned up when the friendship is removed.
func (s *FriendshipService) AcceptFriendRequest(ctx context.Context, callerID, senderID string) Result {
	if callerID == "" {
		return fail(ErrUnauthenticated, msgAuthRequired)
	}
	if callerID == senderID {
		return fail(ErrSelfOperation, "Cannot accept your own request.")
	}

	log := logrus.WithFields(logrus.Fields{
		"function": "AcceptFriendRequest",
		"sender":   senderID,
		"receiver": callerID,
	})

	alreadyFriends := false
	err := s.relations.Transaction(ctx, func(tx repository.RelationshipRepository) error {
		if _, err := tx.LockPendingRequest(ctx, senderID, callerID); err != nil {
			return err
		}

		pair := models.NormalizePair(senderID, callerID)
		err := tx.Transaction(ctx, func(sp repository.RelationshipRepository) error {
			return sp.CreateFriendship(ctx, &models.Friendship{
				UserLow:     pair.Low,
				UserHigh:    pair.High,
				InitiatorID: senderID,
				CreatedAt:   time.Now().UTC(),
			})
		})
		switch {
		case errors.Is(err, repository.ErrConflict):
			alreadyFriends = true
		case err != nil:
			return err
		}

		err = tx.Transaction(ctx, func(sp repository.RelationshipRepository) error {
			_, err := sp.DeleteRequest(ctx, senderID, callerID)
			return err
		})
		if err != nil {
			log.WithError(err).Warn("Friendship created but the request row could not be deleted")
		}
		return nil
	})

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fail(ErrNotFound, "No valid friend request found.")
	case err != nil:
		log.WithError(err).Error("Failed to accept friend request")
		return fail(ErrStoreFailure, "Failed to create friendship.")
	case alreadyFriends:
		return fail(ErrConflict, "You are already friends.")
	}

	log.Info("Friend request accepted")
	publish(ctx, s.publisher, broker.Activity{Kind: broker.FriendRequestAccepted, ActorID: callerID, TargetID: senderID})
	return succeed("Friend request accepted.")
}

// DeclineFriendRequest removes the pending request senderID -> callerID.
// The end state is the same whether or not the request existed, so both succeed.
func (s *FriendshipService) DeclineFriendRequest(ctx context.Context, callerID, senderID string) Result {
	if callerID == "" {
		return fail(ErrUnauthenticated, msgAuthRequired)
	}
	if callerID == senderID {
		return fail(ErrSelfOperation, "Invalid operation.")
	}

	n, err := s.relations.DeleteRequest(ctx, senderID, callerID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "DeclineFriendRequest",
			"sender":   senderID,
			"receiver": callerID,
		}).WithError(err).Error("Failed to delete friend request")
		return fail(ErrStoreFailure, "Failed to decline request.")
	}

	if n > 0 {
		publish(ctx, s.publisher, broker.Activity{Kind: broker.FriendRequestDeclined, ActorID: callerID, TargetID: senderID})
	}
	return succeed("Friend request declined.")
}

// RemoveFriend deletes the friendship between the caller and friendID along
// with any request rows left over between the two.
func (s *FriendshipService) RemoveFriend(ctx context.Context, callerID, friendID string) Result {
	if callerID == "" {
		return fail(ErrUnauthenticated, msgAuthRequired)
	}
	if callerID == friendID {
		return fail(ErrSelfOperation, "Invalid operation: You cannot unfriend yourself.")
	}

	err := s.relations.Transaction(ctx, func(tx repository.RelationshipRepository) error {
		n, err := tx.DeleteFriendship(ctx, models.NormalizePair(callerID, friendID))
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		if _, err := tx.DeleteRequest(ctx, callerID, friendID); err != nil {
			return err
		}
		_, err = tx.DeleteRequest(ctx, friendID, callerID)
		return err
	})

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fail(ErrNotFound, "You are not friends with this user.")
	case err != nil:
		logrus.WithFields(logrus.Fields{
			"function": "RemoveFriend",
			"user":     callerID,
			"friend":   friendID,
		}).WithError(err).Error("Failed to remove friend")
		return fail(ErrStoreFailure, "Failed to remove friend.")
	}

	publish(ctx, s.publisher, broker.Activity{Kind: broker.FriendRemoved, ActorID: callerID, TargetID: friendID})
	return succeed("Friend removed successfully.")
}

// FriendStatus resolves the relationship between the caller and targetID.
// A friendship wins over any stale request. Failures resolve to StatusNone.
func (s *FriendshipService) FriendStatus(ctx context.Context, callerID, targetID string) FriendStatus {
	if callerID == "" || targetID == "" || callerID == targetID {
		return StatusNone
	}

	log := logrus.WithFields(logrus.Fields{
		"function": "FriendStatus",
		"user":     callerID,
		"target":   targetID,
	})

	_, err := s.relations.GetFriendship(ctx, models.NormalizePair(callerID, targetID))
	if err == nil {
		return StatusFriends
	}
	if !errors.Is(err, repository.ErrNotFound) {
		log.WithError(err).Warn("Failed to resolve friendship")
		return StatusNone
	}

	_, err = s.relations.GetPendingRequest(ctx, callerID, targetID)
	if err == nil {
		return StatusOutgoingRequest
	}
	if !errors.Is(err, repository.ErrNotFound) {
		log.WithError(err).Warn("Failed to resolve outgoing request")
		return StatusNone
	}

	_, err = s.relations.GetPendingRequest(ctx, targetID, callerID)
	if err == nil {
		return StatusIncomingRequest
	}
	if !errors.Is(err, repository.ErrNotFound) {
		log.WithError(err).Warn("Failed to resolve incoming request")
	}
	return StatusNone
}

// FriendsList returns the public profiles of the caller's friends.
func (s *FriendshipService) FriendsList(ctx context.Context, callerID string) ([]models.PublicProfile, error) {
	if callerID == "" {
		return []models.PublicProfile{}, ErrUnauthenticated
	}

	ids, err := s.relations.ListFriendIDs(ctx, callerID)
	if err != nil {
		return []models.PublicProfile{}, readError("list friends", err)
	}
	if len(ids) == 0 {
		return []models.PublicProfile{}, nil
	}

	profiles, err := s.profiles.GetProfilesByIDs(ctx, ids)
	if err != nil {
		return []models.PublicProfile{}, readError("load friend profiles", err)
	}
	return publicProfiles(profiles), nil
}

// IncomingRequests lists the requests waiting for the caller's answer.
func (s *FriendshipService) IncomingRequests(ctx context.Context, callerID string) ([]PendingRequest, error) {
	if callerID == "" {
		return []PendingRequest{}, ErrUnauthenticated
	}
	reqs, err := s.relations.ListIncomingRequests(ctx, callerID)
	if err != nil {
		return []PendingRequest{}, readError("list incoming requests", err)
	}
	out := make([]PendingRequest, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, PendingRequest{User: r.Sender.Public(), SentAt: r.CreatedAt})
	}
	return out, nil
}

// OutgoingRequests lists the caller's requests that are still pending.
func (s *FriendshipService) OutgoingRequests(ctx context.Context, callerID string) ([]PendingRequest, error) {
	if callerID == "" {
		return []PendingRequest{}, ErrUnauthenticated
	}
	reqs, err := s.relations.ListOutgoingRequests(ctx, callerID)
	if err != nil {
		return []PendingRequest{}, readError("list outgoing requests", err)
	}
	out := make([]PendingRequest, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, PendingRequest{User: r.Receiver.Public(), SentAt: r.CreatedAt})
	}
	return out, nil
}

func publicProfiles(profiles []models.Profile) []models.PublicProfile {
	out := make([]models.PublicProfile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.Public())
	}
	return out
}
