// Package repository defines the persistence ports of the relationship and
// membership engine and their gorm/postgres implementations.
//
// The stores are the only writers of their tables. Uniqueness is enforced
// by primary keys, so concurrent duplicate writes surface as ErrConflict.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Stefhermann/GOpherARun/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("record already exists")
)

// RelationshipRepository persists friend requests and friendships.
type RelationshipRepository interface {
	CreateRequest(ctx context.Context, req *models.FriendRequest) error
	GetPendingRequest(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error)
	// LockPendingRequest is GetPendingRequest holding a row lock until the
	// surrounding transaction ends. Concurrent cancels and declines wait on it.
	LockPendingRequest(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error)
	// DeleteRequest removes the pending request and reports how many rows went away.
	DeleteRequest(ctx context.Context, senderID, receiverID string) (int64, error)
	ListIncomingRequests(ctx context.Context, receiverID string) ([]models.FriendRequest, error)
	ListOutgoingRequests(ctx context.Context, senderID string) ([]models.FriendRequest, error)

	CreateFriendship(ctx context.Context, f *models.Friendship) error
	GetFriendship(ctx context.Context, pair models.Pair) (*models.Friendship, error)
	DeleteFriendship(ctx context.Context, pair models.Pair) (int64, error)
	ListFriendIDs(ctx context.Context, userID string) ([]string, error)

	// Transaction runs fn atomically. Nested calls on the repository passed
	// to fn roll back on their own without aborting the outer transaction.
	Transaction(ctx context.Context, fn func(tx RelationshipRepository) error) error
}

// EventRepository persists events and their participants.
type EventRepository interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	// DeleteEvent removes the event together with all of its participants.
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	ListEvents(ctx context.Context, page, limit int) ([]models.Event, int64, error)

	// AddParticipant reports false when the user had already joined.
	AddParticipant(ctx context.Context, eventID uuid.UUID, userID string, joinedAt time.Time) (bool, error)
	RemoveParticipant(ctx context.Context, eventID uuid.UUID, userID string) (int64, error)
	ListParticipants(ctx context.Context, eventID uuid.UUID) ([]models.Profile, error)
	ListJoinedEventIDs(ctx context.Context, userID string) ([]uuid.UUID, error)
}

// ProfileRepository reads and writes public profiles.
type ProfileRepository interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error)
	GetProfilesByIDs(ctx context.Context, ids []string) ([]models.Profile, error)
	// SearchByUsernamePrefix matches case-insensitively, skips excludeID and
	// returns at most limit rows ordered by username.
	SearchByUsernamePrefix(ctx context.Context, prefix, excludeID string, limit int) ([]models.Profile, error)
	UpsertProfile(ctx context.Context, profile *models.Profile) error
}

var (
	_ RelationshipRepository = (*PostgresRelationshipRepository)(nil)
	_ EventRepository        = (*PostgresEventRepository)(nil)
	_ ProfileRepository      = (*PostgresProfileRepository)(nil)
)
