package repository

import (
	"context"

	"github.com/Stefhermann/GOpherARun/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresRelationshipRepository implements RelationshipRepository with gorm.
type PostgresRelationshipRepository struct {
	db *gorm.DB
}

// NewPostgresRelationshipRepository creates a new PostgresRelationshipRepository.
func NewPostgresRelationshipRepository(db *gorm.DB) *PostgresRelationshipRepository {
	return &PostgresRelationshipRepository{db: db}
}

// CreateRequest inserts a pending request. A second pending request for the
// same direction hits the primary key and returns ErrConflict.
func (r *PostgresRelationshipRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	req.Status = models.StatusPending
	err := r.db.WithContext(ctx).Omit("Sender", "Receiver").Create(req).Error
	return translateError("create friend request", err)
}

func (r *PostgresRelationshipRepository) GetPendingRequest(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, models.StatusPending).
		First(&req).Error
	if err != nil {
		return nil, translateError("get friend request", err)
	}
	return &req, nil
}

func (r *PostgresRelationshipRepository) LockPendingRequest(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, models.StatusPending).
		First(&req).Error
	if err != nil {
		return nil, translateError("lock friend request", err)
	}
	return &req, nil
}

func (r *PostgresRelationshipRepository) DeleteRequest(ctx context.Context, senderID, receiverID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, models.StatusPending).
		Delete(&models.FriendRequest{})
	if result.Error != nil {
		return 0, translateError("delete friend request", result.Error)
	}
	return result.RowsAffected, nil
}

// ListIncomingRequests returns pending requests addressed to receiverID with the sender preloaded.
func (r *PostgresRelationshipRepository) ListIncomingRequests(ctx context.Context, receiverID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("receiver_id = ? AND status = ?", receiverID, models.StatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, translateError("list incoming requests", err)
	}
	return requests, nil
}

// ListOutgoingRequests returns pending requests sent by senderID with the receiver preloaded.
func (r *PostgresRelationshipRepository) ListOutgoingRequests(ctx context.Context, senderID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Preload("Receiver").
		Where("sender_id = ? AND status = ?", senderID, models.StatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, translateError("list outgoing requests", err)
	}
	return requests, nil
}

func (r *PostgresRelationshipRepository) CreateFriendship(ctx context.Context, f *models.Friendship) error {
	err := r.db.WithContext(ctx).Omit("Low", "High").Create(f).Error
	return translateError("create friendship", err)
}

func (r *PostgresRelationshipRepository) GetFriendship(ctx context.Context, pair models.Pair) (*models.Friendship, error) {
	var f models.Friendship
	err := r.db.WithContext(ctx).
		Where("user_low = ? AND user_high = ?", pair.Low, pair.High).
		First(&f).Error
	if err != nil {
		return nil, translateError("get friendship", err)
	}
	return &f, nil
}

func (r *PostgresRelationshipRepository) DeleteFriendship(ctx context.Context, pair models.Pair) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_low = ? AND user_high = ?", pair.Low, pair.High).
		Delete(&models.Friendship{})
	if result.Error != nil {
		return 0, translateError("delete friendship", result.Error)
	}
	return result.RowsAffected, nil
}

// ListFriendIDs returns the other side of every friendship involving userID.
func (r *PostgresRelationshipRepository) ListFriendIDs(ctx context.Context, userID string) ([]string, error) {
	var friendships []models.Friendship
	err := r.db.WithContext(ctx).
		Select("user_low", "user_high").
		Where("user_low = ? OR user_high = ?", userID, userID).
		Find(&friendships).Error
	if err != nil {
		return nil, translateError("list friends", err)
	}

	ids := make([]string, 0, len(friendships))
	for _, f := range friendships {
		ids = append(ids, f.Pair().Other(userID))
	}
	return ids, nil
}

// Transaction wraps fn in a database transaction. Calling Transaction again on
// tx opens a savepoint, which is how a failing statement is kept from
// aborting the outer work.
func (r *PostgresRelationshipRepository) Transaction(ctx context.Context, fn func(tx RelationshipRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRelationshipRepository{db: tx})
	})
}
