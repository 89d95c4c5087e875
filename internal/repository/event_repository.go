package repository

import (
	"context"
	"time"

	"github.com/Stefhermann/GOpherARun/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresEventRepository implements EventRepository with gorm.
type PostgresEventRepository struct {
	db *gorm.DB
}

// NewPostgresEventRepository creates a new PostgresEventRepository.
func NewPostgresEventRepository(db *gorm.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

func (r *PostgresEventRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	err := r.db.WithContext(ctx).Omit("Creator", "Participants").Create(event).Error
	return translateError("create event", err)
}

func (r *PostgresEventRepository) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, translateError("get event", err)
	}
	return &event, nil
}

// UpdateEvent saves the mutable fields of an existing event.
func (r *PostgresEventRepository) UpdateEvent(ctx context.Context, event *models.Event) error {
	result := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", event.ID).
		Updates(map[string]interface{}{
			"title":       event.Title,
			"location":    event.Location,
			"time":        event.Time,
			"description": event.Description,
			"updated_at":  event.UpdatedAt,
		})
	if result.Error != nil {
		return translateError("update event", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEvent removes participants before the event inside one transaction.
// The foreign key also cascades, but the explicit delete keeps the order
// independent of how the schema was created.
func (r *PostgresEventRepository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.EventParticipant{}).Error; err != nil {
			return translateError("delete participants", err)
		}
		result := tx.Delete(&models.Event{}, "id = ?", id)
		if result.Error != nil {
			return translateError("delete event", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListEvents returns one page of events ordered by start time, newest first,
// and the total number of events.
func (r *PostgresEventRepository) ListEvents(ctx context.Context, page, limit int) ([]models.Event, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Event{}).Count(&total).Error; err != nil {
		return nil, 0, translateError("count events", err)
	}

	var events []models.Event
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Order(`"time" DESC`).
		Offset(offset).
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, translateError("list events", err)
	}
	return events, total, nil
}

// AddParticipant inserts the membership and ignores an existing one.
func (r *PostgresEventRepository) AddParticipant(ctx context.Context, eventID uuid.UUID, userID string, joinedAt time.Time) (bool, error) {
	participant := models.EventParticipant{
		EventID:  eventID,
		UserID:   userID,
		JoinedAt: joinedAt,
	}
	result := r.db.WithContext(ctx).
		Omit("User").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&participant)
	if result.Error != nil {
		return false, translateError("add participant", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *PostgresEventRepository) RemoveParticipant(ctx context.Context, eventID uuid.UUID, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.EventParticipant{})
	if result.Error != nil {
		return 0, translateError("remove participant", result.Error)
	}
	return result.RowsAffected, nil
}

// ListParticipants returns the profiles of everyone who joined the event, in join order.
func (r *PostgresEventRepository) ListParticipants(ctx context.Context, eventID uuid.UUID) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.WithContext(ctx).
		Select("profiles.*").
		Joins("JOIN participants ON participants.user_id = profiles.id").
		Where("participants.event_id = ?", eventID).
		Order("participants.joined_at ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, translateError("list participants", err)
	}
	return profiles, nil
}

func (r *PostgresEventRepository) ListJoinedEventIDs(ctx context.Context, userID string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.EventParticipant{}).
		Where("user_id = ?", userID).
		Pluck("event_id", &ids).Error
	if err != nil {
		return nil, translateError("list joined events", err)
	}
	return ids, nil
}
