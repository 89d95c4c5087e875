package repository

import (
	"context"
	"strings"

	"github.com/Stefhermann/GOpherARun/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresProfileRepository implements ProfileRepository with gorm.
type PostgresProfileRepository struct {
	db *gorm.DB
}

// NewPostgresProfileRepository creates a new PostgresProfileRepository.
func NewPostgresProfileRepository(db *gorm.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, translateError("get profile", err)
	}
	return &profile, nil
}

func (r *PostgresProfileRepository) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("lower(username) = lower(?)", username).First(&profile).Error; err != nil {
		return nil, translateError("get profile by username", err)
	}
	return &profile, nil
}

func (r *PostgresProfileRepository) GetProfilesByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	if len(ids) == 0 {
		return []models.Profile{}, nil
	}
	var profiles []models.Profile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("username").Find(&profiles).Error; err != nil {
		return nil, translateError("get profiles", err)
	}
	return profiles, nil
}

func (r *PostgresProfileRepository) SearchByUsernamePrefix(ctx context.Context, prefix, excludeID string, limit int) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.WithContext(ctx).
		Where("username ILIKE ?", EscapeLike(prefix)+"%").
		Where("id <> ?", excludeID).
		Order("username").
		Limit(limit).
		Find(&profiles).Error
	if err != nil {
		return nil, translateError("search profiles", err)
	}
	return profiles, nil
}

// UpsertProfile inserts the profile or overwrites its editable columns.
func (r *PostgresProfileRepository) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "last_name", "biography", "pronouns", "updated_at"}),
		}).
		Create(profile).Error
	return translateError("upsert profile", err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so user input only matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
