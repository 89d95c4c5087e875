package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a run organised by its creator.
type Event struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"size:255;not null"`
	Location    string    `gorm:"size:255;not null"`
	Time        time.Time `gorm:"not null;index"`
	Description string
	CreatorID   string `gorm:"size:128;not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Creator      Profile            `gorm:"foreignKey:CreatorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Participants []EventParticipant `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE;"`
}

// EventParticipant records that a user joined an event.
// The composite primary key allows one membership per user and event.
type EventParticipant struct {
	EventID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID   string    `gorm:"primaryKey;size:128;index"`
	JoinedAt time.Time `gorm:"not null"`

	User Profile `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// TableName keeps the table name used by the rest of the platform.
func (EventParticipant) TableName() string {
	return "participants"
}
