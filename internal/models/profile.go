package models

import "time"

// Profile is the public record of a user. The id comes from the identity provider.
// Usernames are unique ignoring case.
type Profile struct {
	ID        string `gorm:"primaryKey;size:128"`
	Username  string `gorm:"size:255;not null;uniqueIndex:idx_profiles_username_lower,expression:lower(username)"`
	FirstName string `gorm:"size:255"`
	LastName  string `gorm:"size:255"`
	Biography string
	Pronouns  string `gorm:"size:64"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicProfile is the subset of a profile returned by lists and search.
type PublicProfile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Public strips the private fields.
func (p Profile) Public() PublicProfile {
	return PublicProfile{
		ID:        p.ID,
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
}
