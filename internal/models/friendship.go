package models

import "time"

// Friendship is an unordered pair of users stored as (UserLow, UserHigh)
// with UserLow < UserHigh, so a pair has exactly one row whichever side
// sent the request.
type Friendship struct {
	UserLow     string `gorm:"primaryKey;size:128;check:chk_friends_ordered,user_low < user_high"`
	UserHigh    string `gorm:"primaryKey;size:128;index"`
	InitiatorID string `gorm:"size:128;not null"`
	CreatedAt   time.Time

	Low  Profile `gorm:"foreignKey:UserLow;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	High Profile `gorm:"foreignKey:UserHigh;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// TableName keeps the table name used by the rest of the platform.
func (Friendship) TableName() string {
	return "friends"
}

// Pair is a normalized user pair.
type Pair struct {
	Low  string
	High string
}

// NormalizePair orders two ids lexicographically.
func NormalizePair(a, b string) Pair {
	if a < b {
		return Pair{Low: a, High: b}
	}
	return Pair{Low: b, High: a}
}

// Other returns the member of the pair that is not userID.
func (p Pair) Other(userID string) string {
	if p.Low == userID {
		return p.High
	}
	return p.Low
}

// Pair returns the normalized pair of the friendship.
func (f Friendship) Pair() Pair {
	return Pair{Low: f.UserLow, High: f.UserHigh}
}
