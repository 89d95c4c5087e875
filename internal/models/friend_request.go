package models

import "time"

// RequestStatus is the state of a friend request. Declined and cancelled
// requests are deleted, so pending is the only stored value.
type RequestStatus string

const StatusPending RequestStatus = "pending"

// FriendRequest is a pending request from Sender to Receiver.
// The composite primary key allows one row per ordered pair.
type FriendRequest struct {
	SenderID   string        `gorm:"primaryKey;size:128;check:chk_friend_requests_distinct,sender_id <> receiver_id"`
	ReceiverID string        `gorm:"primaryKey;size:128;index"`
	Status     RequestStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt  time.Time

	Sender   Profile `gorm:"foreignKey:SenderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Receiver Profile `gorm:"foreignKey:ReceiverID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
