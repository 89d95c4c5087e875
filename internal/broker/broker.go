// Package broker publishes relationship and membership activities for
// downstream consumers such as feeds or notification workers.
package broker

import (
	"context"
	"time"
)

// Activity kinds. Each kind is published on the subject "gopherrun.<kind>".
const (
	FriendRequestSent      = "friend.request.sent"
	FriendRequestCancelled = "friend.request.cancelled"
	FriendRequestAccepted  = "friend.request.accepted"
	FriendRequestDeclined  = "friend.request.declined"
	FriendRemoved          = "friend.removed"

	EventCreated = "event.created"
	EventUpdated = "event.updated"
	EventDeleted = "event.deleted"
	EventJoined  = "event.joined"
	EventLeft    = "event.left"
)

// SubjectPrefix is the root of every published subject.
const SubjectPrefix = "gopherrun"

// Activity is the payload of a published message.
type Activity struct {
	Kind       string    `json:"kind"`
	ActorID    string    `json:"actor_id"`
	TargetID   string    `json:"target_id,omitempty"`
	EventID    string    `json:"event_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Subject returns the subject the activity is published on.
func (a Activity) Subject() string {
	return SubjectPrefix + "." + a.Kind
}

// Publisher delivers activities. Callers treat failures as non-fatal: the
// store is authoritative and an activity is only a hint.
type Publisher interface {
	Publish(ctx context.Context, activity Activity) error
	Close()
}

// NoopPublisher drops every activity. It is used when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Activity) error { return nil }

func (NoopPublisher) Close() {}
