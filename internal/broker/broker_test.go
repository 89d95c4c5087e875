package broker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActivitySubject(t *testing.T) {
	a := Activity{Kind: FriendRequestAccepted, ActorID: "bob", TargetID: "alice"}
	assert.Equal(t, "gopherrun.friend.request.accepted", a.Subject())
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Activity{Kind: EventJoined}))
	p.Close()
}
