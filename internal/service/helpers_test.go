package service

import (
	"context"
	"sync"
	"testing"

	"github.com/Stefhermann/GOpherARun/internal/broker"
	"github.com/Stefhermann/GOpherARun/internal/models"
	"github.com/Stefhermann/GOpherARun/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu         sync.Mutex
	activities []broker.Activity
}

func (p *recordingPublisher) Publish(_ context.Context, a broker.Activity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.activities = append(p.activities, a)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	kinds := make([]string, 0, len(p.activities))
	for _, a := range p.activities {
		kinds = append(kinds, a.Kind)
	}
	return kinds
}

type fixture struct {
	store     *memory.Store
	publisher *recordingPublisher
	friends   *FriendshipService
	events    *EventService
	directory *DirectoryService
}

func newFixture(t *testing.T, users ...string) *fixture {
	t.Helper()
	store := memory.NewStore()
	for _, u := range users {
		require.NoError(t, store.UpsertProfile(context.Background(), &models.Profile{ID: u, Username: u}))
	}
	pub := &recordingPublisher{}
	return &fixture{
		store:     store,
		publisher: pub,
		friends:   NewFriendshipService(store, store, pub),
		events:    NewEventService(store, pub),
		directory: NewDirectoryService(store),
	}
}
