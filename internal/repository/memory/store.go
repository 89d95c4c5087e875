// Package memory is an in-process implementation of the repository ports.
// It enforces the same keys and references as the postgres schema and is
// used by tests and by STORE_DRIVER=memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Stefhermann/GOpherARun/internal/models"
	"github.com/Stefhermann/GOpherARun/internal/repository"
	"github.com/google/uuid"
)

var (
	_ repository.RelationshipRepository = (*Store)(nil)
	_ repository.EventRepository        = (*Store)(nil)
	_ repository.ProfileRepository      = (*Store)(nil)
	_ repository.RelationshipRepository = (*txView)(nil)
)

// Store serialises every call with a mutex. It plays the part of the
// database, so it is the one place in the process holding shared state.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Transaction runs fn against a copy of the tables and commits the copy only
// when fn succeeds.
func (s *Store) Transaction(ctx context.Context, fn func(tx repository.RelationshipRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := &txView{state: s.st.clone()}
	if err := fn(view); err != nil {
		return err
	}
	s.st = view.state
	return nil
}

// txView is the repository handed to a transaction body. Nested transactions
// behave like savepoints.
type txView struct {
	*state
}

func (v *txView) Transaction(ctx context.Context, fn func(tx repository.RelationshipRepository) error) error {
	inner := &txView{state: v.state.clone()}
	if err := fn(inner); err != nil {
		return err
	}
	v.state = inner.state
	return nil
}

func (s *Store) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateRequest(ctx, req)
}

func (s *Store) GetPendingRequest(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetPendingRequest(ctx, senderID, receiverID)
}

func (s *Store) LockPendingRequest(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.LockPendingRequest(ctx, senderID, receiverID)
}

func (s *Store) DeleteRequest(ctx context.Context, senderID, receiverID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeleteRequest(ctx, senderID, receiverID)
}

func (s *Store) ListIncomingRequests(ctx context.Context, receiverID string) ([]models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ListIncomingRequests(ctx, receiverID)
}

func (s *Store) ListOutgoingRequests(ctx context.Context, senderID string) ([]models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ListOutgoingRequests(ctx, senderID)
}

func (s *Store) CreateFriendship(ctx context.Context, f *models.Friendship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateFriendship(ctx, f)
}

func (s *Store) GetFriendship(ctx context.Context, pair models.Pair) (*models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetFriendship(ctx, pair)
}

func (s *Store) DeleteFriendship(ctx context.Context, pair models.Pair) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeleteFriendship(ctx, pair)
}

func (s *Store) ListFriendIDs(ctx context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ListFriendIDs(ctx, userID)
}

func (s *Store) CreateEvent(ctx context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.CreateEvent(ctx, event)
}

func (s *Store) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetEvent(ctx, id)
}

func (s *Store) UpdateEvent(ctx context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UpdateEvent(ctx, event)
}

func (s *Store) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeleteEvent(ctx, id)
}

func (s *Store) ListEvents(ctx context.Context, page, limit int) ([]models.Event, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ListEvents(ctx, page, limit)
}

func (s *Store) AddParticipant(ctx context.Context, eventID uuid.UUID, userID string, joinedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.AddParticipant(ctx, eventID, userID, joinedAt)
}

func (s *Store) RemoveParticipant(ctx context.Context, eventID uuid.UUID, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.RemoveParticipant(ctx, eventID, userID)
}

func (s *Store) ListParticipants(ctx context.Context, eventID uuid.UUID) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ListParticipants(ctx, eventID)
}

func (s *Store) ListJoinedEventIDs(ctx context.Context, userID string) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.ListJoinedEventIDs(ctx, userID)
}

func (s *Store) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetProfile(ctx, id)
}

func (s *Store) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetProfileByUsername(ctx, username)
}

func (s *Store) GetProfilesByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.GetProfilesByIDs(ctx, ids)
}

func (s *Store) SearchByUsernamePrefix(ctx context.Context, prefix, excludeID string, limit int) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.SearchByUsernamePrefix(ctx, prefix, excludeID, limit)
}

func (s *Store) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.UpsertProfile(ctx, profile)
}
