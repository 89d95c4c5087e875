package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/Stefhermann/GOpherARun/internal/models"
	"github.com/Stefhermann/GOpherARun/internal/repository"
	"github.com/google/uuid"
)

var errCheckViolation = errors.New("check constraint violated")

type requestKey struct {
	sender   string
	receiver string
}

type participantKey struct {
	event uuid.UUID
	user  string
}

// state holds the tables. It applies the same constraints as the postgres
// schema and is never used concurrently: Store serialises access and
// transactions work on clones.
type state struct {
	profiles     map[string]models.Profile
	requests     map[requestKey]models.FriendRequest
	friends      map[models.Pair]models.Friendship
	events       map[uuid.UUID]models.Event
	participants map[participantKey]models.EventParticipant
}

func newState() *state {
	return &state{
		profiles:     make(map[string]models.Profile),
		requests:     make(map[requestKey]models.FriendRequest),
		friends:      make(map[models.Pair]models.Friendship),
		events:       make(map[uuid.UUID]models.Event),
		participants: make(map[participantKey]models.EventParticipant),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	for k, v := range s.friends {
		c.friends[k] = v
	}
	for k, v := range s.events {
		c.events[k] = v
	}
	for k, v := range s.participants {
		c.participants[k] = v
	}
	return c
}

// --- relationships ---

func (s *state) CreateRequest(_ context.Context, req *models.FriendRequest) error {
	if req.SenderID == req.ReceiverID {
		return errCheckViolation
	}
	if _, ok := s.profiles[req.SenderID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.profiles[req.ReceiverID]; !ok {
		return repository.ErrNotFound
	}
	key := requestKey{sender: req.SenderID, receiver: req.ReceiverID}
	if _, ok := s.requests[key]; ok {
		return repository.ErrConflict
	}
	req.Status = models.StatusPending
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	s.requests[key] = *req
	return nil
}

func (s *state) GetPendingRequest(_ context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	req, ok := s.requests[requestKey{sender: senderID, receiver: receiverID}]
	if !ok || req.Status != models.StatusPending {
		return nil, repository.ErrNotFound
	}
	return &req, nil
}

// LockPendingRequest needs no row lock here: transactions already hold the
// store mutex for their whole run.
func (s *state) LockPendingRequest(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	return s.GetPendingRequest(ctx, senderID, receiverID)
}

func (s *state) DeleteRequest(_ context.Context, senderID, receiverID string) (int64, error) {
	key := requestKey{sender: senderID, receiver: receiverID}
	if _, ok := s.requests[key]; !ok {
		return 0, nil
	}
	delete(s.requests, key)
	return 1, nil
}

func (s *state) ListIncomingRequests(_ context.Context, receiverID string) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	for key, req := range s.requests {
		if key.receiver == receiverID && req.Status == models.StatusPending {
			req.Sender = s.profiles[key.sender]
			out = append(out, req)
		}
	}
	sortRequests(out)
	return out, nil
}

func (s *state) ListOutgoingRequests(_ context.Context, senderID string) ([]models.FriendRequest, error) {
	var out []models.FriendRequest
	for key, req := range s.requests {
		if key.sender == senderID && req.Status == models.StatusPending {
			req.Receiver = s.profiles[key.receiver]
			out = append(out, req)
		}
	}
	sortRequests(out)
	return out, nil
}

func sortRequests(reqs []models.FriendRequest) {
	sort.Slice(reqs, func(i, j int) bool {
		if !reqs[i].CreatedAt.Equal(reqs[j].CreatedAt) {
			return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
		}
		if reqs[i].SenderID != reqs[j].SenderID {
			return reqs[i].SenderID < reqs[j].SenderID
		}
		return reqs[i].ReceiverID < reqs[j].ReceiverID
	})
}

func (s *state) CreateFriendship(_ context.Context, f *models.Friendship) error {
	if f.UserLow >= f.UserHigh {
		return errCheckViolation
	}
	if _, ok := s.profiles[f.UserLow]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.profiles[f.UserHigh]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.friends[f.Pair()]; ok {
		return repository.ErrConflict
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	s.friends[f.Pair()] = *f
	return nil
}

func (s *state) GetFriendship(_ context.Context, pair models.Pair) (*models.Friendship, error) {
	f, ok := s.friends[pair]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (s *state) DeleteFriendship(_ context.Context, pair models.Pair) (int64, error) {
	if _, ok := s.friends[pair]; !ok {
		return 0, nil
	}
	delete(s.friends, pair)
	return 1, nil
}

func (s *state) ListFriendIDs(_ context.Context, userID string) ([]string, error) {
	ids := []string{}
	for pair := range s.friends {
		if pair.Low == userID || pair.High == userID {
			ids = append(ids, pair.Other(userID))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// --- events ---

func (s *state) CreateEvent(_ context.Context, event *models.Event) error {
	if _, ok := s.profiles[event.CreatorID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.events[event.ID]; ok {
		return repository.ErrConflict
	}
	stored := *event
	stored.Creator = models.Profile{}
	stored.Participants = nil
	s.events[event.ID] = stored
	return nil
}

func (s *state) GetEvent(_ context.Context, id uuid.UUID) (*models.Event, error) {
	event, ok := s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &event, nil
}

func (s *state) UpdateEvent(_ context.Context, event *models.Event) error {
	stored, ok := s.events[event.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Title = event.Title
	stored.Location = event.Location
	stored.Time = event.Time
	stored.Description = event.Description
	stored.UpdatedAt = event.UpdatedAt
	s.events[event.ID] = stored
	return nil
}

func (s *state) DeleteEvent(_ context.Context, id uuid.UUID) error {
	if _, ok := s.events[id]; !ok {
		return repository.ErrNotFound
	}
	for key := range s.participants {
		if key.event == id {
			delete(s.participants, key)
		}
	}
	delete(s.events, id)
	return nil
}

func (s *state) ListEvents(_ context.Context, page, limit int) ([]models.Event, int64, error) {
	all := make([]models.Event, 0, len(s.events))
	for _, e := range s.events {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Time.Equal(all[j].Time) {
			return all[i].Time.After(all[j].Time)
		}
		return all[i].ID.String() < all[j].ID.String()
	})

	total := int64(len(all))
	offset := (page - 1) * limit
	if offset >= len(all) {
		return []models.Event{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *state) AddParticipant(_ context.Context, eventID uuid.UUID, userID string, joinedAt time.Time) (bool, error) {
	if _, ok := s.events[eventID]; !ok {
		return false, repository.ErrNotFound
	}
	if _, ok := s.profiles[userID]; !ok {
		return false, repository.ErrNotFound
	}
	key := participantKey{event: eventID, user: userID}
	if _, ok := s.participants[key]; ok {
		return false, nil
	}
	s.participants[key] = models.EventParticipant{EventID: eventID, UserID: userID, JoinedAt: joinedAt}
	return true, nil
}

func (s *state) RemoveParticipant(_ context.Context, eventID uuid.UUID, userID string) (int64, error) {
	key := participantKey{event: eventID, user: userID}
	if _, ok := s.participants[key]; !ok {
		return 0, nil
	}
	delete(s.participants, key)
	return 1, nil
}

func (s *state) ListParticipants(_ context.Context, eventID uuid.UUID) ([]models.Profile, error) {
	var rows []models.EventParticipant
	for key, p := range s.participants {
		if key.event == eventID {
			rows = append(rows, p)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].JoinedAt.Equal(rows[j].JoinedAt) {
			return rows[i].JoinedAt.Before(rows[j].JoinedAt)
		}
		return rows[i].UserID < rows[j].UserID
	})

	profiles := make([]models.Profile, 0, len(rows))
	for _, row := range rows {
		if p, ok := s.profiles[row.UserID]; ok {
			profiles = append(profiles, p)
		}
	}
	return profiles, nil
}

func (s *state) ListJoinedEventIDs(_ context.Context, userID string) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	for key := range s.participants {
		if key.user == userID {
			ids = append(ids, key.event)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

// --- profiles ---

func (s *state) GetProfile(_ context.Context, id string) (*models.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (s *state) GetProfileByUsername(_ context.Context, username string) (*models.Profile, error) {
	for _, p := range s.profiles {
		if strings.EqualFold(p.Username, username) {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *state) GetProfilesByIDs(_ context.Context, ids []string) ([]models.Profile, error) {
	out := []models.Profile{}
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out = append(out, p)
		}
	}
	sortProfiles(out)
	return out, nil
}

func (s *state) SearchByUsernamePrefix(_ context.Context, prefix, excludeID string, limit int) ([]models.Profile, error) {
	prefix = strings.ToLower(prefix)
	out := []models.Profile{}
	for _, p := range s.profiles {
		if p.ID == excludeID {
			continue
		}
		if strings.HasPrefix(strings.ToLower(p.Username), prefix) {
			out = append(out, p)
		}
	}
	sortProfiles(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *state) UpsertProfile(_ context.Context, profile *models.Profile) error {
	for id, p := range s.profiles {
		if id != profile.ID && strings.EqualFold(p.Username, profile.Username) {
			return repository.ErrConflict
		}
	}
	now := time.Now().UTC()
	if existing, ok := s.profiles[profile.ID]; ok {
		profile.CreatedAt = existing.CreatedAt
	} else if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = now
	}
	s.profiles[profile.ID] = *profile
	return nil
}

func sortProfiles(ps []models.Profile) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Username < ps[j].Username })
}
