package service

import (
	"context"
	"errors"
	"time"

	"github.com/Stefhermann/GOpherARun/internal/broker"
	"github.com/Stefhermann/GOpherARun/internal/models"
	"github.com/Stefhermann/GOpherARun/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EventInput carries the editable fields of an event.
type EventInput struct {
	Title       string    `json:"title" validate:"required,max=255"`
	Location    string    `json:"location" validate:"required,max=255"`
	Time        time.Time `json:"time" validate:"required"`
	Description string    `json:"description" validate:"max=4000"`
}

// Participant is the public view of an event participant.
type Participant struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ParticipantList is the participant roster of an event. Count is always len(Participants).
type ParticipantList struct {
	Participants []Participant `json:"participants"`
	Count        int           `json:"count"`
}

// EventPage is one page of events.
type EventPage struct {
	Events []models.Event
	Total  int64
	Page   int
	Limit  int
}

// EventService manages events and their participants.
type EventService struct {
	events    repository.EventRepository
	publisher broker.Publisher
	validate  *validator.Validate
	now       func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(events repository.EventRepository, publisher broker.Publisher) *EventService {
	if publisher == nil {
		publisher = broker.NoopPublisher{}
	}
	return &EventService{
		events:    events,
		publisher: publisher,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateEvent stores a new event owned by the caller.
func (s *EventService) CreateEvent(ctx context.Context, callerID string, input EventInput) (*models.Event, Result) {
	if callerID == "" {
		return nil, fail(ErrUnauthenticated, msgAuthRequired)
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, fail(ErrInvalidInput, "Title, location and time are required.")
	}

	now := s.now()
	event := &models.Event{
		ID:          uuid.New(),
		Title:       input.Title,
		Location:    input.Location,
		Time:        input.Time.UTC(),
		Description: input.Description,
		CreatorID:   callerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	log := logrus.WithFields(logrus.Fields{
		"function": "CreateEvent",
		"creator":  callerID,
		"event_id": event.ID,
	})

	if err := s.events.CreateEvent(ctx, event); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fail(ErrNotFound, "Create a profile before organising events.")
		}
		log.WithError(err).Error("Failed to create event")
		return nil, fail(ErrStoreFailure, "Failed to create event. Please try again.")
	}

	log.Info("Event created")
	publish(ctx, s.publisher, broker.Activity{Kind: broker.EventCreated, ActorID: callerID, EventID: event.ID.String()})
	return event, succeed("Event created successfully!")
}

// UpdateEvent replaces the editable fields. Only the creator may update.
func (s *EventService) UpdateEvent(ctx context.Context, callerID string, eventID uuid.UUID, input EventInput) Result {
	if callerID == "" {
		return fail(ErrUnauthenticated, msgAuthRequired)
	}
	if err := s.validate.Struct(input); err != nil {
		return fail(ErrInvalidInput, "Title, location and time are required.")
	}

	log := logrus.WithFields(logrus.Fields{
		"function": "UpdateEvent",
		"user":     callerID,
		"event_id": eventID,
	})

	event, res := s.ownedEvent(ctx, callerID, eventID, "Only the creator can update this event.")
	if !res.Success {
		return res
	}

	event.Title = input.Title
	event.Location = input.Location
	event.Time = input.Time.UTC()
	event.Description = input.Description
	event.UpdatedAt = s.now()

	if err := s.events.UpdateEvent(ctx, event); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(ErrNotFound, "Event not found.")
		}
		log.WithError(err).Error("Failed to update event")
		return fail(ErrStoreFailure, "Failed to update event. Please try again.")
	}

	publish(ctx, s.publisher, broker.Activity{Kind: broker.EventUpdated, ActorID: callerID, EventID: eventID.String()})
	return succeed("Event updated successfully!")
}

// DeleteEvent removes the event and all of its participants. Only the creator may delete.
func (s *EventService) DeleteEvent(ctx context.Context, callerID string, eventID uuid.UUID) Result {
	if callerID == "" {
		return fail(ErrUnauthenticated, msgAuthRequired)
	}

	if _, res := s.ownedEvent(ctx, callerID, eventID, "Only the creator can delete this event."); !res.Success {
		return res
	}

	if err := s.events.DeleteEvent(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(ErrNotFound, "Event not found.")
		}
		logrus.WithFields(logrus.Fields{
			"function": "DeleteEvent",
			"user":     callerID,
			"event_id": eventID,
		}).WithError(err).Error("Failed to delete event")
		return fail(ErrStoreFailure, "Failed to delete event. Please try again.")
	}

	publish(ctx, s.publisher, broker.Activity{Kind: broker.EventDeleted, ActorID: callerID, EventID: eventID.String()})
	return succeed("Event deleted successfully!")
}

func (s *EventService) ownedEvent(ctx context.Context, callerID string, eventID uuid.UUID, deniedMsg string) (*models.Event, Result) {
	event, err := s.events.GetEvent(ctx, eventID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, fail(ErrNotFound, "Event not found.")
	case err != nil:
		logrus.WithFields(logrus.Fields{
			"function": "ownedEvent",
			"event_id": eventID,
		}).WithError(err).Error("Failed to load event")
		return nil, fail(ErrStoreFailure, "An unexpected error occurred. Please try again.")
	}
	if event.CreatorID != callerID {
		return nil, fail(ErrPermissionDenied, deniedMsg)
	}
	return event, succeed("")
}

// GetEvent returns a single event.
func (s *EventService) GetEvent(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, readError("get event", err)
	}
	return event, nil
}

// ListEvents returns one page of events, latest first.
func (s *EventService) ListEvents(ctx context.Context, page, limit int) (EventPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	events, total, err := s.events.ListEvents(ctx, page, limit)
	if err != nil {
		return EventPage{Page: page, Limit: limit}, readError("list events", err)
	}
	return EventPage{Events: events, Total: total, Page: page, Limit: limit}, nil
}

// JoinEvent adds the caller to the event. Joining twice succeeds without
// adding a second row.
func (s *EventService) JoinEvent(ctx context.Context, callerID string, eventID uuid.UUID) Result {
	if callerID == "" {
		return fail(ErrUnauthenticated, msgAuthRequired)
	}

	log := logrus.WithFields(logrus.Fields{
		"function": "JoinEvent",
		"user":     callerID,
		"event_id": eventID,
	})

	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(ErrNotFound, "Event not found.")
		}
		log.WithError(err).Error("Failed to load event")
		return fail(ErrStoreFailure, "Failed to join event.")
	}

	added, err := s.events.AddParticipant(ctx, eventID, callerID, s.now())
	switch {
	case errors.Is(err, repository.ErrNotFound):
		// The event existed a moment ago, so unless it was deleted since,
		// the caller has no profile.
		if _, err := s.events.GetEvent(ctx, eventID); errors.Is(err, repository.ErrNotFound) {
			return fail(ErrNotFound, "Event not found.")
		}
		return fail(ErrNotFound, "Create a profile before joining events.")
	case err != nil:
		log.WithError(err).Error("Failed to add participant")
		return fail(ErrStoreFailure, "Failed to join event.")
	case !added:
		return succeed("You have already joined this event.")
	}

	log.Info("User joined event")
	publish(ctx, s.publisher, broker.Activity{Kind: broker.EventJoined, ActorID: callerID, EventID: eventID.String()})
	return succeed("Event joined successfully!")
}

// LeaveEvent removes the caller from the event. Leaving an event the caller
// never joined succeeds.
func (s *EventService) LeaveEvent(ctx context.Context, callerID string, eventID uuid.UUID) Result {
	if callerID == "" {
		return fail(ErrUnauthenticated, msgAuthRequired)
	}

	n, err := s.events.RemoveParticipant(ctx, eventID, callerID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "LeaveEvent",
			"user":     callerID,
			"event_id": eventID,
		}).WithError(err).Error("Failed to remove participant")
		return fail(ErrStoreFailure, "Failed to leave event.")
	}

	if n > 0 {
		publish(ctx, s.publisher, broker.Activity{Kind: broker.EventLeft, ActorID: callerID, EventID: eventID.String()})
	}
	return succeed("Successfully left event.")
}

// ListParticipants returns the roster of an existing event.
func (s *EventService) ListParticipants(ctx context.Context, eventID uuid.UUID) (ParticipantList, error) {
	empty := ParticipantList{Participants: []Participant{}}

	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		return empty, readError("get event", err)
	}
	profiles, err := s.events.ListParticipants(ctx, eventID)
	if err != nil {
		return empty, readError("list participants", err)
	}

	list := ParticipantList{Participants: make([]Participant, 0, len(profiles))}
	for _, p := range profiles {
		list.Participants = append(list.Participants, Participant{ID: p.ID, Username: p.Username})
	}
	list.Count = len(list.Participants)
	return list, nil
}

// JoinedEventIDs returns the ids of the events the caller has joined.
func (s *EventService) JoinedEventIDs(ctx context.Context, callerID string) ([]uuid.UUID, error) {
	if callerID == "" {
		return []uuid.UUID{}, ErrUnauthenticated
	}
	ids, err := s.events.ListJoinedEventIDs(ctx, callerID)
	if err != nil {
		return []uuid.UUID{}, readError("list joined events", err)
	}
	return ids, nil
}
