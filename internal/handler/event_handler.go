package handler

import (
	"net/http"
	"time"

	"github.com/Stefhermann/GOpherARun/internal/auth"
	"github.com/Stefhermann/GOpherARun/internal/models"
	"github.com/Stefhermann/GOpherARun/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventResponse defines the structure for an event.
type EventResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title" example:"Sunday long run"`
	Location    string    `json:"location" example:"Riverside park"`
	Time        time.Time `json:"time"`
	Description string    `json:"description,omitempty"`
	CreatorID   string    `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newEventResponse(e models.Event) EventResponse {
	return EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Location:    e.Location,
		Time:        e.Time,
		Description: e.Description,
		CreatorID:   e.CreatorID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// CreateEventResponse is returned when an event is created.
type CreateEventResponse struct {
	ResultResponse
	Event EventResponse `json:"event"`
}

// JoinedEventsResponse lists the ids of the events the caller joined.
type JoinedEventsResponse struct {
	EventIDs []uuid.UUID `json:"event_ids"`
}

// CreateEvent godoc
// @Summary      Create an event
// @Description  Creates an event owned by the authenticated user.
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        event  body  service.EventInput  true  "Event fields"
// @Success      201 {object} CreateEventResponse
// @Failure      400 {object} ResultResponse
// @Router       /events [post]
func (h *Handler) CreateEvent(c *gin.Context) {
	var input service.EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	event, res := h.events.CreateEvent(c.Request.Context(), auth.CallerID(c), input)
	if !res.Success {
		writeResult(c, res, http.StatusCreated)
		return
	}
	c.JSON(http.StatusCreated, CreateEventResponse{
		ResultResponse: ResultResponse{Success: true, Message: res.Message},
		Event:          newEventResponse(*event),
	})
}

// ListEvents godoc
// @Summary      List events
// @Description  Gets a paginated list of events, latest first.
// @Tags         events
// @Produce      json
// @Param        page   query int false "Page number" default(1)
// @Param        limit  query int false "Items per page" default(10)
// @Success      200 {object} PaginatedResponse[EventResponse]
// @Router       /events [get]
func (h *Handler) ListEvents(c *gin.Context) {
	page, limit := pageParams(c)

	result, err := h.events.ListEvents(c.Request.Context(), page, limit)
	if err != nil {
		writeError(c, err, "Failed to fetch events")
		return
	}

	data := make([]EventResponse, 0, len(result.Events))
	for _, e := range result.Events {
		data = append(data, newEventResponse(e))
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(data, result.Total, result.Page, result.Limit))
}

// GetEvent godoc
// @Summary      Get an event by ID
// @Tags         events
// @Produce      json
// @Param        id  path  string  true  "Event ID"
// @Success      200 {object} EventResponse
// @Failure      404 {object} ErrorResponse "Event not found"
// @Router       /events/{id} [get]
func (h *Handler) GetEvent(c *gin.Context) {
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}

	event, err := h.events.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		writeError(c, err, "Event not found")
		return
	}
	c.JSON(http.StatusOK, newEventResponse(*event))
}

// UpdateEvent godoc
// @Summary      Update an event
// @Description  Only the creator can update an event.
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path  string            true  "Event ID"
// @Param        event  body  service.EventInput  true  "Event fields"
// @Success      200 {object} ResultResponse
// @Failure      403 {object} ResultResponse "Not the creator"
// @Failure      404 {object} ResultResponse "Event not found"
// @Router       /events/{id} [put]
func (h *Handler) UpdateEvent(c *gin.Context) {
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}

	var input service.EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	res := h.events.UpdateEvent(c.Request.Context(), auth.CallerID(c), eventID, input)
	writeResult(c, res, http.StatusOK)
}

// DeleteEvent godoc
// @Summary      Delete an event
// @Description  Only the creator can delete an event. Participants are removed with it.
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Event ID"
// @Success      200 {object} ResultResponse
// @Failure      403 {object} ResultResponse "Not the creator"
// @Failure      404 {object} ResultResponse "Event not found"
// @Router       /events/{id} [delete]
func (h *Handler) DeleteEvent(c *gin.Context) {
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}
	res := h.events.DeleteEvent(c.Request.Context(), auth.CallerID(c), eventID)
	writeResult(c, res, http.StatusOK)
}

// JoinEvent godoc
// @Summary      Join an event
// @Description  Joining an event twice succeeds without a second registration.
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Event ID"
// @Success      200 {object} ResultResponse
// @Failure      404 {object} ResultResponse "Event not found"
// @Router       /events/{id}/join [post]
func (h *Handler) JoinEvent(c *gin.Context) {
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}
	res := h.events.JoinEvent(c.Request.Context(), auth.CallerID(c), eventID)
	writeResult(c, res, http.StatusOK)
}

// LeaveEvent godoc
// @Summary      Leave an event
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Event ID"
// @Success      200 {object} ResultResponse
// @Router       /events/{id}/leave [post]
func (h *Handler) LeaveEvent(c *gin.Context) {
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}
	res := h.events.LeaveEvent(c.Request.Context(), auth.CallerID(c), eventID)
	writeResult(c, res, http.StatusOK)
}

// GetParticipants godoc
// @Summary      List the participants of an event
// @Tags         events
// @Produce      json
// @Param        id  path  string  true  "Event ID"
// @Success      200 {object} service.ParticipantList
// @Failure      404 {object} ErrorResponse "Event not found"
// @Router       /events/{id}/participants [get]
func (h *Handler) GetParticipants(c *gin.Context) {
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}

	list, err := h.events.ListParticipants(c.Request.Context(), eventID)
	if err != nil {
		writeError(c, err, "Event not found")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetJoinedEvents godoc
// @Summary      List the events the caller joined
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} JoinedEventsResponse
// @Router       /events/joined [get]
func (h *Handler) GetJoinedEvents(c *gin.Context) {
	ids, err := h.events.JoinedEventIDs(c.Request.Context(), auth.CallerID(c))
	if err != nil {
		writeError(c, err, "Failed to fetch joined events")
		return
	}
	c.JSON(http.StatusOK, JoinedEventsResponse{EventIDs: ids})
}
