package handler

import (
	"errors"
	"net/http"

	"github.com/Stefhermann/GOpherARun/internal/auth"
	"github.com/Stefhermann/GOpherARun/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// ResultResponse is the body of every mutation.
type ResultResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Friend request sent."`
}

// Handler serves the HTTP API on top of the services.
type Handler struct {
	friends   *service.FriendshipService
	events    *service.EventService
	directory *service.DirectoryService
}

// New creates a new Handler.
func New(friends *service.FriendshipService, events *service.EventService, directory *service.DirectoryService) *Handler {
	return &Handler{friends: friends, events: events, directory: directory}
}

// RegisterRoutes mounts the API under rg. Reads that make sense for
// anonymous visitors use the optional middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, provider auth.IdentityProvider) {
	required := auth.AuthMiddleware(provider)
	optional := auth.OptionalAuthMiddleware(provider)

	friends := rg.Group("/friends")
	{
		friends.GET("", required, h.GetFriends)
		friends.GET("/requests/incoming", required, h.GetIncomingRequests)
		friends.GET("/requests/outgoing", required, h.GetOutgoingRequests)
		friends.GET("/:id/status", optional, h.GetFriendStatus)
		friends.POST("/:id/request", required, h.SendFriendRequest)
		friends.POST("/:id/cancel", required, h.CancelFriendRequest)
		friends.POST("/:id/accept", required, h.AcceptFriendRequest)
		friends.POST("/:id/decline", required, h.DeclineFriendRequest)
		friends.DELETE("/:id", required, h.RemoveFriend)
	}

	users := rg.Group("/users")
	{
		users.GET("", optional, h.SearchUsers)
		users.PUT("/me", required, h.UpdateMe)
		users.GET("/:username", h.GetProfile)
	}

	events := rg.Group("/events")
	{
		events.POST("", required, h.CreateEvent)
		events.GET("", h.ListEvents)
		events.GET("/joined", required, h.GetJoinedEvents)
		events.GET("/:id", h.GetEvent)
		events.PUT("/:id", required, h.UpdateEvent)
		events.DELETE("/:id", required, h.DeleteEvent)
		events.POST("/:id/join", required, h.JoinEvent)
		events.POST("/:id/leave", required, h.LeaveEvent)
		events.GET("/:id/participants", h.GetParticipants)
	}
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrSelfOperation), errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeResult(c *gin.Context, res service.Result, successStatus int) {
	status := successStatus
	if !res.Success {
		status = statusFor(res.Err)
	}
	c.JSON(status, ResultResponse{Success: res.Success, Message: res.Message})
}

// writeError replies with message unless the kind calls for a fixed one.
func writeError(c *gin.Context, err error, message string) {
	status := statusFor(err)
	switch status {
	case http.StatusUnauthorized:
		message = "User not authenticated"
	case http.StatusInternalServerError:
		message = "Internal server error"
	}
	c.JSON(status, ErrorResponse{Error: message})
}

func parseEventID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid event ID"})
		return uuid.Nil, false
	}
	return id, true
}
