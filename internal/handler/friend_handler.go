package handler

import (
	"net/http"

	"github.com/Stefhermann/GOpherARun/internal/auth"
	"github.com/gin-gonic/gin"
)

// FriendStatusResponse is the relationship between the caller and another user.
type FriendStatusResponse struct {
	Status string `json:"status" example:"outgoing_request"`
}

// SendFriendRequest godoc
// @Summary      Send a friend request
// @Description  Sends a friend request from the authenticated user to another user.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Receiver user ID"
// @Success      201 {object} ResultResponse
// @Failure      400 {object} ResultResponse "Cannot send a request to yourself"
// @Failure      404 {object} ResultResponse "User not found"
// @Failure      409 {object} ResultResponse "Request already sent or already friends"
// @Router       /friends/{id}/request [post]
func (h *Handler) SendFriendRequest(c *gin.Context) {
	res := h.friends.SendFriendRequest(c.Request.Context(), auth.CallerID(c), c.Param("id"))
	writeResult(c, res, http.StatusCreated)
}

// CancelFriendRequest godoc
// @Summary      Cancel a sent friend request
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Receiver user ID"
// @Success      200 {object} ResultResponse
// @Router       /friends/{id}/cancel [post]
func (h *Handler) CancelFriendRequest(c *gin.Context) {
	res := h.friends.CancelFriendRequest(c.Request.Context(), auth.CallerID(c), c.Param("id"))
	writeResult(c, res, http.StatusOK)
}

// AcceptFriendRequest godoc
// @Summary      Accept a friend request
// @Description  Accepts the pending request the given user sent to the authenticated user.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Sender user ID"
// @Success      200 {object} ResultResponse
// @Failure      404 {object} ResultResponse "No valid friend request found"
// @Failure      409 {object} ResultResponse "Already friends"
// @Router       /friends/{id}/accept [post]
func (h *Handler) AcceptFriendRequest(c *gin.Context) {
	res := h.friends.AcceptFriendRequest(c.Request.Context(), auth.CallerID(c), c.Param("id"))
	writeResult(c, res, http.StatusOK)
}

// DeclineFriendRequest godoc
// @Summary      Decline a friend request
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Sender user ID"
// @Success      200 {object} ResultResponse
// @Router       /friends/{id}/decline [post]
func (h *Handler) DeclineFriendRequest(c *gin.Context) {
	res := h.friends.DeclineFriendRequest(c.Request.Context(), auth.CallerID(c), c.Param("id"))
	writeResult(c, res, http.StatusOK)
}

// RemoveFriend godoc
// @Summary      Remove a friend
// @Description  Ends the friendship for both users.
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Friend user ID"
// @Success      200 {object} ResultResponse
// @Failure      404 {object} ResultResponse "Not friends"
// @Router       /friends/{id} [delete]
func (h *Handler) RemoveFriend(c *gin.Context) {
	res := h.friends.RemoveFriend(c.Request.Context(), auth.CallerID(c), c.Param("id"))
	writeResult(c, res, http.StatusOK)
}

// GetFriendStatus godoc
// @Summary      Get the friendship status with a user
// @Description  One of friends, outgoing_request, incoming_request or none. Anonymous callers always get none.
// @Tags         friendship
// @Produce      json
// @Param        id  path  string  true  "Target user ID"
// @Success      200 {object} FriendStatusResponse
// @Router       /friends/{id}/status [get]
func (h *Handler) GetFriendStatus(c *gin.Context) {
	status := h.friends.FriendStatus(c.Request.Context(), auth.CallerID(c), c.Param("id"))
	c.JSON(http.StatusOK, FriendStatusResponse{Status: string(status)})
}

// GetFriends godoc
// @Summary      List friends
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} models.PublicProfile
// @Router       /friends [get]
func (h *Handler) GetFriends(c *gin.Context) {
	friends, err := h.friends.FriendsList(c.Request.Context(), auth.CallerID(c))
	if err != nil {
		writeError(c, err, "Failed to fetch friends")
		return
	}
	c.JSON(http.StatusOK, friends)
}

// GetIncomingRequests godoc
// @Summary      List friend requests waiting for an answer
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} service.PendingRequest
// @Router       /friends/requests/incoming [get]
func (h *Handler) GetIncomingRequests(c *gin.Context) {
	reqs, err := h.friends.IncomingRequests(c.Request.Context(), auth.CallerID(c))
	if err != nil {
		writeError(c, err, "Failed to fetch requests")
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// GetOutgoingRequests godoc
// @Summary      List sent friend requests
// @Tags         friendship
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} service.PendingRequest
// @Router       /friends/requests/outgoing [get]
func (h *Handler) GetOutgoingRequests(c *gin.Context) {
	reqs, err := h.friends.OutgoingRequests(c.Request.Context(), auth.CallerID(c))
	if err != nil {
		writeError(c, err, "Failed to fetch requests")
		return
	}
	c.JSON(http.StatusOK, reqs)
}
