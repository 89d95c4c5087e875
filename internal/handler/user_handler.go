package handler

import (
	"net/http"
	"time"

	"github.com/Stefhermann/GOpherARun/internal/auth"
	"github.com/Stefhermann/GOpherARun/internal/models"
	"github.com/Stefhermann/GOpherARun/internal/service"
	"github.com/gin-gonic/gin"
)

// ProfileResponse is the full public profile of a user.
type ProfileResponse struct {
	ID        string    `json:"id" example:"8c6d7e0a-3f7b-4b1e-9a43-1d2b8b0f6c11"`
	Username  string    `json:"username" example:"alice"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Biography string    `json:"biography,omitempty"`
	Pronouns  string    `json:"pronouns,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newProfileResponse(p models.Profile) ProfileResponse {
	return ProfileResponse{
		ID:        p.ID,
		Username:  p.Username,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Biography: p.Biography,
		Pronouns:  p.Pronouns,
		CreatedAt: p.CreatedAt,
	}
}

// SearchUsers godoc
// @Summary      Search users by username
// @Description  Case-insensitive username prefix search. Returns at most 10 users and never includes the caller. Blank queries and anonymous callers get an empty list.
// @Tags         users
// @Produce      json
// @Param        q  query  string  false  "Username prefix"
// @Success      200 {array} models.PublicProfile
// @Router       /users [get]
func (h *Handler) SearchUsers(c *gin.Context) {
	users := h.directory.SearchUsers(c.Request.Context(), auth.CallerID(c), c.Query("q"))
	c.JSON(http.StatusOK, users)
}

// GetProfile godoc
// @Summary      Get a user's profile
// @Tags         users
// @Produce      json
// @Param        username  path  string  true  "Username"
// @Success      200 {object} ProfileResponse
// @Failure      404 {object} ErrorResponse "User not found"
// @Router       /users/{username} [get]
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.directory.ProfileByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(*profile))
}

// UpdateMe godoc
// @Summary      Create or update the caller's profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        profile  body  service.ProfileInput  true  "Profile fields"
// @Success      200 {object} ProfileResponse
// @Failure      400 {object} ResultResponse
// @Failure      409 {object} ResultResponse "Username is already taken"
// @Router       /users/me [put]
func (h *Handler) UpdateMe(c *gin.Context) {
	var input service.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	profile, res := h.directory.UpdateProfile(c.Request.Context(), auth.CallerID(c), input)
	if !res.Success {
		writeResult(c, res, http.StatusOK)
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(*profile))
}
