package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/Stefhermann/GOpherARun/internal/models"
	"github.com/Stefhermann/GOpherARun/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// SearchLimit caps the number of search results.
const SearchLimit = 10

// ProfileInput carries the editable fields of the caller's profile.
type ProfileInput struct {
	Username  string `json:"username" validate:"required,min=3,max=30,username"`
	FirstName string `json:"first_name" validate:"max=255"`
	LastName  string `json:"last_name" validate:"max=255"`
	Biography string `json:"biography" validate:"max=1000"`
	Pronouns  string `json:"pronouns" validate:"max=64"`
}

// DirectoryService looks users up.
type DirectoryService struct {
	profiles repository.ProfileRepository
	validate *validator.Validate
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(profiles repository.ProfileRepository) *DirectoryService {
	v := validator.New()
	if err := v.RegisterValidation("username", validUsername); err != nil {
		panic(err)
	}
	return &DirectoryService{profiles: profiles, validate: v}
}

// validUsername rejects any whitespace rune.
func validUsername(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsSpace) < 0
}

// SearchUsers matches usernames starting with query, ignoring case. It never
// fails: blank queries, anonymous callers and store errors all give an empty list.
func (s *DirectoryService) SearchUsers(ctx context.Context, callerID, query string) []models.PublicProfile {
	query = strings.TrimSpace(query)
	if callerID == "" || query == "" {
		return []models.PublicProfile{}
	}

	profiles, err := s.profiles.SearchByUsernamePrefix(ctx, query, callerID, SearchLimit)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "SearchUsers",
			"user":     callerID,
		}).WithError(err).Warn("User search failed")
		return []models.PublicProfile{}
	}
	return publicProfiles(profiles)
}

// ProfileByUsername returns the full profile of a user.
func (s *DirectoryService) ProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	profile, err := s.profiles.GetProfileByUsername(ctx, username)
	if err != nil {
		return nil, readError("get profile", err)
	}
	return profile, nil
}

// UpdateProfile creates or replaces the caller's own profile.
func (s *DirectoryService) UpdateProfile(ctx context.Context, callerID string, input ProfileInput) (*models.Profile, Result) {
	if callerID == "" {
		return nil, fail(ErrUnauthenticated, msgAuthRequired)
	}
	input.Username = strings.TrimSpace(input.Username)
	if err := s.validate.Struct(input); err != nil {
		return nil, fail(ErrInvalidInput, "Username must be 3 to 30 characters without spaces.")
	}

	profile := &models.Profile{
		ID:        callerID,
		Username:  input.Username,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Biography: input.Biography,
		Pronouns:  input.Pronouns,
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fail(ErrConflict, "Username is already taken.")
		}
		logrus.WithFields(logrus.Fields{
			"function": "UpdateProfile",
			"user":     callerID,
		}).WithError(err).Error("Failed to save profile")
		return nil, fail(ErrStoreFailure, "Failed to save profile.")
	}
	return profile, succeed("Profile updated.")
}
