package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserIDKey is the gin context key holding the caller id.
const UserIDKey = "userID"

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(provider IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be in Bearer format"})
			return
		}

		userID, err := provider.ResolveToken(c.Request.Context(), token)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "AuthMiddleware",
				"path":     c.FullPath(),
			}).WithError(err).Debug("Token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// OptionalAuthMiddleware sets the caller id when a valid token is present
// but lets anonymous requests through.
func OptionalAuthMiddleware(provider IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if userID, err := provider.ResolveToken(c.Request.Context(), token); err == nil {
				c.Set(UserIDKey, userID)
			}
		}
		c.Next()
	}
}

// CallerID returns the caller id set by one of the middlewares, or "".
func CallerID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
