package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the lifetime of tokens minted by GenerateToken when ttl is zero.
const DefaultTTL = 7 * 24 * time.Hour

// GenerateToken creates an HS256 token for userID. It is used by local
// tooling and tests; production tokens come from the identity provider.
func GenerateToken(secret, userID string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
