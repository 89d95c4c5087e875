// Package auth resolves bearer tokens to caller ids. Login and token issuance
// belong to the identity provider; this service only verifies.
package auth

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned for tokens that cannot be verified.
var ErrInvalidToken = errors.New("invalid or expired token")

// IdentityProvider maps a bearer token to the id of the user it was issued to.
type IdentityProvider interface {
	ResolveToken(ctx context.Context, token string) (string, error)
}
