package auth

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseProvider verifies Firebase ID tokens and uses the Firebase UID as user id.
type FirebaseProvider struct {
	verifier idTokenVerifier
}

// NewFirebaseProvider initializes the Firebase app from a service account file.
func NewFirebaseProvider(ctx context.Context, credentialsPath string) (*FirebaseProvider, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase auth client: %w", err)
	}

	logrus.Info("Firebase auth client initialized")
	return &FirebaseProvider{verifier: client}, nil
}

func (p *FirebaseProvider) ResolveToken(ctx context.Context, idToken string) (string, error) {
	token, err := p.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if token.UID == "" {
		return "", fmt.Errorf("%w: missing uid", ErrInvalidToken)
	}
	return token.UID, nil
}
