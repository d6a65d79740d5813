// Package identity verifies Google-issued ID tokens and exposes the trusted
// claim set the rest of the system works from.
package identity

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

// ErrRejected is the uniform rejection for any verification failure. Callers
// must not be able to distinguish signature, audience, expiry, or key-fetch
// failures from each other.
var ErrRejected = errors.New("identity token rejected")

// Claims is the fixed-shape trusted claim set extracted from a verified
// token. Picture may be empty; the other fields are always populated on
// success.
type Claims struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// Verifier validates a raw ID token into trusted claims.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Claims, error)
}

// GoogleVerifier validates Google ID tokens against this application's
// OAuth client ID.
type GoogleVerifier struct {
	clientID  string
	validator *idtoken.Validator
}

// NewGoogleVerifier constructs a verifier. The validator caches Google's
// public keys internally and refreshes them as they rotate.
func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, errors.New("google client ID is required")
	}
	validator, err := idtoken.NewValidator(ctx)
	if err != nil {
		return nil, fmt.Errorf("create idtoken validator: %w", err)
	}
	return &GoogleVerifier{clientID: clientID, validator: validator}, nil
}

// Verify checks signature, audience, and expiry. Every failure collapses to
// ErrRejected; the underlying cause is wrapped for logs only.
func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	if rawToken == "" {
		return nil, ErrRejected
	}

	payload, err := v.validator.Validate(ctx, rawToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRejected, err)
	}

	claims := &Claims{
		Subject: payload.Subject,
		Email:   stringClaim(payload, "email"),
		Name:    stringClaim(payload, "name"),
		Picture: stringClaim(payload, "picture"),
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, ErrRejected
	}
	return claims, nil
}

func stringClaim(payload *idtoken.Payload, key string) string {
	value, _ := payload.Claims[key].(string)
	return value
}
