// Package session holds the short-lived extension pairing sessions: created
// by initiate, redeemed exactly once by complete, dead after ten minutes.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// PendingSession is the pairing ticket. It lives only between initiate and
// complete; durability across restarts is explicitly not a goal.
type PendingSession struct {
	Token       string    `json:"token"`
	ExtensionID string    `json:"extensionId"`
	CallbackURL string    `json:"callbackUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Store is the pairing session contract.
//
// Error Contract:
// - Consume returns sentinel.ErrNotFound for unknown tokens and
//   sentinel.ErrExpired for known-but-stale ones. Expired entries are
//   rejected, not removed; DeleteExpired reclaims them.
// - Consume must be atomic with respect to concurrent callers: a token is
//   redeemable at most once.
type Store interface {
	Create(ctx context.Context, s *PendingSession) error
	Consume(ctx context.Context, token string, now time.Time) (*PendingSession, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// NewToken returns a 256-bit random session token. The entropy source is
// crypto/rand; failure is an error, never a weaker fallback.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
