// Package service orchestrates the three authentication flows: direct Google
// sign-in, bearer-token introspection, and extension pairing.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"greensquirrel/internal/auth/session"
	"greensquirrel/internal/identity"
	"greensquirrel/internal/platform/metrics"
	"greensquirrel/internal/platform/middleware"
	"greensquirrel/internal/token"
	"greensquirrel/internal/user"
	dErrors "greensquirrel/pkg/domain-errors"
	audit "greensquirrel/pkg/platform/audit"
	"greensquirrel/pkg/platform/audit/publisher"
	"greensquirrel/pkg/platform/sentinel"
)

// Config carries the flow policy knobs.
type Config struct {
	// SiteBaseURL is the public origin the pairing auth page lives under.
	SiteBaseURL string
	// AccessTokenTTL applies to direct sign-in, ExtensionTokenTTL to tokens
	// minted through pairing.
	AccessTokenTTL    time.Duration
	ExtensionTokenTTL time.Duration
	PairingSessionTTL time.Duration
}

// Service composes the verifier, token service, user repository, and pairing
// session store into the auth flows.
type Service struct {
	verifier identity.Verifier
	tokens   *token.Service
	users    user.Store
	sessions session.Store
	audit    *publisher.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	cfg      Config

	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock injects the clock. Tests use it to cross session expiry
// boundaries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New constructs the auth service.
func New(
	verifier identity.Verifier,
	tokens *token.Service,
	users user.Store,
	sessions session.Store,
	auditPub *publisher.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	cfg Config,
	opts ...Option,
) *Service {
	s := &Service{
		verifier: verifier,
		tokens:   tokens,
		users:    users,
		sessions: sessions,
		audit:    auditPub,
		metrics:  m,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// AuthResult is the response body shared by the sign-in and pairing
// completion flows.
type AuthResult struct {
	Token        string        `json:"token"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresAt    time.Time     `json:"expiresAt"`
	User         *user.Profile `json:"user"`
}

// PairingInitiation is the response body of the initiate flow.
type PairingInitiation struct {
	SessionToken string    `json:"sessionToken"`
	AuthURL      string    `json:"authUrl"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// GoogleSignIn verifies the ID token, upserts the user, and mints a 24-hour
// session token plus an opaque refresh token.
func (s *Service) GoogleSignIn(ctx context.Context, idToken string) (*AuthResult, error) {
	if idToken == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Invalid request. ID token is required.")
	}

	claims, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		s.rejectCredential(ctx, "google id token rejected")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid Google ID token.")
	}

	u, err := s.upsertUser(ctx, claims)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "An error occurred during authentication.")
	}

	result, err := s.issueFor(u, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "An error occurred during authentication.")
	}

	s.metrics.SignIns.Inc()
	s.emit(ctx, audit.EventSignIn, u.ID, u.Email, "")
	return result, nil
}

// InitiatePairing creates a pending pairing session and returns the URL the
// extension should send the user to.
func (s *Service) InitiatePairing(ctx context.Context, extensionID, callbackURL string) (*PairingInitiation, error) {
	if extensionID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Extension ID is required.")
	}

	sessionToken, err := session.NewToken()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "An error occurred.")
	}

	now := s.now().UTC()
	pending := &session.PendingSession{
		Token:       sessionToken,
		ExtensionID: extensionID,
		CallbackURL: callbackURL,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.cfg.PairingSessionTTL),
	}
	if err := s.sessions.Create(ctx, pending); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "An error occurred.")
	}

	authURL := fmt.Sprintf("%s/auth/extension?sessionToken=%s&extensionId=%s",
		s.cfg.SiteBaseURL, url.QueryEscape(sessionToken), url.QueryEscape(extensionID))

	s.metrics.PairingInitiated.Inc()
	s.emit(ctx, audit.EventPairingInitiated, "", "", extensionID)
	return &PairingInitiation{
		SessionToken: sessionToken,
		AuthURL:      authURL,
		ExpiresAt:    pending.ExpiresAt,
	}, nil
}

// CompletePairing redeems a pairing session exactly once: consume the
// session, verify the ID token, upsert the user, mint a 30-day token, and
// persist a hashed grant on the user record. The session is consumed before
// the ID token is inspected, so a bad token still burns the session.
func (s *Service) CompletePairing(ctx context.Context, sessionToken, idToken string) (*AuthResult, error) {
	if sessionToken == "" || idToken == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Session token and ID token are required.")
	}

	pending, err := s.sessions.Consume(ctx, sessionToken, s.now().UTC())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExpired) || errors.Is(err, sentinel.ErrAlreadyUsed) {
			s.rejectCredential(ctx, "pairing session rejected")
			return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired session token.")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "An error occurred.")
	}

	claims, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		s.rejectCredential(ctx, "google id token rejected")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid Google ID token.")
	}

	u, err := s.upsertUser(ctx, claims)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "An error occurred.")
	}

	extensionToken, expiresAt, err := s.tokens.Issue(u.ID, u.Email, u.DisplayName, s.cfg.ExtensionTokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "An error occurred.")
	}

	u.ExtensionTokens = append(u.ExtensionTokens, user.ExtensionToken{
		ExtensionID: pending.ExtensionID,
		TokenHash:   token.Hash(extensionToken),
		IssuedAt:    s.now().UTC(),
		ExpiresAt:   expiresAt,
	})
	u, err = s.users.Update(ctx, u)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "An error occurred.")
	}

	refreshToken, err := token.NewRefreshToken()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "An error occurred.")
	}

	s.metrics.PairingCompleted.Inc()
	s.emit(ctx, audit.EventPairingCompleted, u.ID, u.Email, pending.ExtensionID)
	return &AuthResult{
		Token:        extensionToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         user.ProfileOf(u),
	}, nil
}

// upsertUser finds the user by Google subject id, creating on first sign-in
// and refreshing provider-sourced fields on every subsequent one. The picture
// keeps its old value when the claim is absent.
func (s *Service) upsertUser(ctx context.Context, claims *identity.Claims) (*user.User, error) {
	existing, err := s.users.FindByGoogleID(ctx, claims.Subject)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}

		created, err := s.users.Create(ctx, &user.User{
			GoogleUserID:      claims.Subject,
			Email:             claims.Email,
			DisplayName:       claims.Name,
			ProfilePictureURL: claims.Picture,
		})
		if err != nil {
			return nil, err
		}
		s.metrics.UsersCreated.Inc()
		s.emit(ctx, audit.EventUserCreated, created.ID, created.Email, "")
		s.logger.InfoContext(ctx, "created new user",
			"user_id", created.ID,
			"request_id", middleware.GetRequestID(ctx),
		)
		return created, nil
	}

	existing.Email = claims.Email
	existing.DisplayName = claims.Name
	if claims.Picture != "" {
		existing.ProfilePictureURL = claims.Picture
	}
	updated, err := s.users.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) issueFor(u *user.User, lifetime time.Duration) (*AuthResult, error) {
	signed, expiresAt, err := s.tokens.Issue(u.ID, u.Email, u.DisplayName, lifetime)
	if err != nil {
		return nil, err
	}
	refreshToken, err := token.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:        signed,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         user.ProfileOf(u),
	}, nil
}

func (s *Service) rejectCredential(ctx context.Context, reason string) {
	s.metrics.AuthFailures.Inc()
	s.emit(ctx, audit.EventAuthFailed, "", "", reason)
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, userID, email, reason string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Emit(ctx, audit.Event{
		UserID:    userID,
		Action:    string(action),
		Email:     email,
		Reason:    reason,
		RequestID: middleware.GetRequestID(ctx),
	})
}
