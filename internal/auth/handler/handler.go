// Package handler exposes the authentication flows over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"greensquirrel/internal/auth/service"
	"greensquirrel/internal/platform/metrics"
	"greensquirrel/internal/platform/middleware"
	"greensquirrel/internal/transport/http/shared"
	"greensquirrel/internal/user"
	dErrors "greensquirrel/pkg/domain-errors"
)

// Service defines the auth flow operations the handler depends on.
type Service interface {
	GoogleSignIn(ctx context.Context, idToken string) (*service.AuthResult, error)
	InitiatePairing(ctx context.Context, extensionID, callbackURL string) (*service.PairingInitiation, error)
	CompletePairing(ctx context.Context, sessionToken, idToken string) (*service.AuthResult, error)
}

// ProfileService resolves the authenticated user's profile for the verify
// endpoint.
type ProfileService interface {
	Get(ctx context.Context, userID string) (*user.Profile, error)
}

// Handler handles the /api/auth endpoints.
type Handler struct {
	logger    *slog.Logger
	auth      Service
	profiles  ProfileService
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

// New creates a new auth Handler.
func New(
	auth Service,
	profiles ProfileService,
	logger *slog.Logger,
	m *metrics.Metrics,
	validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		auth:      auth,
		profiles:  profiles,
		metrics:   m,
		validator: validator,
	}
}

// Register registers the auth routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	authRouter := chi.NewRouter()
	authRouter.Use(middleware.Recovery(h.logger))
	authRouter.Use(middleware.RequestID)
	authRouter.Use(middleware.Logger(h.logger))
	authRouter.Use(middleware.Timeout(30 * time.Second))
	authRouter.Use(middleware.ContentTypeJSON)
	authRouter.Use(middleware.LatencyMiddleware(h.metrics))

	authRouter.Post("/google", h.handleGoogleSignIn)
	authRouter.Post("/extension/initiate", h.handleInitiatePairing)
	authRouter.Post("/extension/complete", h.handleCompletePairing)

	authRouter.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(h.validator, h.logger))
		pr.Get("/verify", h.handleVerify)
	})

	r.Mount("/api/auth", authRouter)
}

type googleSignInRequest struct {
	IDToken string `json:"idToken"`
}

// handleGoogleSignIn exchanges a Google ID token for a site session token.
// The response body is bare rather than enveloped: browser extension clients
// consume it as-is.
func (h *Handler) handleGoogleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req googleSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		h.logger.WarnContext(ctx, "invalid sign-in request",
			"request_id", requestID,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request. ID token is required."))
		return
	}

	result, err := h.auth.GoogleSignIn(ctx, req.IDToken)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeUnauthorized) || dErrors.Is(err, dErrors.CodeBadRequest) {
			h.logger.WarnContext(ctx, "sign-in rejected",
				"request_id", requestID,
				"error", err.Error(),
			)
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "sign-in failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "An error occurred during authentication."))
		return
	}

	shared.WriteJSON(w, http.StatusOK, result)
}

// handleVerify reports whether the bearer token is valid and returns the
// profile it belongs to.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestID,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "An error occurred."))
		return
	}

	profile, err := h.profiles.Get(ctx, userID)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to load profile",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "An error occurred."))
		return
	}

	shared.WriteData(w, http.StatusOK, profile)
}

type initiatePairingRequest struct {
	ExtensionID string `json:"extensionId"`
	CallbackURL string `json:"callbackUrl"`
}

// handleInitiatePairing starts the extension pairing flow.
func (h *Handler) handleInitiatePairing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req initiatePairingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ExtensionID == "" {
		h.logger.WarnContext(ctx, "invalid pairing initiation request",
			"request_id", requestID,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Extension ID is required."))
		return
	}
	if req.CallbackURL != "" && !govalidator.IsURL(req.CallbackURL) {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Callback URL must be a valid URL."))
		return
	}

	result, err := h.auth.InitiatePairing(ctx, req.ExtensionID, req.CallbackURL)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeBadRequest) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "pairing initiation failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "An error occurred."))
		return
	}

	shared.WriteJSON(w, http.StatusOK, result)
}

type completePairingRequest struct {
	SessionToken string `json:"sessionToken"`
	IDToken      string `json:"idToken"`
}

// handleCompletePairing redeems a pairing session for a long-lived token.
func (h *Handler) handleCompletePairing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req completePairingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionToken == "" || req.IDToken == "" {
		h.logger.WarnContext(ctx, "invalid pairing completion request",
			"request_id", requestID,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Session token and ID token are required."))
		return
	}

	result, err := h.auth.CompletePairing(ctx, req.SessionToken, req.IDToken)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeUnauthorized) || dErrors.Is(err, dErrors.CodeBadRequest) {
			h.logger.WarnContext(ctx, "pairing completion rejected",
				"request_id", requestID,
				"error", err.Error(),
			)
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "pairing completion failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "An error occurred."))
		return
	}

	shared.WriteJSON(w, http.StatusOK, result)
}
