// Package handler exposes the authenticated user's profile over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"greensquirrel/internal/platform/metrics"
	"greensquirrel/internal/platform/middleware"
	"greensquirrel/internal/transport/http/shared"
	"greensquirrel/internal/user"
	userService "greensquirrel/internal/user/service"
	dErrors "greensquirrel/pkg/domain-errors"
)

// Service defines the profile operations the handler depends on.
type Service interface {
	Get(ctx context.Context, userID string) (*user.Profile, error)
	Update(ctx context.Context, userID string, req userService.UpdateRequest) (*user.Profile, error)
	Delete(ctx context.Context, userID string) error
}

// Handler handles the /api/users/me endpoints.
type Handler struct {
	logger    *slog.Logger
	users     Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

// New creates a new user Handler.
func New(users Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		users:     users,
		metrics:   m,
		validator: validator,
	}
}

// Register registers the user routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	userRouter := chi.NewRouter()
	userRouter.Use(middleware.Recovery(h.logger))
	userRouter.Use(middleware.RequestID)
	userRouter.Use(middleware.Logger(h.logger))
	userRouter.Use(middleware.Timeout(30 * time.Second))
	userRouter.Use(middleware.ContentTypeJSON)
	userRouter.Use(middleware.LatencyMiddleware(h.metrics))
	userRouter.Use(middleware.RequireAuth(h.validator, h.logger))

	userRouter.Get("/me", h.handleGetProfile)
	userRouter.Put("/me", h.handleUpdateProfile)
	userRouter.Delete("/me", h.handleDeleteProfile)

	r.Mount("/api/users", userRouter)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "An error occurred."))
		return
	}

	profile, err := h.users.Get(ctx, userID)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}
	shared.WriteData(w, http.StatusOK, profile)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
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

	var req userService.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid profile update request",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid request body."))
		return
	}

	profile, err := h.users.Update(ctx, userID, req)
	if err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}
	shared.WriteData(w, http.StatusOK, profile)
}

func (h *Handler) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "An error occurred."))
		return
	}

	if err := h.users.Delete(ctx, userID); err != nil {
		h.writeServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if dErrors.Is(err, dErrors.CodeNotFound) || dErrors.Is(err, dErrors.CodeBadRequest) {
		shared.WriteError(w, err)
		return
	}
	h.logger.ErrorContext(ctx, "profile operation failed",
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
	shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "An error occurred."))
}
