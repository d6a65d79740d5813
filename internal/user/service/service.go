// Package service exposes profile reads and edits over the user repository.
package service

import (
	"context"
	"errors"
	"log/slog"

	"greensquirrel/internal/platform/middleware"
	"greensquirrel/internal/user"
	dErrors "greensquirrel/pkg/domain-errors"
	audit "greensquirrel/pkg/platform/audit"
	"greensquirrel/pkg/platform/audit/publisher"
	"greensquirrel/pkg/platform/sentinel"
)

// UpdateRequest carries the editable profile fields. Empty fields are left
// untouched.
type UpdateRequest struct {
	DisplayName string `json:"displayName"`
}

// Service wraps the user store with profile-level semantics.
type Service struct {
	users  user.Store
	audit  *publisher.Publisher
	logger *slog.Logger
}

// New constructs the user service.
func New(users user.Store, auditPub *publisher.Publisher, logger *slog.Logger) *Service {
	return &Service{users: users, audit: auditPub, logger: logger}
}

// Get returns the profile for the given user id.
func (s *Service) Get(ctx context.Context, userID string) (*user.Profile, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "User not found.")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "An error occurred.")
	}
	return user.ProfileOf(u), nil
}

// Update applies the non-empty fields of req to the profile.
func (s *Service) Update(ctx context.Context, userID string, req UpdateRequest) (*user.Profile, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "User not found.")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "An error occurred.")
	}

	if req.DisplayName != "" {
		u.DisplayName = req.DisplayName
	}
	updated, err := s.users.Update(ctx, u)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "An error occurred.")
	}

	if s.audit != nil {
		_ = s.audit.Emit(ctx, audit.Event{
			UserID:    updated.ID,
			Action:    string(audit.EventProfileUpdated),
			Email:     updated.Email,
			RequestID: middleware.GetRequestID(ctx),
		})
	}
	return user.ProfileOf(updated), nil
}

// Delete removes the user and records the deletion.
func (s *Service) Delete(ctx context.Context, userID string) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "User not found.")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "An error occurred.")
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "An error occurred.")
	}
	if s.audit != nil {
		_ = s.audit.Emit(ctx, audit.Event{
			UserID:    u.ID,
			Action:    string(audit.EventUserDeleted),
			Email:     u.Email,
			RequestID: middleware.GetRequestID(ctx),
		})
	}
	return nil
}
