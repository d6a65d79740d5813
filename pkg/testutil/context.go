package testutil

import (
	"net/http"

	"greensquirrel/internal/platform/middleware"
)

// WithUserID adds a user ID to the request context, simulating what the auth
// middleware does for authenticated requests.
func WithUserID(req *http.Request, userID string) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID)
	return req.WithContext(ctx)
}
