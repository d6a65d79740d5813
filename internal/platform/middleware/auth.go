package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"greensquirrel/internal/transport/http/shared"
	dErrors "greensquirrel/pkg/domain-errors"
)

// TokenValidator validates a session token and returns the embedded user id.
type TokenValidator interface {
	Validate(token string) (string, error)
}

type contextKeyUserID struct{}

// WithUserID returns a context carrying the given user ID, as RequireAuth
// would set it. Tests use it to exercise authenticated handlers directly.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKeyUserID{}, userID)
}

// GetUserID retrieves the authenticated user ID from the context.
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(contextKeyUserID{}).(string)
	if !ok {
		return ""
	}
	return userID
}

// RequireAuth extracts and validates the bearer token, placing the user ID in
// the request context. Failure bodies match the public API contract exactly.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing bearer token",
					"request_id", GetRequestID(ctx),
				)
				shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Authorization header is missing or invalid."))
				return
			}

			userID, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token."))
				return
			}

			ctx = context.WithValue(ctx, contextKeyUserID{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
