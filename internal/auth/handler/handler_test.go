package handler

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"greensquirrel/internal/auth/service"
	"greensquirrel/internal/platform/metrics"
	"greensquirrel/internal/token"
	"greensquirrel/internal/user"
	dErrors "greensquirrel/pkg/domain-errors"
	"greensquirrel/pkg/testutil"
)

// fakeAuthService returns canned results per method.
type fakeAuthService struct {
	signInResult   *service.AuthResult
	signInErr      error
	initiateResult *service.PairingInitiation
	initiateErr    error
	completeResult *service.AuthResult
	completeErr    error

	lastIDToken      string
	lastExtensionID  string
	lastCallbackURL  string
	lastSessionToken string
}

func (f *fakeAuthService) GoogleSignIn(_ context.Context, idToken string) (*service.AuthResult, error) {
	f.lastIDToken = idToken
	return f.signInResult, f.signInErr
}

func (f *fakeAuthService) InitiatePairing(_ context.Context, extensionID, callbackURL string) (*service.PairingInitiation, error) {
	f.lastExtensionID = extensionID
	f.lastCallbackURL = callbackURL
	return f.initiateResult, f.initiateErr
}

func (f *fakeAuthService) CompletePairing(_ context.Context, sessionToken, idToken string) (*service.AuthResult, error) {
	f.lastSessionToken = sessionToken
	f.lastIDToken = idToken
	return f.completeResult, f.completeErr
}

type fakeProfileService struct {
	profile *user.Profile
	err     error
}

func (f *fakeProfileService) Get(_ context.Context, _ string) (*user.Profile, error) {
	return f.profile, f.err
}

type AuthHandlerSuite struct {
	suite.Suite

	auth     *fakeAuthService
	profiles *fakeProfileService
	tokens   *token.Service
	router   chi.Router
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) SetupTest() {
	s.auth = &fakeAuthService{}
	s.profiles = &fakeProfileService{}
	s.tokens = token.NewService("test-signing-key", "https://greensquirrel.dev", "https://greensquirrel.dev")

	s.router = chi.NewRouter()
	h := New(s.auth, s.profiles, slog.New(slog.DiscardHandler),
		metrics.NewWithRegistry(prometheus.NewRegistry()), s.tokens)
	h.Register(s.router)
}

func (s *AuthHandlerSuite) authResult() *service.AuthResult {
	return &service.AuthResult{
		Token:        "signed-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    time.Date(2024, 6, 16, 12, 0, 0, 0, time.UTC),
		User: &user.Profile{
			ID:          "user-123",
			Email:       "dev@greensquirrel.dev",
			DisplayName: "Dev",
		},
	}
}

func (s *AuthHandlerSuite) TestGoogleSignIn() {
	s.Run("returns the bare auth response on success", func() {
		s.auth.signInResult = s.authResult()
		s.auth.signInErr = nil

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/google",
			map[string]string{"idToken": "google-id-token"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rr)
		s.Equal("google-id-token", s.auth.lastIDToken)

		body := testutil.UnmarshalResponse[service.AuthResult](s.T(), rr)
		s.Equal("signed-token", body.Token)
		s.Equal("refresh-token", body.RefreshToken)
		s.Equal("user-123", body.User.ID)
	})

	s.Run("missing id token is a 400 with the exact message", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/google",
			map[string]string{})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest,
			"Invalid request. ID token is required.")
	})

	s.Run("malformed body is a 400 with the exact message", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/auth/google", "{not json")
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest,
			"Invalid request. ID token is required.")
	})

	s.Run("rejected credential is a 401", func() {
		s.auth.signInResult = nil
		s.auth.signInErr = dErrors.New(dErrors.CodeUnauthorized, "Invalid Google ID token.")

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/google",
			map[string]string{"idToken": "forged"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized,
			"Invalid Google ID token.")
	})

	s.Run("unexpected failures are scrubbed to a generic 500", func() {
		s.auth.signInResult = nil
		s.auth.signInErr = dErrors.New(dErrors.CodeInternal, "pq: connection refused")

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/google",
			map[string]string{"idToken": "fine"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError,
			"An error occurred during authentication.")
	})
}

func (s *AuthHandlerSuite) TestVerify() {
	s.Run("valid bearer token returns the enveloped profile", func() {
		s.profiles.profile = &user.Profile{ID: "user-123", Email: "dev@greensquirrel.dev"}
		s.profiles.err = nil

		signed, _, err := s.tokens.Issue("user-123", "dev@greensquirrel.dev", "Dev", time.Hour)
		s.Require().NoError(err)

		req := testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodGet, "/api/auth/verify"), signed)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "success", true)
		profile := testutil.UnmarshalData[user.Profile](s.T(), rr)
		s.Equal("user-123", profile.ID)
	})

	s.Run("missing authorization header is a 401", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/api/auth/verify")
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized,
			"Authorization header is missing or invalid.")
	})

	s.Run("expired bearer token is a 401", func() {
		signed, _, err := s.tokens.Issue("user-123", "dev@greensquirrel.dev", "Dev", -time.Minute)
		s.Require().NoError(err)

		req := testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodGet, "/api/auth/verify"), signed)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized,
			"Invalid or expired token.")
	})

	s.Run("token for a deleted user is a 404", func() {
		s.profiles.profile = nil
		s.profiles.err = dErrors.New(dErrors.CodeNotFound, "User not found.")

		signed, _, err := s.tokens.Issue("gone-user", "dev@greensquirrel.dev", "Dev", time.Hour)
		s.Require().NoError(err)

		req := testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodGet, "/api/auth/verify"), signed)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "User not found.")
	})
}

func (s *AuthHandlerSuite) TestInitiatePairing() {
	s.Run("returns the bare initiation response", func() {
		s.auth.initiateResult = &service.PairingInitiation{
			SessionToken: "session-token",
			AuthURL:      "https://greensquirrel.dev/auth/extension?sessionToken=session-token&extensionId=hive-reader-ext",
			ExpiresAt:    time.Date(2024, 6, 15, 12, 10, 0, 0, time.UTC),
		}
		s.auth.initiateErr = nil

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/extension/initiate",
			map[string]string{"extensionId": "hive-reader-ext", "callbackUrl": "https://cb.example.com/done"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rr)
		s.Equal("hive-reader-ext", s.auth.lastExtensionID)
		s.Equal("https://cb.example.com/done", s.auth.lastCallbackURL)
		testutil.AssertJSONContains(s.T(), rr, "sessionToken", "session-token")
		testutil.AssertJSONHasKey(s.T(), rr, "authUrl")
	})

	s.Run("missing extension id is a 400 with the exact message", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/extension/initiate",
			map[string]string{"callbackUrl": "https://cb.example.com/done"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest,
			"Extension ID is required.")
	})

	s.Run("malformed callback URL is a 400", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/extension/initiate",
			map[string]string{"extensionId": "ext", "callbackUrl": "::not a url::"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest,
			"Callback URL must be a valid URL.")
	})
}

func (s *AuthHandlerSuite) TestCompletePairing() {
	s.Run("returns the bare auth response", func() {
		s.auth.completeResult = s.authResult()
		s.auth.completeErr = nil

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/extension/complete",
			map[string]string{"sessionToken": "session-token", "idToken": "google-id-token"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rr)
		s.Equal("session-token", s.auth.lastSessionToken)
		s.Equal("google-id-token", s.auth.lastIDToken)
		testutil.AssertJSONContains(s.T(), rr, "token", "signed-token")
	})

	s.Run("missing inputs are a 400 with the exact message", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/extension/complete",
			map[string]string{"sessionToken": "session-token"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest,
			"Session token and ID token are required.")
	})

	s.Run("consumed or expired session is a 401", func() {
		s.auth.completeResult = nil
		s.auth.completeErr = dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired session token.")

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/auth/extension/complete",
			map[string]string{"sessionToken": "stale", "idToken": "google-id-token"})
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized,
			"Invalid or expired session token.")
	})
}
