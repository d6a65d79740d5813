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

	"greensquirrel/internal/platform/metrics"
	"greensquirrel/internal/token"
	"greensquirrel/internal/user"
	userService "greensquirrel/internal/user/service"
	audit "greensquirrel/pkg/platform/audit"
	"greensquirrel/pkg/platform/audit/publisher"
	auditMemory "greensquirrel/pkg/platform/audit/store/memory"
	"greensquirrel/pkg/testutil"
)

type UserHandlerSuite struct {
	suite.Suite

	store  *user.InMemoryStore
	audits *auditMemory.InMemoryStore
	tokens *token.Service
	router chi.Router

	seeded *user.User
}

func TestUserHandlerSuite(t *testing.T) {
	suite.Run(t, new(UserHandlerSuite))
}

func (s *UserHandlerSuite) SetupTest() {
	s.store = user.NewInMemoryStore()
	s.audits = auditMemory.NewInMemoryStore()
	s.tokens = token.NewService("test-signing-key", "https://greensquirrel.dev", "https://greensquirrel.dev")

	svc := userService.New(s.store, publisher.NewPublisher(s.audits), slog.New(slog.DiscardHandler))

	s.router = chi.NewRouter()
	New(svc, slog.New(slog.DiscardHandler),
		metrics.NewWithRegistry(prometheus.NewRegistry()), s.tokens).Register(s.router)

	seeded, err := s.store.Create(context.Background(), &user.User{
		GoogleUserID: "google-sub-1",
		Email:        "dev@greensquirrel.dev",
		DisplayName:  "Dev",
	})
	s.Require().NoError(err)
	s.seeded = seeded
}

func (s *UserHandlerSuite) bearerFor(userID string) string {
	signed, _, err := s.tokens.Issue(userID, "dev@greensquirrel.dev", "Dev", time.Hour)
	s.Require().NoError(err)
	return signed
}

func (s *UserHandlerSuite) TestGetProfile() {
	s.Run("returns the enveloped profile", func() {
		req := testutil.WithBearer(
			testutil.NewRequest(s.T(), http.MethodGet, "/api/users/me"),
			s.bearerFor(s.seeded.ID))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rr)
		profile := testutil.UnmarshalData[user.Profile](s.T(), rr)
		s.Equal(s.seeded.ID, profile.ID)
		s.Equal("dev@greensquirrel.dev", profile.Email)
	})

	s.Run("without a bearer token is a 401", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/api/users/me")
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized,
			"Authorization header is missing or invalid.")
	})

	s.Run("token for a missing user is a 404", func() {
		req := testutil.WithBearer(
			testutil.NewRequest(s.T(), http.MethodGet, "/api/users/me"),
			s.bearerFor("no-such-user"))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "User not found.")
	})
}

func (s *UserHandlerSuite) TestUpdateProfile() {
	s.Run("applies a new display name", func() {
		req := testutil.WithBearer(
			testutil.NewJSONRequest(s.T(), http.MethodPut, "/api/users/me",
				map[string]string{"displayName": "Renamed"}),
			s.bearerFor(s.seeded.ID))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rr)
		profile := testutil.UnmarshalData[user.Profile](s.T(), rr)
		s.Equal("Renamed", profile.DisplayName)

		events, err := s.audits.ListByUser(context.Background(), s.seeded.ID)
		s.NoError(err)
		s.Require().NotEmpty(events)
		s.Equal(string(audit.EventProfileUpdated), events[len(events)-1].Action)
	})

	s.Run("empty display name leaves the profile unchanged", func() {
		req := testutil.WithBearer(
			testutil.NewJSONRequest(s.T(), http.MethodPut, "/api/users/me",
				map[string]string{"displayName": ""}),
			s.bearerFor(s.seeded.ID))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rr)
		profile := testutil.UnmarshalData[user.Profile](s.T(), rr)
		s.Equal("Dev", profile.DisplayName)
	})

	s.Run("malformed body is a 400", func() {
		req := testutil.WithBearer(
			testutil.NewRequestWithBody(s.T(), http.MethodPut, "/api/users/me", "{oops"),
			s.bearerFor(s.seeded.ID))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "Invalid request body.")
	})
}

func (s *UserHandlerSuite) TestDeleteProfile() {
	s.Run("removes the account", func() {
		req := testutil.WithBearer(
			testutil.NewRequest(s.T(), http.MethodDelete, "/api/users/me"),
			s.bearerFor(s.seeded.ID))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusNoContent)

		// The bearer token still parses, but the account is gone.
		req = testutil.WithBearer(
			testutil.NewRequest(s.T(), http.MethodGet, "/api/users/me"),
			s.bearerFor(s.seeded.ID))
		rr = testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "User not found.")
	})

	s.Run("deleting a missing account is a 404", func() {
		req := testutil.WithBearer(
			testutil.NewRequest(s.T(), http.MethodDelete, "/api/users/me"),
			s.bearerFor("no-such-user"))
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "User not found.")
	})
}
