package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	authHandler "greensquirrel/internal/auth/handler"
	authService "greensquirrel/internal/auth/service"
	"greensquirrel/internal/auth/session"
	"greensquirrel/internal/identity"
	"greensquirrel/internal/platform/config"
	"greensquirrel/internal/platform/httpserver"
	"greensquirrel/internal/platform/logger"
	"greensquirrel/internal/platform/metrics"
	"greensquirrel/internal/platform/postgres"
	platformRedis "greensquirrel/internal/platform/redis"
	"greensquirrel/internal/projects"
	"greensquirrel/internal/token"
	"greensquirrel/internal/user"
	userHandler "greensquirrel/internal/user/handler"
	userService "greensquirrel/internal/user/service"
	"greensquirrel/pkg/platform/audit/publisher"
	auditMemory "greensquirrel/pkg/platform/audit/store/memory"
	auditPostgres "greensquirrel/pkg/platform/audit/store/postgres"
)

// sessionSweepInterval bounds how long an expired in-memory pairing session
// can linger before the lazy sweep removes it.
const sessionSweepInterval = time.Minute

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err.Error())
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
			log.Error("postgres migration failed", "error", err.Error())
			os.Exit(1)
		}
	}

	redisClient, err := platformRedis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var users user.Store
	if db != nil {
		users = user.NewPostgresStore(db)
	} else {
		users = user.NewInMemoryStore()
	}

	var sessions session.Store
	var memorySessions *session.InMemoryStore
	if redisClient != nil {
		sessions = session.NewRedisStore(redisClient.Client)
	} else {
		memorySessions = session.NewInMemoryStore()
		sessions = memorySessions
	}

	var auditStore publisher.Store
	if db != nil {
		auditStore = auditPostgres.New(db)
	} else {
		auditStore = auditMemory.NewInMemoryStore()
	}
	auditPub := publisher.NewPublisher(auditStore, publisher.WithAsyncBuffer(256))
	defer auditPub.Close()

	verifier, err := identity.NewGoogleVerifier(ctx, cfg.Google.ClientID)
	if err != nil {
		log.Error("google verifier init failed", "error", err.Error())
		os.Exit(1)
	}

	tokens := token.NewService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)

	auth := authService.New(verifier, tokens, users, sessions, auditPub, m, log, authService.Config{
		SiteBaseURL:       cfg.SiteBaseURL,
		AccessTokenTTL:    cfg.JWT.AccessTokenTTL,
		ExtensionTokenTTL: cfg.JWT.ExtensionTokenTTL,
		PairingSessionTTL: cfg.PairingSessionTTL,
	})
	profiles := userService.New(users, auditPub, log)

	router := chi.NewRouter()
	authHandler.New(auth, profiles, log, m, tokens).Register(router)
	userHandler.New(profiles, log, m, tokens).Register(router)
	projects.NewHandler(projects.NewStaticCatalog(), log, m).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", healthz(db, redisClient))

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if memorySessions != nil {
		g.Go(func() error {
			ticker := time.NewTicker(sessionSweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					if n, err := memorySessions.DeleteExpired(gctx, time.Now().UTC()); err == nil && n > 0 {
						log.Debug("swept expired pairing sessions", "count", n)
					}
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
	log.Info("server stopped")
}

// healthz pings the configured dependencies. Unconfigured ones are skipped.
func healthz(db *sql.DB, redisClient *platformRedis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
