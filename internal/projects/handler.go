package projects

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"greensquirrel/internal/platform/metrics"
	"greensquirrel/internal/platform/middleware"
	"greensquirrel/internal/transport/http/shared"
	dErrors "greensquirrel/pkg/domain-errors"
)

// Handler serves the public project catalog endpoints.
type Handler struct {
	logger  *slog.Logger
	catalog Catalog
	metrics *metrics.Metrics
}

// NewHandler creates a projects Handler.
func NewHandler(catalog Catalog, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{logger: logger, catalog: catalog, metrics: m}
}

// Register registers the project routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	projectRouter := chi.NewRouter()
	projectRouter.Use(middleware.Recovery(h.logger))
	projectRouter.Use(middleware.RequestID)
	projectRouter.Use(middleware.Logger(h.logger))
	projectRouter.Use(middleware.Timeout(10 * time.Second))
	projectRouter.Use(middleware.LatencyMiddleware(h.metrics))

	projectRouter.Get("/", h.handleList)
	projectRouter.Get("/{projectID}", h.handleGet)

	r.Mount("/api/projects", projectRouter)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := h.catalog.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list projects",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "An error occurred."))
		return
	}
	shared.WriteData(w, http.StatusOK, list)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	project, ok := h.catalog.FindByID(r.Context(), projectID)
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "Project not found."))
		return
	}
	shared.WriteData(w, http.StatusOK, project)
}
