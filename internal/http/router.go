package http

import (
	"io"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/blakestevenson/vodboard/internal/audit"
	"github.com/blakestevenson/vodboard/internal/catalog"
	"github.com/blakestevenson/vodboard/internal/http/handlers"
	"github.com/blakestevenson/vodboard/internal/httputil"
	"github.com/blakestevenson/vodboard/internal/servers"
	"github.com/blakestevenson/vodboard/internal/xtream"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterConfig carries the non-service settings the router needs
type RouterConfig struct {
	CORSOrigin        string
	ExportConcurrency int
	XtreamTimeout     time.Duration
	Pipeline          catalog.Pipeline
}

// NewRouter creates and configures the HTTP router
func NewRouter(
	serverService servers.Service,
	checker handlers.StatusChecker,
	newClient xtream.Factory,
	recorder audit.Recorder,
	cfg RouterConfig,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	compressor := middleware.NewCompressor(5)
	compressor.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})

	// Middleware
	r.Use(RecoverMiddleware(logger))
	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.RealIP)
	r.Use(CORSMiddleware(cfg.CORSOrigin))

	// Handlers
	serverHandler := handlers.NewServerHandler(serverService, checker, newClient, logger)
	catalogHandler := handlers.NewCatalogHandler(serverService, newClient, cfg.Pipeline, recorder, logger)
	exportHandler := handlers.NewExportHandler(serverService, newClient, recorder, cfg.ExportConcurrency, cfg.XtreamTimeout, logger)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/iptv", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(compressor.Handler)

			r.Route("/servers", func(r chi.Router) {
				r.Get("/", serverHandler.ListServers)
				r.Post("/", serverHandler.CreateServer)
				r.Get("/{id}", serverHandler.GetServer)
				r.Put("/{id}", serverHandler.UpdateServer)
				r.Delete("/{id}", serverHandler.DeleteServer)
				r.Post("/{id}/check", serverHandler.CheckServer)
				r.Get("/{id}/stats", serverHandler.GetServerStats)
			})

			r.Get("/categories", catalogHandler.ListCategories)
			r.Get("/movies", catalogHandler.ListMovies)
		})

		// Export sets its own write deadline on the connection, so it sits
		// outside the compressor.
		r.Post("/export", exportHandler.Export)
	})

	return r
}
