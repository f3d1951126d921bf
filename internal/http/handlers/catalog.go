package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/blakestevenson/vodboard/internal/audit"
	"github.com/blakestevenson/vodboard/internal/catalog"
	"github.com/blakestevenson/vodboard/internal/httputil"
	"github.com/blakestevenson/vodboard/internal/servers"
	"github.com/blakestevenson/vodboard/internal/xtream"
	"go.uber.org/zap"
)

// CatalogHandler serves categories and movie listings from a stored server
type CatalogHandler struct {
	remote   remote
	pipeline catalog.Pipeline
	recorder audit.Recorder
	logger   *zap.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service servers.Service, newClient xtream.Factory, pipeline catalog.Pipeline, recorder audit.Recorder, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		remote:   remote{servers: service, newClient: newClient},
		pipeline: pipeline,
		recorder: recorder,
		logger:   logger,
	}
}

// ListCategories handles GET /api/iptv/categories?serverId=
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	serverID := r.URL.Query().Get("serverId")
	if err := servers.ValidateID(serverID); err != nil {
		respondFailure(w, h.logger, err, "invalid server ID")
		return
	}

	srv, client, err := h.remote.open(r.Context(), serverID)
	if err != nil {
		respondFailure(w, h.logger, err, "failed to get server", zap.String("server_id", serverID))
		return
	}

	categories, err := client.GetCategories(r.Context())
	if err != nil {
		audit.Record(r.Context(), h.recorder, h.logger, audit.Failure(audit.ActionFetchCategories, srv.ID, err))
		respondFailure(w, h.logger, err, "failed to fetch categories", zap.String("server_id", srv.ID))
		return
	}

	audit.Record(r.Context(), h.recorder, h.logger, audit.Success(audit.ActionFetchCategories, srv.ID,
		fmt.Sprintf("Successfully fetched %d categories from server %s", len(categories), srv.Name)))

	httputil.RespondData(w, http.StatusOK, categories)
}

// ListMovies handles GET /api/iptv/movies. With movieId it returns that
// movie's detail payload instead of a listing.
func (h *CatalogHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	serverID := params.Get("serverId")
	if err := servers.ValidateID(serverID); err != nil {
		respondFailure(w, h.logger, err, "invalid server ID")
		return
	}

	var movieID int64
	if raw := params.Get("movieId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondFailure(w, h.logger, errInvalidMovieID, "invalid movie ID")
			return
		}
		movieID = id
	}

	query, err := catalog.ParseQuery(params.Get("query"), params.Get("categoryId"),
		params.Get("fromDate"), params.Get("sortBy"), params.Get("sortOrder"))
	if err != nil {
		respondFailure(w, h.logger, err, "invalid query")
		return
	}

	srv, client, err := h.remote.open(r.Context(), serverID)
	if err != nil {
		respondFailure(w, h.logger, err, "failed to get server", zap.String("server_id", serverID))
		return
	}

	if movieID > 0 {
		info, err := client.GetMovieInfo(r.Context(), movieID)
		if err != nil {
			respondFailure(w, h.logger, err, "failed to fetch movie", zap.Int64("movie_id", movieID))
			return
		}
		httputil.RespondData(w, http.StatusOK, info)
		return
	}

	movies, err := client.GetMovies(r.Context(), query.Category)
	if err != nil {
		audit.Record(r.Context(), h.recorder, h.logger, audit.Failure(audit.ActionFetchMovies, srv.ID, err))
		respondFailure(w, h.logger, err, "failed to fetch movies", zap.String("server_id", srv.ID))
		return
	}

	movies = h.pipeline.Apply(movies, query)

	audit.Record(r.Context(), h.recorder, h.logger, audit.Success(audit.ActionFetchMovies, srv.ID,
		fmt.Sprintf("Successfully fetched %d movies from server %s", len(movies), srv.Name)))

	httputil.RespondList(w, movies, len(movies))
}
