package handlers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/blakestevenson/vodboard/internal/audit"
	"github.com/blakestevenson/vodboard/internal/export"
	"github.com/blakestevenson/vodboard/internal/httputil"
	"github.com/blakestevenson/vodboard/internal/servers"
	"github.com/blakestevenson/vodboard/internal/xtream"
	"go.uber.org/zap"
)

// ExportHandler turns selected movie ids into aria2c command files
type ExportHandler struct {
	remote      remote
	recorder    audit.Recorder
	concurrency int
	callTimeout time.Duration
	logger      *zap.Logger
}

// NewExportHandler creates a new export handler. callTimeout is the panel
// client's per-request timeout; zero means lookups are unbounded.
func NewExportHandler(service servers.Service, newClient xtream.Factory, recorder audit.Recorder, concurrency int, callTimeout time.Duration, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		remote:      remote{servers: service, newClient: newClient},
		recorder:    recorder,
		concurrency: concurrency,
		callTimeout: callTimeout,
		logger:      logger,
	}
}

// extendWriteDeadline sizes the response deadline to the lookup fan-out so
// a large export against a slow panel is not cut off mid-write.
func (h *ExportHandler) extendWriteDeadline(w http.ResponseWriter, ids int) {
	var deadline time.Time
	if budget := export.Budget(ids, h.concurrency, h.callTimeout); budget > 0 {
		deadline = time.Now().Add(budget + writeGrace)
	}
	if err := http.NewResponseController(w).SetWriteDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.logger.Debug("failed to extend write deadline", zap.Error(err))
	}
}

const writeGrace = 15 * time.Second

type exportRequest struct {
	ServerID string  `json:"serverId"`
	MovieIDs []int64 `json:"movieIds"`
}

// Export handles POST /api/iptv/export. ?format=text answers with the
// command file as an attachment instead of JSON.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err, "invalid request body")
		return
	}
	if err := servers.ValidateID(req.ServerID); err != nil {
		respondFailure(w, h.logger, err, "invalid server ID")
		return
	}
	if err := export.ValidateIDs(req.MovieIDs); err != nil {
		respondFailure(w, h.logger, err, "invalid movie IDs")
		return
	}

	srv, client, err := h.remote.open(r.Context(), req.ServerID)
	if err != nil {
		respondFailure(w, h.logger, err, "failed to get server", zap.String("server_id", req.ServerID))
		return
	}

	h.extendWriteDeadline(w, len(req.MovieIDs))
	result := export.Build(client, export.Resolve(r.Context(), client, req.MovieIDs, h.concurrency))

	if failed := result.Failed(); len(failed) > 0 {
		h.logger.Warn("export skipped unresolved movies",
			zap.String("server_id", srv.ID),
			zap.Int64s("movie_ids", failed),
		)
	}

	audit.Record(r.Context(), h.recorder, h.logger, audit.Success(audit.ActionExportMovies, srv.ID,
		fmt.Sprintf("Successfully generated export data for %d of %d movies from server %s",
			result.Exported, result.Requested, srv.Name)))

	if h.recorder != nil {
		rec := audit.ExportRecord{
			Title:    fmt.Sprintf("Export from %s", srv.Name),
			Links:    result.Commands,
			ServerID: srv.ID,
		}
		if err := h.recorder.SaveExport(r.Context(), rec); err != nil {
			h.logger.Warn("failed to store export record", zap.String("server_id", srv.ID), zap.Error(err))
		}
	}

	if r.URL.Query().Get("format") == "text" {
		h.writeText(w, result)
		return
	}
	httputil.RespondData(w, http.StatusOK, result)
}

func (h *ExportHandler) writeText(w http.ResponseWriter, result *export.Export) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": export.Filename(result)})

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("X-Export-Requested", strconv.Itoa(result.Requested))
	w.Header().Set("X-Export-Exported", strconv.Itoa(result.Exported))
	w.WriteHeader(http.StatusOK)

	if err := export.WriteCommands(w, result.Commands); err != nil {
		h.logger.Warn("failed to write export file", zap.Error(err))
	}
}
