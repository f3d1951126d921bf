package handlers

import (
	"context"
	"net/http"

	"github.com/blakestevenson/vodboard/internal/httputil"
	"github.com/blakestevenson/vodboard/internal/servers"
	"github.com/blakestevenson/vodboard/internal/xtream"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StatusChecker re-probes one stored server
type StatusChecker interface {
	Check(ctx context.Context, id string) (*servers.Server, error)
}

// ServerHandler handles server directory requests
type ServerHandler struct {
	service servers.Service
	checker StatusChecker
	remote  remote
	logger  *zap.Logger
}

// NewServerHandler creates a new server handler
func NewServerHandler(service servers.Service, checker StatusChecker, newClient xtream.Factory, logger *zap.Logger) *ServerHandler {
	return &ServerHandler{
		service: service,
		checker: checker,
		remote:  remote{servers: service, newClient: newClient},
		logger:  logger,
	}
}

// ListServers handles GET /api/iptv/servers
func (h *ServerHandler) ListServers(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		respondFailure(w, h.logger, err, "failed to list servers")
		return
	}
	httputil.RespondData(w, http.StatusOK, list)
}

// GetServer handles GET /api/iptv/servers/{id}
func (h *ServerHandler) GetServer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	srv, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondFailure(w, h.logger, err, "failed to get server", zap.String("server_id", id))
		return
	}
	httputil.RespondData(w, http.StatusOK, srv)
}

// CreateServer handles POST /api/iptv/servers
func (h *ServerHandler) CreateServer(w http.ResponseWriter, r *http.Request) {
	var params servers.CreateServerParams
	if err := httputil.DecodeJSON(r, &params); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err, "invalid request body")
		return
	}

	srv, err := h.service.Create(r.Context(), params)
	if err != nil {
		respondFailure(w, h.logger, err, "failed to add server")
		return
	}
	httputil.RespondDataMessage(w, http.StatusCreated, srv, "Server added successfully")
}

// UpdateServer handles PUT /api/iptv/servers/{id}
func (h *ServerHandler) UpdateServer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var params servers.UpdateServerParams
	if err := httputil.DecodeJSON(r, &params); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err, "invalid request body")
		return
	}

	srv, err := h.service.Update(r.Context(), id, params)
	if err != nil {
		respondFailure(w, h.logger, err, "failed to update server", zap.String("server_id", id))
		return
	}
	httputil.RespondDataMessage(w, http.StatusOK, srv, "Server updated successfully")
}

// DeleteServer handles DELETE /api/iptv/servers/{id}
func (h *ServerHandler) DeleteServer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		respondFailure(w, h.logger, err, "failed to delete server", zap.String("server_id", id))
		return
	}
	httputil.RespondJSON(w, http.StatusOK, httputil.Envelope{Success: true, Message: "Server deleted successfully"})
}

// CheckServer handles POST /api/iptv/servers/{id}/check
func (h *ServerHandler) CheckServer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	srv, err := h.checker.Check(r.Context(), id)
	if err != nil {
		respondFailure(w, h.logger, err, "failed to check server", zap.String("server_id", id))
		return
	}
	httputil.RespondData(w, http.StatusOK, srv)
}

// GetServerStats handles GET /api/iptv/servers/{id}/stats
func (h *ServerHandler) GetServerStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_, client, err := h.remote.open(r.Context(), id)
	if err != nil {
		respondFailure(w, h.logger, err, "failed to get server", zap.String("server_id", id))
		return
	}

	stats, err := client.GetServerStats(r.Context())
	if err != nil {
		respondFailure(w, h.logger, err, "failed to fetch server stats", zap.String("server_id", id))
		return
	}
	httputil.RespondData(w, http.StatusOK, stats)
}
