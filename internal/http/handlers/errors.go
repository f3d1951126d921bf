package handlers

import (
	"errors"
	"net/http"

	"github.com/blakestevenson/vodboard/internal/catalog"
	"github.com/blakestevenson/vodboard/internal/export"
	"github.com/blakestevenson/vodboard/internal/httputil"
	"github.com/blakestevenson/vodboard/internal/servers"
	"github.com/blakestevenson/vodboard/internal/xtream"
	"go.uber.org/zap"
)

var errInvalidMovieID = errors.New("movieId must be a positive integer")

func isValidation(err error) bool {
	switch {
	case servers.IsValidation(err),
		errors.Is(err, catalog.ErrInvalidSortBy),
		errors.Is(err, catalog.ErrInvalidSortOrder),
		errors.Is(err, catalog.ErrInvalidDate),
		errors.Is(err, export.ErrNoMovieIDs),
		errors.Is(err, export.ErrInvalidMovieID),
		errors.Is(err, errInvalidMovieID),
		errors.Is(err, httputil.ErrEmptyBody):
		return true
	}
	return false
}

// statusCode maps a service error onto the HTTP status it is reported with
func statusCode(err error) int {
	switch {
	case isValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, servers.ErrNotFound), errors.Is(err, xtream.ErrNotFound):
		return http.StatusNotFound
	case xtream.IsRemote(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondFailure writes err in the error envelope. Internal errors are logged
// and replaced with fallback so storage details do not leak.
func respondFailure(w http.ResponseWriter, logger *zap.Logger, err error, fallback string, fields ...zap.Field) {
	code := statusCode(err)
	switch code {
	case http.StatusInternalServerError:
		httputil.LogError(logger, err, fallback, fields...)
		httputil.RespondErrorMessage(w, code, fallback)
		return
	case http.StatusBadGateway:
		logger.Warn(fallback, append([]zap.Field{zap.Error(err)}, fields...)...)
	}
	httputil.RespondErrorMessage(w, code, err.Error())
}
