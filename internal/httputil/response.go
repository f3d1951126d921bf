package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies; export id lists are the largest payload
const maxBodyBytes = 1 << 20

// Envelope is the response shape shared by every API endpoint
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Total   *int   `json:"total,omitempty"`
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, "failed to encode response", http.StatusInternalServerError)
		}
	}
}

// RespondData sends a success envelope
func RespondData(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, Envelope{Success: true, Data: data})
}

// RespondDataMessage sends a success envelope with a human-readable message
func RespondDataMessage(w http.ResponseWriter, status int, data any, message string) {
	RespondJSON(w, status, Envelope{Success: true, Data: data, Message: message})
}

// RespondList sends a success envelope carrying a total count
func RespondList(w http.ResponseWriter, data any, total int) {
	RespondJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Total: &total})
}

// RespondError sends an error envelope
func RespondError(w http.ResponseWriter, status int, err error, message string) {
	RespondJSON(w, status, Envelope{
		Error:   err.Error(),
		Message: message,
	})
}

// RespondErrorMessage sends an error envelope with just a message
func RespondErrorMessage(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, Envelope{Error: message})
}

// ErrEmptyBody is returned by DecodeJSON when the request has no body
var ErrEmptyBody = errors.New("request body is required")

// DecodeJSON decodes a JSON request body
func DecodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	return nil
}

// LogError logs an error with context
func LogError(logger *zap.Logger, err error, message string, fields ...zap.Field) {
	allFields := append([]zap.Field{zap.Error(err)}, fields...)
	logger.Error(message, allFields...)
}
