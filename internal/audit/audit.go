package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Outcome of an audited action
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// Action names recorded by the endpoint layer
const (
	ActionFetchCategories = "fetch_categories"
	ActionFetchMovies     = "fetch_movies"
	ActionExportMovies    = "export_movies"
	ActionCreateServer    = "create_server"
	ActionUpdateServer    = "update_server"
	ActionDeleteServer    = "delete_server"
	ActionCheckServer     = "check_server"
)

// Entry is one audit log line
type Entry struct {
	Action    string    `json:"action"`
	Status    Outcome   `json:"status"`
	Message   string    `json:"message"`
	ServerID  string    `json:"serverId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExportRecord stores the download links produced by one export
type ExportRecord struct {
	Title     string    `json:"title"`
	Links     []string  `json:"links"`
	ServerID  string    `json:"serverId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Recorder persists audit entries and export records. It is write-only.
type Recorder interface {
	Log(ctx context.Context, e Entry) error
	SaveExport(ctx context.Context, r ExportRecord) error
}

// Success builds a success entry
func Success(action, serverID, message string) Entry {
	return Entry{Action: action, Status: OutcomeSuccess, Message: message, ServerID: serverID}
}

// Failure builds an error entry from err
func Failure(action, serverID string, err error) Entry {
	return Entry{Action: action, Status: OutcomeError, Message: err.Error(), ServerID: serverID}
}

// Record writes e and logs instead of failing when the recorder errors.
// Audit writes never change the outcome of the audited request.
func Record(ctx context.Context, r Recorder, logger *zap.Logger, e Entry) {
	if r == nil {
		return
	}
	if err := r.Log(ctx, e); err != nil {
		logger.Warn("failed to write audit entry",
			zap.String("action", e.Action),
			zap.String("server_id", e.ServerID),
			zap.Error(err),
		)
	}
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// Memory keeps entries in process. Used by tests and the CLI.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
	exports []ExportRecord
}

// NewMemory creates an empty in-memory recorder
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Log(_ context.Context, e Entry) error {
	e.CreatedAt = stamp(e.CreatedAt)
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
	return nil
}

func (m *Memory) SaveExport(_ context.Context, r ExportRecord) error {
	r.CreatedAt = stamp(r.CreatedAt)
	r.Links = append([]string(nil), r.Links...)
	m.mu.Lock()
	m.exports = append(m.exports, r)
	m.mu.Unlock()
	return nil
}

// Entries returns a copy of the recorded entries
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}

// Exports returns a copy of the recorded exports
func (m *Memory) Exports() []ExportRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExportRecord(nil), m.exports...)
}
