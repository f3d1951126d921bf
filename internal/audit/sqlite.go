package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteRecorder writes audit rows to a local SQLite file
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder creates a recorder on an open sqlite handle
func NewSQLiteRecorder(db *sql.DB) *SQLiteRecorder {
	return &SQLiteRecorder{db: db}
}

func (r *SQLiteRecorder) Log(ctx context.Context, e Entry) error {
	var serverID sql.NullString
	if e.ServerID != "" {
		serverID = sql.NullString{String: e.ServerID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO iptv_logs (action, status, message, server_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.Action, string(e.Status), e.Message, serverID,
		stamp(e.CreatedAt).Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) SaveExport(ctx context.Context, rec ExportRecord) error {
	links, err := json.Marshal(nonNil(rec.Links))
	if err != nil {
		return fmt.Errorf("failed to marshal export links: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO iptv_exports (title, links, server_id, created_at)
		VALUES (?, ?, ?, ?)`,
		rec.Title, string(links), rec.ServerID,
		stamp(rec.CreatedAt).Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert export record: %w", err)
	}
	return nil
}
