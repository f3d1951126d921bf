package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRecorder writes audit rows with pgx
type PostgresRecorder struct {
	db *pgxpool.Pool
}

// NewPostgresRecorder creates a recorder backed by a pgx pool
func NewPostgresRecorder(db *pgxpool.Pool) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

func (r *PostgresRecorder) Log(ctx context.Context, e Entry) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO iptv_logs (action, status, message, server_id, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)`,
		e.Action, string(e.Status), e.Message, e.ServerID, stamp(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

func (r *PostgresRecorder) SaveExport(ctx context.Context, rec ExportRecord) error {
	links, err := json.Marshal(nonNil(rec.Links))
	if err != nil {
		return fmt.Errorf("failed to marshal export links: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO iptv_exports (title, links, server_id, created_at)
		VALUES ($1, $2::jsonb, $3, $4)`,
		rec.Title, string(links), rec.ServerID, stamp(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert export record: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
