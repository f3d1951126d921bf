package servers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteStore keeps server records in a local SQLite file
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store backed by a database/sql handle opened with
// the modernc sqlite driver
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) List(ctx context.Context) ([]*Server, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+serverColumns+` FROM iptv_servers ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	defer rows.Close()

	list := []*Server{}
	for rows.Next() {
		srv, err := scanSQLite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan server: %w", err)
		}
		list = append(list, srv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	return list, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Server, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+serverColumns+` FROM iptv_servers WHERE id = ?`, id)
	srv, err := scanSQLite(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get server: %w", err)
	}
	return srv, nil
}

func (s *SQLiteStore) Create(ctx context.Context, srv *Server) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO iptv_servers (`+serverColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		srv.ID, srv.Name, srv.URL, srv.Username, srv.Password, srv.Active,
		formatNullTime(srv.LastChecked), string(srv.Status),
		formatTime(srv.CreatedAt), formatTime(srv.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, srv *Server) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE iptv_servers
		SET name = ?, url = ?, username = ?, password = ?, active = ?, updated_at = ?
		WHERE id = ?`,
		srv.Name, srv.URL, srv.Username, srv.Password, srv.Active, formatTime(srv.UpdatedAt), srv.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update server: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM iptv_servers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete server: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) SetStatus(ctx context.Context, id string, status Status, checkedAt time.Time) error {
	ts := formatTime(checkedAt)
	res, err := s.db.ExecContext(ctx, `
		UPDATE iptv_servers SET status = ?, last_checked = ?, updated_at = ?
		WHERE id = ?`,
		string(status), ts, ts, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set server status: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (*Server, error) {
	var (
		srv                  Server
		status               string
		lastChecked          sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(
		&srv.ID, &srv.Name, &srv.URL, &srv.Username, &srv.Password, &srv.Active,
		&lastChecked, &status, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	srv.Status = Status(status)
	if srv.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if srv.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if lastChecked.Valid && lastChecked.String != "" {
		t, err := parseTime(lastChecked.String)
		if err != nil {
			return nil, err
		}
		srv.LastChecked = &t
	}
	return &srv, nil
}

// Timestamps are stored as RFC 3339 text in UTC.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}
