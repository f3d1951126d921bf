package servers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const serverColumns = `id, name, url, username, password, active, last_checked, status, created_at, updated_at`

// PostgresStore keeps server records in PostgreSQL
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a store backed by a pgx pool
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context) ([]*Server, error) {
	rows, err := s.db.Query(ctx, `SELECT `+serverColumns+` FROM iptv_servers ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	defer rows.Close()

	list := []*Server{}
	for rows.Next() {
		srv, err := scanPostgres(rows)
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

func (s *PostgresStore) Get(ctx context.Context, id string) (*Server, error) {
	row := s.db.QueryRow(ctx, `SELECT `+serverColumns+` FROM iptv_servers WHERE id = $1`, id)
	srv, err := scanPostgres(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get server: %w", err)
	}
	return srv, nil
}

func (s *PostgresStore) Create(ctx context.Context, srv *Server) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO iptv_servers (`+serverColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		srv.ID, srv.Name, srv.URL, srv.Username, srv.Password, srv.Active,
		srv.LastChecked, string(srv.Status), srv.CreatedAt, srv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, srv *Server) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE iptv_servers
		SET name = $2, url = $3, username = $4, password = $5, active = $6, updated_at = $7
		WHERE id = $1`,
		srv.ID, srv.Name, srv.URL, srv.Username, srv.Password, srv.Active, srv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update server: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM iptv_servers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete server: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SetStatus(ctx context.Context, id string, status Status, checkedAt time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE iptv_servers SET status = $2, last_checked = $3, updated_at = $3
		WHERE id = $1`,
		id, string(status), checkedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to set server status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPostgres(row pgx.Row) (*Server, error) {
	var (
		srv    Server
		status string
	)
	err := row.Scan(
		&srv.ID, &srv.Name, &srv.URL, &srv.Username, &srv.Password, &srv.Active,
		&srv.LastChecked, &status, &srv.CreatedAt, &srv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	srv.Status = Status(status)
	return &srv, nil
}
