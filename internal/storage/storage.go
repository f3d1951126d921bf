package storage

import (
	"context"
	"fmt"

	"github.com/blakestevenson/vodboard/internal/audit"
	"github.com/blakestevenson/vodboard/internal/config"
	"github.com/blakestevenson/vodboard/internal/db"
	"github.com/blakestevenson/vodboard/internal/servers"
	"go.uber.org/zap"
)

// Backend is the persistence selected by DATABASE_URL
type Backend struct {
	Servers servers.Store
	Audit   audit.Recorder
	Driver  string

	close func()
}

// Close releases the underlying connection pool or file handle
func (b *Backend) Close() {
	if b.close != nil {
		b.close()
	}
}

// Open connects to PostgreSQL or SQLite depending on the DATABASE_URL
// scheme and applies the schema.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	if cfg.UsesSQLite() {
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath(), logger)
		if err != nil {
			return nil, err
		}
		if err := db.MigrateSQLite(ctx, conn); err != nil {
			conn.Close()
			return nil, err
		}
		return &Backend{
			Servers: servers.NewSQLiteStore(conn),
			Audit:   audit.NewSQLiteRecorder(conn),
			Driver:  "sqlite",
			close:   func() { conn.Close() },
		}, nil
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	if err := db.MigratePostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return &Backend{
		Servers: servers.NewPostgresStore(pool),
		Audit:   audit.NewPostgresRecorder(pool),
		Driver:  "postgres",
		close:   pool.Close,
	}, nil
}
