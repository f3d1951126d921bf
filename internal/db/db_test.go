package db

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vodboard.db")

	conn, err := OpenSQLite(ctx, path, zap.NewNop())
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer conn.Close()

	// applying twice must be harmless
	for i := 0; i < 2; i++ {
		if err := MigrateSQLite(ctx, conn); err != nil {
			t.Fatalf("MigrateSQLite() pass %d error = %v", i+1, err)
		}
	}

	for _, table := range []string{"iptv_servers", "iptv_logs", "iptv_exports"} {
		var name string
		err := conn.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}
