package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/blakestevenson/vodboard/internal/config"
	"go.uber.org/zap"
)

func TestOpenSQLiteBackend(t *testing.T) {
	cfg := &config.Config{DatabaseURL: "sqlite://" + filepath.Join(t.TempDir(), "vodboard.db")}

	backend, err := Open(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer backend.Close()

	if backend.Driver != "sqlite" {
		t.Errorf("Driver = %q", backend.Driver)
	}
	list, err := backend.Servers.List(context.Background())
	if err != nil || len(list) != 0 {
		t.Errorf("List() = %v, %v", list, err)
	}
}
