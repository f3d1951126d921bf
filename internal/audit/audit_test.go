package audit

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/blakestevenson/vodboard/internal/db"
	"go.uber.org/zap"
)

func TestSQLiteRecorder(t *testing.T) {
	ctx := context.Background()
	conn, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "audit.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer conn.Close()
	if err := db.MigrateSQLite(ctx, conn); err != nil {
		t.Fatalf("MigrateSQLite() error = %v", err)
	}

	rec := NewSQLiteRecorder(conn)
	if err := rec.Log(ctx, Success(ActionFetchMovies, "srv-1", "Fetched 3 movies")); err != nil {
		t.Fatalf("Log() error = %v", err)
	}
	if err := rec.Log(ctx, Failure(ActionCreateServer, "", errors.New("boom"))); err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	var count int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM iptv_logs WHERE server_id IS NULL`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("entries without server = %d, want 1", count)
	}

	err = rec.SaveExport(ctx, ExportRecord{
		Title:    "Export 2 movies",
		Links:    []string{"http://a/movie/u/p/1.mkv", "http://a/movie/u/p/2.mp4"},
		ServerID: "srv-1",
	})
	if err != nil {
		t.Fatalf("SaveExport() error = %v", err)
	}

	var raw string
	if err := conn.QueryRowContext(ctx, `SELECT links FROM iptv_exports`).Scan(&raw); err != nil {
		t.Fatal(err)
	}
	var links []string
	if err := json.Unmarshal([]byte(raw), &links); err != nil || len(links) != 2 {
		t.Errorf("stored links = %q, %v", raw, err)
	}
}

func TestMemoryAndRecord(t *testing.T) {
	mem := NewMemory()
	Record(context.Background(), mem, zap.NewNop(), Success(ActionCheckServer, "x", "ok"))
	Record(context.Background(), nil, zap.NewNop(), Success(ActionCheckServer, "x", "ignored"))

	entries := mem.Entries()
	if len(entries) != 1 || entries[0].Status != OutcomeSuccess || entries[0].CreatedAt.IsZero() {
		t.Fatalf("entries = %+v", entries)
	}
}
