package status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blakestevenson/vodboard/internal/audit"
	"github.com/blakestevenson/vodboard/internal/db"
	"github.com/blakestevenson/vodboard/internal/secrets"
	"github.com/blakestevenson/vodboard/internal/servers"
	"github.com/blakestevenson/vodboard/internal/xtream"
	"go.uber.org/zap"
)

func newService(t *testing.T, prober servers.Prober) servers.Service {
	t.Helper()
	ctx := context.Background()
	conn, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "status.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.MigrateSQLite(ctx, conn); err != nil {
		t.Fatal(err)
	}
	box, _ := secrets.NewBox(nil)
	return servers.NewService(servers.NewSQLiteStore(conn), box, prober, nil, zap.NewNop())
}

func TestProber(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("action"); got != "get_server_info" {
			t.Errorf("probe sent action %q", got)
		}
		w.Write([]byte(`{"user_info":{"auth":1},"server_info":{"url":"panel"}}`))
	}))
	defer up.Close()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()

	p := NewProber(xtream.NewFactory(), zap.NewNop())
	if got := p.Probe(context.Background(), xtream.Credentials{URL: up.URL, Username: "u", Password: "p"}); got != servers.StatusOnline {
		t.Errorf("Probe(up) = %s", got)
	}
	if got := p.Probe(context.Background(), xtream.Credentials{URL: down.URL, Username: "u", Password: "p"}); got != servers.StatusOffline {
		t.Errorf("Probe(down) = %s", got)
	}
}

func TestCheckUpdatesStatusAndAudits(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	panel := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"user_info":{"auth":1}}`))
	}))
	defer panel.Close()

	prober := NewProber(xtream.NewFactory(), zap.NewNop())
	svc := newService(t, prober)
	rec := audit.NewMemory()
	checker := NewChecker(svc, prober, rec, zap.NewNop(), 0)

	ctx := context.Background()
	srv, err := svc.Create(ctx, servers.CreateServerParams{
		Name: "Panel", URL: panel.URL, Username: "u", Password: "p",
	})
	if err != nil {
		t.Fatal(err)
	}
	if srv.Status != servers.StatusOnline {
		t.Fatalf("initial status = %s", srv.Status)
	}

	healthy.Store(false)
	updated, err := checker.Check(ctx, srv.ID)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if updated.Status != servers.StatusOffline || updated.LastChecked == nil {
		t.Errorf("Check() = %+v", updated)
	}

	entries := rec.Entries()
	if len(entries) != 1 || entries[0].Action != audit.ActionCheckServer || entries[0].Status != audit.OutcomeSuccess {
		t.Errorf("audit = %+v", entries)
	}
}

func TestCheckAllSkipsInactive(t *testing.T) {
	var hits atomic.Int32
	panel := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"user_info":{"auth":1}}`))
	}))
	defer panel.Close()

	prober := NewProber(xtream.NewFactory(), zap.NewNop())
	svc := newService(t, nil)
	checker := NewChecker(svc, prober, nil, zap.NewNop(), 0)

	ctx := context.Background()
	inactive := false
	if _, err := svc.Create(ctx, servers.CreateServerParams{Name: "On", URL: panel.URL, Username: "u", Password: "p"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, servers.CreateServerParams{Name: "Off", URL: panel.URL, Username: "u", Password: "p", Active: &inactive}); err != nil {
		t.Fatal(err)
	}

	checked, err := checker.CheckAll(ctx)
	if err != nil {
		t.Fatalf("CheckAll() error = %v", err)
	}
	if len(checked) != 1 || checked[0].Name != "On" || checked[0].Status != servers.StatusOnline {
		t.Errorf("CheckAll() = %+v", checked)
	}
	if hits.Load() != 1 {
		t.Errorf("panel hit %d times, want 1", hits.Load())
	}
}

func TestStartRequiresInterval(t *testing.T) {
	checker := NewChecker(nil, nil, nil, zap.NewNop(), 0)
	if err := checker.Start(context.Background()); err == nil {
		t.Fatal("Start() with zero interval should fail")
	}

	svc := newService(t, nil)
	running := NewChecker(svc, NewProber(xtream.NewFactory(), zap.NewNop()), nil, zap.NewNop(), time.Hour)
	if err := running.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := running.Start(context.Background()); err == nil {
		t.Error("second Start() should fail")
	}
	running.Stop()
	running.Stop()
}
