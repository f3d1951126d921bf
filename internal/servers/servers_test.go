package servers

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/blakestevenson/vodboard/internal/audit"
	"github.com/blakestevenson/vodboard/internal/db"
	"github.com/blakestevenson/vodboard/internal/secrets"
	"github.com/blakestevenson/vodboard/internal/xtream"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeProber struct {
	status Status
	seen   []xtream.Credentials
}

func (p *fakeProber) Probe(_ context.Context, creds xtream.Credentials) Status {
	p.seen = append(p.seen, creds)
	return p.status
}

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()
	conn, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "servers.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.MigrateSQLite(ctx, conn); err != nil {
		t.Fatalf("MigrateSQLite() error = %v", err)
	}
	return NewSQLiteStore(conn)
}

func validParams() CreateServerParams {
	return CreateServerParams{
		Name:     "Main panel",
		URL:      "http://panel.example:8080",
		Username: "user",
		Password: "pass",
	}
}

func TestCreateServerParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *CreateServerParams)
		wantErr error
	}{
		{"valid", func(p *CreateServerParams) {}, nil},
		{"short name", func(p *CreateServerParams) { p.Name = " a " }, ErrNameTooShort},
		{"relative url", func(p *CreateServerParams) { p.URL = "panel.example" }, ErrInvalidURL},
		{"ftp url", func(p *CreateServerParams) { p.URL = "ftp://panel.example" }, ErrInvalidURL},
		{"no host", func(p *CreateServerParams) { p.URL = "http://" }, ErrInvalidURL},
		{"no username", func(p *CreateServerParams) { p.Username = "" }, ErrUsernameRequired},
		{"no password", func(p *CreateServerParams) { p.Password = "" }, ErrPasswordRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			err := p.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil && !IsValidation(err) {
				t.Errorf("error %v is not a validation error", err)
			}
		})
	}
}

func TestSQLiteStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	srv := &Server{
		ID: uuid.NewString(), Name: "One", URL: "http://one", Username: "u", Password: "p",
		Active: true, Status: StatusUnknown, CreatedAt: now, UpdatedAt: now,
	}
	if err := store.Create(ctx, srv); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.Get(ctx, srv.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "One" || !got.Active || got.LastChecked != nil || !got.CreatedAt.Equal(now) {
		t.Errorf("Get() = %+v", got)
	}

	checked := now.Add(time.Hour)
	if err := store.SetStatus(ctx, srv.ID, StatusOnline, checked); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	got, _ = store.Get(ctx, srv.ID)
	if got.Status != StatusOnline || got.LastChecked == nil || !got.LastChecked.Equal(checked) {
		t.Errorf("after SetStatus: %+v", got)
	}

	got.Name = "Renamed"
	if err := store.Update(ctx, got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	list, err := store.List(ctx)
	if err != nil || len(list) != 1 || list[0].Name != "Renamed" {
		t.Fatalf("List() = %v, %v", list, err)
	}

	if err := store.Delete(ctx, srv.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, srv.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v", err)
	}
	if err := store.Delete(ctx, srv.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v", err)
	}
	if err := store.SetStatus(ctx, srv.ID, StatusOffline, now); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetStatus() on missing error = %v", err)
	}
}

func TestServiceCreateProbesSealsAndAudits(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteStore(t)
	box, err := secrets.NewBox(bytes.Repeat([]byte{9}, 32))
	if err != nil {
		t.Fatal(err)
	}
	prober := &fakeProber{status: StatusOffline}
	rec := audit.NewMemory()

	svc := NewService(store, box, prober, rec, zap.NewNop())

	srv, err := svc.Create(ctx, validParams())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if srv.Status != StatusOffline || srv.LastChecked == nil {
		t.Errorf("probe result not applied: %+v", srv)
	}
	if len(prober.seen) != 1 || prober.seen[0].Password != "pass" {
		t.Errorf("prober saw %+v", prober.seen)
	}

	raw, _ := store.Get(ctx, srv.ID)
	if raw.Password == "pass" {
		t.Error("password stored in plaintext while a key is configured")
	}

	opened, err := svc.Get(ctx, srv.ID)
	if err != nil || opened.Password != "pass" {
		t.Fatalf("Get() = %+v, %v", opened, err)
	}

	entries := rec.Entries()
	if len(entries) != 1 || entries[0].Action != audit.ActionCreateServer || entries[0].ServerID != srv.ID {
		t.Errorf("audit entries = %+v", entries)
	}
}

func TestServiceValidationHappensBeforeIO(t *testing.T) {
	ctx := context.Background()
	prober := &fakeProber{status: StatusOnline}
	box, _ := secrets.NewBox(nil)
	svc := NewService(newSQLiteStore(t), box, prober, nil, zap.NewNop())

	p := validParams()
	p.URL = "not a url"
	if _, err := svc.Create(ctx, p); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("Create() error = %v", err)
	}
	if len(prober.seen) != 0 {
		t.Error("probe ran for invalid input")
	}

	if _, err := svc.Get(ctx, ""); !errors.Is(err, ErrIDRequired) {
		t.Errorf("Get(\"\") error = %v", err)
	}
	if _, err := svc.Get(ctx, "abc"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Get(abc) error = %v", err)
	}
	if _, err := svc.Get(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(unknown) error = %v", err)
	}
}

func TestServiceUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	box, _ := secrets.NewBox(nil)
	rec := audit.NewMemory()
	svc := NewService(newSQLiteStore(t), box, nil, rec, zap.NewNop())

	srv, err := svc.Create(ctx, validParams())
	if err != nil {
		t.Fatal(err)
	}
	if srv.Status != StatusUnknown {
		t.Errorf("status without prober = %s", srv.Status)
	}

	name := "Backup panel"
	inactive := false
	updated, err := svc.Update(ctx, srv.ID, UpdateServerParams{Name: &name, Active: &inactive})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != name || updated.Active || updated.Username != "user" {
		t.Errorf("Update() = %+v", updated)
	}

	empty := ""
	if _, err := svc.Update(ctx, srv.ID, UpdateServerParams{Password: &empty}); !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("Update(empty password) error = %v", err)
	}

	withStatus, err := svc.SetStatus(ctx, srv.ID, StatusOnline)
	if err != nil || withStatus.Status != StatusOnline || withStatus.LastChecked == nil {
		t.Fatalf("SetStatus() = %+v, %v", withStatus, err)
	}
	if _, err := svc.SetStatus(ctx, srv.ID, Status("busy")); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("SetStatus(busy) error = %v", err)
	}

	if err := svc.Delete(ctx, srv.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, srv.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v", err)
	}

	var actions []string
	for _, e := range rec.Entries() {
		actions = append(actions, e.Action)
	}
	want := []string{audit.ActionCreateServer, audit.ActionUpdateServer, audit.ActionDeleteServer}
	if len(actions) != len(want) {
		t.Fatalf("audit actions = %v, want %v", actions, want)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("audit actions = %v, want %v", actions, want)
		}
	}
}
