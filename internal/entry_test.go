package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); !errors.Is(err, errConfigRequired) {
		t.Errorf("Run err = %v, want errConfigRequired", err)
	}
	if err := RunMCP(context.Background()); !errors.Is(err, errConfigRequired) {
		t.Errorf("RunMCP err = %v, want errConfigRequired", err)
	}
}

func TestOpen_SyncsWorkspace(t *testing.T) {
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Workspace.Path = filepath.Join(dir, "workspace")
	cfg.SQLite.Path = filepath.Join(dir, "modalk.db")

	app, err := newApplication([]Option{WithConfig(cfg), WithVersion("test")})
	if err != nil {
		t.Fatal(err)
	}
	if app.version != "test" {
		t.Errorf("version = %q", app.version)
	}

	if err := os.MkdirAll(cfg.Workspace.Path, 0o755); err != nil {
		t.Fatal(err)
	}
	k := filepath.Join(cfg.Workspace.Path, "k.modal")
	if err := os.WriteFile(k, []byte("[](p -> q) -> ([]p -> []q)\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rt, err := app.open(discardLogger(), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rt.db.Close()

	fd, err := rt.svc.GetFile(context.Background(), "k.modal")
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if len(fd.Results) != 1 || !fd.Results[0].Valid {
		t.Errorf("initial sync results = %+v", fd.Results)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
