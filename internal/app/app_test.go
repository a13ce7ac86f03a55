package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reg-go/internal/config"
	"reg-go/internal/registry"
)

// testConfig returns a config with file-backed stores, one mount and a
// filesystem vault, all under a temp dir.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.NewConfig("inst-1", base)
	cfg.Encryption.Type = "test"
	cfg.Log.Level = "error"
	cfg.Mounts = []config.MountConfig{
		{Path: "/_system/config", TargetPath: "/config", Instance: "conf"},
	}
	cfg.Vaults = []config.VaultConfig{
		{Type: "filesystem", Name: "local", FSVaultRoot: filepath.Join(base, "vault")},
	}
	return cfg
}

func openApp(t *testing.T, cfg *config.Config) *RegApp {
	t.Helper()
	a, err := NewRegApp(context.Background(), cfg, "test")
	if err != nil {
		t.Fatalf("NewRegApp() error = %v", err)
	}
	return a
}

func readContent(t *testing.T, a *RegApp, path string) string {
	t.Helper()
	res, err := a.Get(context.Background(), path)
	if err != nil {
		t.Fatalf("Get(%s) error = %v", path, err)
	}
	return string(res.Content)
}

func TestRegApp_Lifecycle(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	if _, err := NewRegApp(ctx, cfg, "put"); err == nil {
		t.Fatal("expected error before init")
	}
	if err := InitRegistry(ctx, cfg); err != nil {
		t.Fatalf("InitRegistry() error = %v", err)
	}
	if err := InitRegistry(ctx, cfg); err != nil {
		t.Fatalf("second InitRegistry() error = %v", err)
	}

	a := openApp(t, cfg)
	if _, err := a.Put(ctx, "/docs/readme", []byte("hello"), "text/plain", "intro", map[string][]string{"owner": {"ops"}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := a.Put(ctx, "/_system/config/app", []byte("k=v"), "", "", nil); err != nil {
		t.Fatalf("Put() mounted error = %v", err)
	}
	if err := a.Close(nil); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(cfg.Database.DataDir, "conf.db")); err != nil {
		t.Errorf("mounted instance database missing: %v", err)
	}

	a = openApp(t, cfg)
	defer a.Close(nil)

	res, err := a.Get(ctx, "/docs/readme")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(res.Content) != "hello" || res.Description != "intro" {
		t.Errorf("Get() = %q / %q, want hello / intro", res.Content, res.Description)
	}
	if got := res.Properties.Get("owner"); len(got) != 1 || got[0] != "ops" {
		t.Errorf("owner property = %v, want [ops]", got)
	}
	if got := readContent(t, a, "/_system/config/app"); got != "k=v" {
		t.Errorf("mounted content = %q, want k=v", got)
	}

	entries, total, err := a.Logs(ctx, registry.NewLogFilter(), 0, 10)
	if err != nil {
		t.Fatalf("Logs() error = %v", err)
	}
	if len(entries) != total {
		t.Errorf("Logs() returned %d of %d entries", len(entries), total)
	}
	logged := map[string]bool{}
	for _, e := range entries {
		logged[e.Path] = true
	}
	for _, p := range []string{"/docs/readme", "/_system/config/app"} {
		if !logged[p] {
			t.Errorf("no log entry for %s in %+v", p, entries)
		}
	}
}

func TestRegApp_Close(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	if err := InitRegistry(ctx, cfg); err != nil {
		t.Fatalf("InitRegistry() error = %v", err)
	}

	a := openApp(t, cfg)
	boom := errors.New("boom")
	if err := a.Close(boom); err != boom {
		t.Errorf("Close() = %v, want the command error", err)
	}
	if a.Operation().Status != "error" {
		t.Errorf("Status = %q, want error", a.Operation().Status)
	}
}

func TestRegApp_DumpLoad(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	if err := InitRegistry(ctx, cfg); err != nil {
		t.Fatalf("InitRegistry() error = %v", err)
	}

	a := openApp(t, cfg)
	if _, err := a.Put(ctx, "/a", []byte("one"), "", "", nil); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	results, err := a.Dump(ctx)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if len(results) != 2 || results[0].Instance != "inst-1" || results[1].Instance != "conf" {
		t.Fatalf("Dump() = %+v, want inst-1 and conf", results)
	}
	if _, err := a.Put(ctx, "/a", []byte("two"), "", "", nil); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	t.Run("refuses to go backwards", func(t *testing.T) {
		_, err := a.Load(ctx, "", false)
		if err == nil || !strings.Contains(err.Error(), "older") {
			t.Fatalf("Load() error = %v, want refusal", err)
		}
	})

	t.Run("forced load restores the snapshot", func(t *testing.T) {
		if _, err := a.Load(ctx, "", true); err != nil {
			t.Fatalf("Load(force) error = %v", err)
		}
		if got := readContent(t, a, "/a"); got != "one" {
			t.Errorf("content after load = %q, want one", got)
		}
	})
	if err := a.Close(nil); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Replace the local store with an empty one: it is now behind the vault.
	local := filepath.Join(cfg.Database.DataDir, cfg.InstanceID+".db")
	for _, suffix := range []string{"", "-wal", "-shm"} {
		os.Remove(local + suffix)
	}
	if err := InitRegistry(ctx, cfg); err != nil {
		t.Fatalf("InitRegistry() error = %v", err)
	}

	t.Run("behind the vault refuses to open", func(t *testing.T) {
		_, err := NewRegApp(ctx, cfg, "get")
		if err == nil || !strings.Contains(err.Error(), "behind") {
			t.Fatalf("NewRegApp() error = %v, want behind", err)
		}
	})

	t.Run("load catches up", func(t *testing.T) {
		a, err := NewRegAppForLoad(ctx, cfg)
		if err != nil {
			t.Fatalf("NewRegAppForLoad() error = %v", err)
		}
		results, err := a.Load(ctx, "", false)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if results[0].Skipped || !results[1].Skipped {
			t.Errorf("Load() = %+v, want local loaded and conf skipped", results)
		}
		if err := a.Close(nil); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		a = openApp(t, cfg)
		defer a.Close(nil)
		if got := readContent(t, a, "/a"); got != "one" {
			t.Errorf("content after load = %q, want one", got)
		}
	})
}

func TestRegApp_DumpWithoutVault(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Vaults = nil
	if err := InitRegistry(ctx, cfg); err != nil {
		t.Fatalf("InitRegistry() error = %v", err)
	}
	a := openApp(t, cfg)
	defer a.Close(nil)

	if _, err := a.Dump(ctx); err == nil {
		t.Error("Dump() without vault should fail")
	}
}
