package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		InstanceID: "test-instance-abc",
		BaseDir:    "/home/user/.local/share/reg",
		LogDir:     "/home/user/.local/share/reg/log",
		Registry: RegistryConfig{
			VersionedProperties: true,
			Pagination:          true,
			RetainHistory:       true,
			TenantID:            7,
			User:                "alice",
			DeniedPaths:         []string{"/system"},
		},
		Database: DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/reg/db"},
		Mounts: []MountConfig{
			{
				Path:       "/_system/config",
				TargetPath: "/config",
				Instance:   "config-store",
				Database:   DatabaseConfig{Type: "memory"},
			},
		},
		Vaults: []VaultConfig{
			{Type: "filesystem", Name: "local", FSVaultRoot: "/backup/vault"},
		},
		Encryption: EncryptionConfig{
			PublicKeyPath:  "/home/user/.local/share/reg/keys/reg.pub",
			PrivateKeyPath: "/home/user/.local/share/reg/keys/reg.key",
		},
		Filesystem: FilesystemConfig{
			Ignore: []string{"*.log", ".git"},
		},
		Log: LogConfig{Level: "debug", MaxSizeMB: 5, MaxBackups: 2},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.InstanceID != original.InstanceID {
		t.Errorf("InstanceID = %q, want %q", got.InstanceID, original.InstanceID)
	}
	if got.Registry.TenantID != 7 || got.Registry.User != "alice" {
		t.Errorf("Registry = %+v, want tenant 7 user alice", got.Registry)
	}
	if !got.Registry.VersionedProperties || !got.Registry.RetainHistory {
		t.Errorf("Registry flags = %+v, want versioned properties and retained history", got.Registry)
	}
	if len(got.Registry.DeniedPaths) != 1 || got.Registry.DeniedPaths[0] != "/system" {
		t.Errorf("Registry.DeniedPaths = %v, want [/system]", got.Registry.DeniedPaths)
	}
	if len(got.Mounts) != 1 {
		t.Fatalf("len(Mounts) = %d, want 1", len(got.Mounts))
	}
	if got.Mounts[0].TargetPath != "/config" || got.Mounts[0].Database.Type != "memory" {
		t.Errorf("Mounts[0] = %+v", got.Mounts[0])
	}
	if len(got.Vaults) != 1 {
		t.Fatalf("len(Vaults) = %d, want 1", len(got.Vaults))
	}
	if got.Vaults[0].FSVaultRoot != "/backup/vault" {
		t.Errorf("Vault.FSVaultRoot = %q, want %q", got.Vaults[0].FSVaultRoot, "/backup/vault")
	}
	if got.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", got.Database.Type, "sqlite")
	}
	if got.Log.Level != "debug" || got.Log.MaxSizeMB != 5 {
		t.Errorf("Log = %+v", got.Log)
	}
	if len(got.Filesystem.Ignore) != 2 {
		t.Fatalf("len(Filesystem.Ignore) = %d, want 2", len(got.Filesystem.Ignore))
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("inst-1", "/data/reg")

	if cfg.InstanceID != "inst-1" {
		t.Errorf("InstanceID = %q, want %q", cfg.InstanceID, "inst-1")
	}
	if cfg.LogDir != "/data/reg/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/reg/log")
	}
	if cfg.Database.DataDir != "/data/reg/db" {
		t.Errorf("Database.DataDir = %q, want %q", cfg.Database.DataDir, "/data/reg/db")
	}
	if cfg.Encryption.PublicKeyPath != "/data/reg/keys/reg.pub" {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", cfg.Encryption.PublicKeyPath, "/data/reg/keys/reg.pub")
	}
	if !cfg.Registry.Pagination {
		t.Error("Registry.Pagination = false, want true")
	}
	if cfg.Registry.User != "admin" {
		t.Errorf("Registry.User = %q, want admin", cfg.Registry.User)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mounts  []MountConfig
		wantErr string
	}{
		{name: "no mounts"},
		{
			name:   "valid mount",
			mounts: []MountConfig{{Path: "/a", TargetPath: "/b", Instance: "m1"}},
		},
		{
			name:    "relative path",
			mounts:  []MountConfig{{Path: "a", TargetPath: "/b", Instance: "m1"}},
			wantErr: "must be absolute",
		},
		{
			name:    "root mount",
			mounts:  []MountConfig{{Path: "/", TargetPath: "/b", Instance: "m1"}},
			wantErr: "root collection",
		},
		{
			name:    "missing instance",
			mounts:  []MountConfig{{Path: "/a", TargetPath: "/b"}},
			wantErr: "instance is required",
		},
		{
			name: "duplicate instance",
			mounts: []MountConfig{
				{Path: "/a", TargetPath: "/b", Instance: "m1"},
				{Path: "/c", TargetPath: "/d", Instance: "m1"},
			},
			wantErr: "duplicate instance",
		},
		{
			name:    "instance clashes with local store",
			mounts:  []MountConfig{{Path: "/a", TargetPath: "/b", Instance: "main"}},
			wantErr: "duplicate instance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("main", "/data/reg")
			cfg.Mounts = tt.mounts

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "reg.toml")
		cfg := NewConfig("i1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "reg.toml")
		cfg := NewConfig("i1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "reg.toml")
		cfg := NewConfig("read-test", dir)
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.InstanceID != "read-test" {
			t.Errorf("InstanceID = %q, want %q", got.InstanceID, "read-test")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/reg.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
