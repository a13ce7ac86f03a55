package vault

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSystemVault(t *testing.T) {
	v, err := NewFileSystemVault("fs", filepath.Join(t.TempDir(), "vault"))
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	exerciseVault(t, v)
}

func TestFileSystemVault_Layout(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	v, err := NewFileSystemVault("fs", root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}

	if err := v.Put(ctx, "inst", "db", strings.NewReader("data"), 4, 9); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := os.ReadFile(filepath.Join(root, "inst", "db"))
	if err != nil || string(got) != "data" {
		t.Errorf("item file = %q, %v", got, err)
	}
	marker, err := os.ReadFile(filepath.Join(root, "inst", "db.version"))
	if err != nil || string(marker) != "9" {
		t.Errorf("version marker = %q, %v", marker, err)
	}

	t.Run("failed put leaves previous item", func(t *testing.T) {
		if err := v.Put(ctx, "inst", "db", strings.NewReader("xx"), 10, 10); err == nil {
			t.Fatal("Put() with wrong size should fail")
		}
		var buf bytes.Buffer
		if err := v.Get(ctx, "inst", "db", &buf); err != nil || buf.String() != "data" {
			t.Errorf("Get() = %q, %v; want previous item", buf.String(), err)
		}
		entries, _ := os.ReadDir(filepath.Join(root, "inst"))
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".tmp-") {
				t.Errorf("temp file left behind: %s", e.Name())
			}
		}
	})

	t.Run("rejects path components", func(t *testing.T) {
		for _, name := range []string{"", "..", "a/b"} {
			if err := v.Put(ctx, "inst", name, strings.NewReader(""), 0, 1); err == nil {
				t.Errorf("Put(%q) should fail", name)
			}
		}
	})

	t.Run("root must be a directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, nil, 0644); err != nil {
			t.Fatal(err)
		}
		bad := &FileSystemVault{name: "bad", root: file}
		if err := bad.ValidateSetup(ctx); err == nil {
			t.Error("ValidateSetup() on a file should fail")
		}
	})
}
