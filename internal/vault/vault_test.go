package vault

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"reg-go/internal/registry"
)

// exerciseVault runs the behaviour every Vault implementation shares.
func exerciseVault(t *testing.T, v registry.Vault) {
	t.Helper()
	ctx := context.Background()

	t.Run("validate setup", func(t *testing.T) {
		if err := v.ValidateSetup(ctx); err != nil {
			t.Fatalf("ValidateSetup() error = %v", err)
		}
	})

	t.Run("put and get", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
		}{
			{name: registry.SnapshotDB, content: "SQLite format 3\x00snapshot"},
			{name: registry.SnapshotPublicKey, content: ""},
			{name: registry.SnapshotPrivateKey, content: strings.Repeat("k", 10000)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if err := v.Put(ctx, "inst-a", tt.name, strings.NewReader(tt.content), int64(len(tt.content)), 7); err != nil {
					t.Fatalf("Put() error = %v", err)
				}
				var buf bytes.Buffer
				if err := v.Get(ctx, "inst-a", tt.name, &buf); err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if buf.String() != tt.content {
					t.Errorf("Get() returned %d bytes, want %d", buf.Len(), len(tt.content))
				}
			})
		}
	})

	t.Run("version", func(t *testing.T) {
		got, err := v.Version(ctx, "inst-b", registry.SnapshotDB)
		if err != nil || got != 0 {
			t.Fatalf("Version() of missing item = %d, %v; want 0, nil", got, err)
		}
		for _, want := range []int64{3, 42} {
			data := "v" + strings.Repeat("x", int(want))
			if err := v.Put(ctx, "inst-b", registry.SnapshotDB, strings.NewReader(data), int64(len(data)), want); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			got, err := v.Version(ctx, "inst-b", registry.SnapshotDB)
			if err != nil {
				t.Fatalf("Version() error = %v", err)
			}
			if got != want {
				t.Errorf("Version() = %d, want %d", got, want)
			}
		}
	})

	t.Run("instances are separate", func(t *testing.T) {
		if err := v.Put(ctx, "inst-c", registry.SnapshotDB, strings.NewReader("c"), 1, 1); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
		var buf bytes.Buffer
		err := v.Get(ctx, "inst-d", registry.SnapshotDB, &buf)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() for other instance error = %v, want ErrNotFound", err)
		}
	})

	t.Run("size mismatch", func(t *testing.T) {
		err := v.Put(ctx, "inst-e", registry.SnapshotDB, strings.NewReader("short"), 100, 1)
		if err == nil {
			t.Fatal("Put() with wrong size should fail")
		}
	})
}

func TestMemoryVault(t *testing.T) {
	exerciseVault(t, NewMemoryVault("mem"))
}
