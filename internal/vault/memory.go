package vault

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"reg-go/internal/registry"
)

type memoryItem struct {
	data    []byte
	version int64
}

// MemoryVault keeps snapshots in memory. Useful for tests.
// Safe for concurrent use.
type MemoryVault struct {
	name  string
	mu    sync.RWMutex
	items map[string]memoryItem // "instanceID/name" -> item
}

// NewMemoryVault creates an empty in-memory vault.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{name: name, items: make(map[string]memoryItem)}
}

func itemKey(instanceID, name string) string {
	return instanceID + "/" + name
}

func (m *MemoryVault) Put(_ context.Context, instanceID, name string, r io.Reader, size int64, version int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[itemKey(instanceID, name)] = memoryItem{data: data, version: version}
	return nil
}

func (m *MemoryVault) Get(_ context.Context, instanceID, name string, w io.Writer) error {
	m.mu.RLock()
	item, ok := m.items[itemKey(instanceID, name)]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s for instance %s", ErrNotFound, name, instanceID)
	}
	if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func (m *MemoryVault) Version(_ context.Context, instanceID, name string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[itemKey(instanceID, name)].version, nil
}

// ValidateSetup always succeeds.
func (m *MemoryVault) ValidateSetup(context.Context) error {
	return nil
}

var _ registry.Vault = (*MemoryVault)(nil)
