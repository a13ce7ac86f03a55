package vault

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"reg-go/internal/registry"
)

// FileSystemVault stores snapshots as files:
//
//	<root>/
//	  <instanceID>/
//	    <name>           (item data)
//	    <name>.version   (version marker)
type FileSystemVault struct {
	name string
	root string
}

// NewFileSystemVault creates a vault rooted at root, creating the directory
// if needed.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating vault root: %w", err)
	}
	return &FileSystemVault{name: name, root: root}, nil
}

func (v *FileSystemVault) itemPath(instanceID, name string) (string, error) {
	for _, part := range []string{instanceID, name} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return "", fmt.Errorf("invalid vault item name %q", part)
		}
	}
	return filepath.Join(v.root, instanceID, name), nil
}

// Put writes the item atomically, then its version marker.
func (v *FileSystemVault) Put(_ context.Context, instanceID, name string, r io.Reader, size int64, version int64) error {
	dest, err := v.itemPath(instanceID, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating instance directory: %w", err)
	}
	if err := writeAtomic(dest, r, size); err != nil {
		return err
	}
	marker := strings.NewReader(strconv.FormatInt(version, 10))
	return writeAtomic(dest+".version", marker, marker.Size())
}

func (v *FileSystemVault) Get(_ context.Context, instanceID, name string, w io.Writer) error {
	src, err := v.itemPath(instanceID, name)
	if err != nil {
		return err
	}
	f, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s for instance %s", ErrNotFound, name, instanceID)
		}
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	return nil
}

// Version returns 0 if no version marker exists.
func (v *FileSystemVault) Version(_ context.Context, instanceID, name string) (int64, error) {
	src, err := v.itemPath(instanceID, name)
	if err != nil {
		return 0, err
	}
	data, err := os.ReadFile(src + ".version")
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading version marker: %w", err)
	}
	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version marker: %w", err)
	}
	return version, nil
}

// ValidateSetup checks that the root is a writable directory.
func (v *FileSystemVault) ValidateSetup(context.Context) error {
	info, err := os.Stat(v.root)
	if err != nil {
		return fmt.Errorf("vault root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault root is not a directory: %s", v.root)
	}
	f, err := os.CreateTemp(v.root, ".writable-*")
	if err != nil {
		return fmt.Errorf("vault root not writable: %w", err)
	}
	f.Close()
	return os.Remove(f.Name())
}

// writeAtomic copies r to dest through a temp file in the same directory and
// renames it into place once exactly size bytes were written.
func writeAtomic(dest string, r io.Reader, size int64) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	done := false
	defer func() {
		if !done {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("writing data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	done = true
	return nil
}

var _ registry.Vault = (*FileSystemVault)(nil)
