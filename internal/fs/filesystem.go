package fs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"reg-go/internal/registry"
)

// OSFilesystemManager reads and writes the real filesystem for Import and
// Export. Walk honours the configured ignore patterns plus the .regignore
// file at the root of each walked tree.
type OSFilesystemManager struct {
	ignore *IgnoreMatcher
}

// NewOSFilesystemManager creates a manager with the given global ignore patterns.
func NewOSFilesystemManager(ignore []string) *OSFilesystemManager {
	return &OSFilesystemManager{ignore: NewIgnoreMatcher(ignore)}
}

// supported reports whether mode is a regular file or a directory.
func supported(mode fs.FileMode) bool {
	return mode.IsRegular() || mode.IsDir()
}

func (m *OSFilesystemManager) Walk(root string, fn func(rel string, isDir bool) error) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}
	info, err := os.Lstat(root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}
	if !supported(info.Mode()) {
		return fmt.Errorf("unsupported file type: %s", root)
	}
	if !info.IsDir() {
		return fn(".", false)
	}

	local, err := ParseIgnoreFile(filepath.Join(root, IgnoreFileName))
	if err != nil {
		return err
	}
	matcher := m.ignore.With(local)

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		// Symlinks, devices, pipes and sockets are skipped.
		if !supported(d.Type()) {
			return nil
		}
		if matcher.Match(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		return fn(rel, d.IsDir())
	})
}

func (m *OSFilesystemManager) Open(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

func (m *OSFilesystemManager) MkdirAll(name string) error {
	return os.MkdirAll(name, 0755)
}

func (m *OSFilesystemManager) WriteFile(name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return err
	}
	return os.WriteFile(name, data, 0644)
}

var _ registry.FilesystemManager = (*OSFilesystemManager)(nil)
