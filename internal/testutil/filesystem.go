package testutil

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"reg-go/internal/registry"
)

// MockFile represents a file or directory in the mock filesystem.
type MockFile struct {
	Content     []byte
	IsDirectory bool
}

// MockFilesystemManager is an in-memory filesystem for testing. Paths are
// cleaned with filepath.Clean; adding a file creates its parent directories.
type MockFilesystemManager struct {
	mu    sync.Mutex
	files map[string]*MockFile
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files: make(map[string]*MockFile),
	}
}

func (m *MockFilesystemManager) addParents(path string) {
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if _, ok := m.files[dir]; !ok {
			m.files[dir] = &MockFile{IsDirectory: true}
		}
		if dir == filepath.Dir(dir) {
			return
		}
	}
}

// AddFile adds a file to the mock filesystem.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.addParents(path)
	m.files[path] = &MockFile{Content: content}
}

// AddDirectory adds a directory to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.addParents(path)
	m.files[path] = &MockFile{IsDirectory: true}
}

// File returns the entry at path, or nil.
func (m *MockFilesystemManager) File(path string) *MockFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.files[filepath.Clean(path)]
}

func (m *MockFilesystemManager) Walk(root string, fn func(rel string, isDir bool) error) error {
	m.mu.Lock()
	root = filepath.Clean(root)
	top, ok := m.files[root]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("file not found: %s", root)
	}
	var rels []string
	dirs := make(map[string]bool)
	if top.IsDirectory {
		prefix := root + string(filepath.Separator)
		if root == string(filepath.Separator) {
			prefix = root
		}
		for p, f := range m.files {
			if strings.HasPrefix(p, prefix) {
				rel := filepath.ToSlash(strings.TrimPrefix(p, prefix))
				rels = append(rels, rel)
				dirs[rel] = f.IsDirectory
			}
		}
	}
	m.mu.Unlock()

	if err := fn(".", top.IsDirectory); err != nil {
		return err
	}
	sort.Strings(rels)
	for _, rel := range rels {
		if err := fn(rel, dirs[rel]); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockFilesystemManager) Open(path string) (io.ReadCloser, error) {
	file := m.File(path)
	if file == nil {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	if file.IsDirectory {
		return nil, fmt.Errorf("cannot open directory: %s", path)
	}
	return io.NopCloser(bytes.NewReader(file.Content)), nil
}

func (m *MockFilesystemManager) MkdirAll(path string) error {
	if f := m.File(path); f != nil && !f.IsDirectory {
		return fmt.Errorf("not a directory: %s", path)
	}
	m.AddDirectory(path)
	return nil
}

func (m *MockFilesystemManager) WriteFile(path string, data []byte) error {
	if f := m.File(path); f != nil && f.IsDirectory {
		return fmt.Errorf("is a directory: %s", path)
	}
	m.AddFile(path, append([]byte(nil), data...))
	return nil
}

// Compile-time check
var _ registry.FilesystemManager = (*MockFilesystemManager)(nil)
