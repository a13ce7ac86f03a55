package registry

import "io"

// FilesystemManager abstracts local file access for Import and Export.
// It lets the service be tested without touching the real filesystem.
type FilesystemManager interface {
	// Walk visits root and everything below it in lexical order, skipping
	// ignored entries. rel is relative to root, uses '/' separators and is
	// "." for root itself.
	Walk(root string, fn func(rel string, isDir bool) error) error

	// Open opens a regular file for reading.
	Open(path string) (io.ReadCloser, error)

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string) error

	// WriteFile creates or truncates path and writes data to it.
	WriteFile(path string, data []byte) error
}
