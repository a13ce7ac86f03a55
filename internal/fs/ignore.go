package fs

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strings"
)

// IgnoreFileName is the per-tree ignore file read by Import.
const IgnoreFileName = ".regignore"

// ignorePattern is one parsed ignore line.
type ignorePattern struct {
	glob      string
	matchPath bool // contains '/': matched against the whole relative path
	dirOnly   bool // trailing '/': matches directories only
}

// IgnoreMatcher decides which entries of an imported tree are skipped.
//
// Patterns follow a small subset of gitignore: a pattern without '/' matches
// the basename at any depth, a pattern with '/' matches the path relative to
// the tree root, and a trailing '/' restricts the pattern to directories.
// The ignore file itself is always skipped.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher parses raw pattern lines. Blank lines and '#' comments are skipped.
func NewIgnoreMatcher(raw []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, line := range append([]string{IgnoreFileName}, raw...) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p := ignorePattern{}
		if strings.HasSuffix(line, "/") {
			p.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		p.glob = strings.TrimPrefix(line, "/")
		p.matchPath = strings.Contains(line, "/")
		m.patterns = append(m.patterns, p)
	}
	return m
}

// With returns a matcher holding m's patterns followed by extra ones.
func (m *IgnoreMatcher) With(raw []string) *IgnoreMatcher {
	more := NewIgnoreMatcher(raw)
	return &IgnoreMatcher{patterns: append(append([]ignorePattern(nil), m.patterns...), more.patterns[1:]...)}
}

// Match reports whether rel, a '/'-separated path relative to the tree root,
// is ignored.
func (m *IgnoreMatcher) Match(rel string, isDir bool) bool {
	if rel == "" || rel == "." {
		return false
	}
	base := path.Base(rel)
	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		subject := base
		if p.matchPath {
			subject = rel
		}
		// Malformed patterns never match.
		if ok, err := path.Match(p.glob, subject); err == nil && ok {
			return true
		}
	}
	return false
}

// ParseIgnoreFile reads the raw lines of an ignore file. A missing file
// yields no lines and no error.
func ParseIgnoreFile(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return lines, nil
}
