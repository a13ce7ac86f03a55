// Package mount maps registry sub-trees onto other backing stores.
package mount

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// Mount redirects every path at or below Path to TargetPath inside the
// backing store named Instance.
type Mount struct {
	Path       string
	TargetPath string
	Instance   string
}

// Table is an immutable set of mounts. Lookups pick the longest matching prefix.
// The zero value has no mounts.
type Table struct {
	mounts []Mount // sorted by descending len(Path)
}

// NewTable validates and indexes mounts.
func NewTable(mounts []Mount) (*Table, error) {
	seen := make(map[string]bool, len(mounts))
	cleaned := make([]Mount, 0, len(mounts))
	for _, m := range mounts {
		if !strings.HasPrefix(m.Path, "/") || !strings.HasPrefix(m.TargetPath, "/") {
			return nil, fmt.Errorf("mount %q -> %q: paths must be absolute", m.Path, m.TargetPath)
		}
		if m.Instance == "" {
			return nil, fmt.Errorf("mount %q: instance is required", m.Path)
		}
		m.Path = path.Clean(m.Path)
		m.TargetPath = path.Clean(m.TargetPath)
		if m.Path == "/" {
			return nil, fmt.Errorf("mount %q: cannot mount the root", m.Path)
		}
		if seen[m.Path] {
			return nil, fmt.Errorf("mount %q: duplicate mount point", m.Path)
		}
		seen[m.Path] = true
		cleaned = append(cleaned, m)
	}
	sort.SliceStable(cleaned, func(i, j int) bool {
		return len(cleaned[i].Path) > len(cleaned[j].Path)
	})
	return &Table{mounts: cleaned}, nil
}

// Mounts returns the mounts, longest prefix first.
func (t *Table) Mounts() []Mount {
	if t == nil {
		return nil
	}
	return append([]Mount(nil), t.mounts...)
}

// Len returns the number of mounts.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.mounts)
}

func under(p, prefix string) bool {
	if prefix == "/" || p == prefix {
		return true
	}
	return strings.HasPrefix(p, prefix+"/")
}

// replacePrefix swaps the from prefix of p for to. p must be under from.
func replacePrefix(p, from, to string) string {
	rest := p
	if from != "/" {
		rest = strings.TrimPrefix(p, from)
	}
	if rest == "" || rest == "/" {
		return to
	}
	if to == "/" {
		return rest
	}
	return to + rest
}

// TranslateOut rewrites an external path into the namespace of the mount that
// owns it. ok is false when no mount covers p.
func (t *Table) TranslateOut(p string) (string, Mount, bool) {
	if t == nil {
		return p, Mount{}, false
	}
	for _, m := range t.mounts {
		if under(p, m.Path) {
			return replacePrefix(p, m.Path, m.TargetPath), m, true
		}
	}
	return p, Mount{}, false
}

// TranslateIn maps a path read from m's store back to the external namespace.
// Paths outside m.TargetPath are returned unchanged.
func (t *Table) TranslateIn(p string, m Mount) string {
	if !under(p, m.TargetPath) {
		return p
	}
	return replacePrefix(p, m.TargetPath, m.Path)
}

// Route finds the mount a log record for p belongs to. p may be either the
// external form or the already translated form, so both are tried. The
// returned path is the translated one.
func (t *Table) Route(p string) (string, Mount, bool) {
	if translated, m, ok := t.TranslateOut(p); ok {
		return translated, m, true
	}
	if t == nil {
		return p, Mount{}, false
	}
	for _, m := range t.mounts {
		if under(p, m.TargetPath) && m.TargetPath != "/" {
			return p, m, true
		}
	}
	return p, Mount{}, false
}

// Covering returns the mounts a query rooted at p has to visit: the mount
// owning p, or every mount below p. An empty p means the whole namespace.
func (t *Table) Covering(p string) []Mount {
	if t == nil {
		return nil
	}
	if p == "" {
		return t.Mounts()
	}
	if _, m, ok := t.TranslateOut(p); ok {
		return []Mount{m}
	}
	var out []Mount
	for _, m := range t.mounts {
		if under(m.Path, p) {
			out = append(out, m)
		}
	}
	return out
}
