package registry

import (
	"fmt"
	"path"
	"strings"
)

// RootPath is the path of the root collection. It always exists.
const RootPath = "/"

// RootPathID is the well-known path ID of RootPath in every tenant.
const RootPathID int64 = 0

// CleanPath normalizes a registry path: it must be absolute, uses '/' as the
// separator and never ends with a slash (except for the root itself).
func CleanPath(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("empty registry path")
	}
	if !strings.HasPrefix(raw, "/") {
		return "", fmt.Errorf("registry path must be absolute: %q", raw)
	}
	return path.Clean(raw), nil
}

// SplitPath splits a non-root path into its parent collection path and leaf name.
// "/a/b/c" -> ("/a/b", "c"), "/a" -> ("/", "a").
func SplitPath(p string) (parent string, name string) {
	if p == RootPath {
		return "", ""
	}
	i := strings.LastIndex(p, "/")
	if i <= 0 {
		return RootPath, p[i+1:]
	}
	return p[:i], p[i+1:]
}

// JoinPath joins a collection path and a relative child path.
func JoinPath(parent, child string) string {
	if parent == RootPath {
		return path.Clean(RootPath + child)
	}
	return path.Clean(parent + "/" + child)
}

// IsUnder reports whether p equals prefix or lies below it.
func IsUnder(p, prefix string) bool {
	if prefix == RootPath || p == prefix {
		return true
	}
	return strings.HasPrefix(p, prefix+"/")
}
