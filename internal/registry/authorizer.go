package registry

import (
	"strings"

	"reg-go/internal/mount"
)

// Actions checked through an Authorizer.
const (
	AuthGet    = "get"
	AuthPut    = "put"
	AuthDelete = "delete"
)

// Authorizer decides whether the session may perform action on path.
type Authorizer interface {
	Authorize(sess Session, path string, action string) bool
}

// AllowAll permits everything.
type AllowAll struct{}

func (AllowAll) Authorize(Session, string, string) bool { return true }

// PrefixAuthorizer denies every action on paths under any of its prefixes.
type PrefixAuthorizer struct {
	denied []string
}

// NewPrefixAuthorizer creates an authorizer denying the given path prefixes.
// Blank entries are ignored.
func NewPrefixAuthorizer(denied []string) *PrefixAuthorizer {
	var prefixes []string
	for _, d := range denied {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if p, err := CleanPath(d); err == nil {
			prefixes = append(prefixes, p)
		}
	}
	return &PrefixAuthorizer{denied: prefixes}
}

func (a *PrefixAuthorizer) Authorize(_ Session, path string, _ string) bool {
	for _, prefix := range a.denied {
		if IsUnder(path, prefix) {
			return false
		}
	}
	return true
}

// MountAuthorizer serves a mounted store. The store asks about its own
// paths, which are mapped back through the mount before inner decides.
type MountAuthorizer struct {
	inner  Authorizer
	mounts *mount.Table
	mount  mount.Mount
}

// NewMountAuthorizer wraps inner for the store behind m. A nil inner allows
// everything.
func NewMountAuthorizer(inner Authorizer, mounts *mount.Table, m mount.Mount) *MountAuthorizer {
	if inner == nil {
		inner = AllowAll{}
	}
	return &MountAuthorizer{inner: inner, mounts: mounts, mount: m}
}

func (a *MountAuthorizer) Authorize(sess Session, path string, action string) bool {
	return a.inner.Authorize(sess, a.mounts.TranslateIn(path, a.mount), action)
}

var (
	_ Authorizer = AllowAll{}
	_ Authorizer = (*PrefixAuthorizer)(nil)
	_ Authorizer = (*MountAuthorizer)(nil)
)
