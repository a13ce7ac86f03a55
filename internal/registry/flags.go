package registry

import "sync/atomic"

// Flags exposes the store-wide configuration switches. Implementations are
// consulted on every call, so a flag change takes effect immediately.
type Flags interface {
	// VersionedProperties reports whether properties are linked to versions
	// (true) or to the (pathID, name) identity (false).
	VersionedProperties() bool

	// PaginationEnabled reports whether paged reads honour their window.
	PaginationEnabled() bool

	// RetainHistory reports whether deleted versions are archived.
	RetainHistory() bool
}

// MutableFlags is a Flags implementation that can be switched at runtime.
// Safe for concurrent use.
type MutableFlags struct {
	versionedProperties atomic.Bool
	pagination          atomic.Bool
	retainHistory       atomic.Bool
}

// NewMutableFlags creates flags with the given initial values.
func NewMutableFlags(versionedProperties, pagination, retainHistory bool) *MutableFlags {
	f := &MutableFlags{}
	f.versionedProperties.Store(versionedProperties)
	f.pagination.Store(pagination)
	f.retainHistory.Store(retainHistory)
	return f
}

func (f *MutableFlags) VersionedProperties() bool { return f.versionedProperties.Load() }
func (f *MutableFlags) PaginationEnabled() bool   { return f.pagination.Load() }
func (f *MutableFlags) RetainHistory() bool       { return f.retainHistory.Load() }

func (f *MutableFlags) SetVersionedProperties(v bool) { f.versionedProperties.Store(v) }
func (f *MutableFlags) SetPaginationEnabled(v bool)   { f.pagination.Store(v) }
func (f *MutableFlags) SetRetainHistory(v bool)       { f.retainHistory.Store(v) }

var _ Flags = (*MutableFlags)(nil)
