package registry

import (
	"sort"
	"time"
)

// ResourceID identifies a resource inside one tenant.
//
// A collection is addressed by its own path ID and has no name. A leaf resource
// is addressed by the path ID of its parent collection plus its name.
type ResourceID struct {
	PathID     int64
	Name       string // empty for collections
	Collection bool
	Path       string
}

// NotFoundVersion is returned by version lookups when no row matches an identity.
const NotFoundVersion int64 = -1

// Resource is one version of a path-addressable resource or collection.
type Resource struct {
	ID *ResourceID

	Path         string
	MediaType    string
	Author       string
	CreatedAt    time.Time
	LastUpdater  string
	LastModified time.Time
	Version      int64
	Description  string
	ContentID    int64 // 0 when the resource has no content blob
	UUID         string
	Properties   *Properties

	// Content holds the leaf payload. On Add/Update a non-nil Content is stored
	// as a new blob; a nil Content keeps ContentID as is.
	Content []byte

	// Collection-only fields.
	Collection bool
	Children   []string
	ChildCount int
}

// NewResource returns an empty leaf resource.
func NewResource() *Resource {
	return &Resource{Properties: NewProperties()}
}

// NewCollection returns an empty collection.
func NewCollection() *Resource {
	return &Resource{Collection: true, Properties: NewProperties()}
}

// IsCollection reports whether the resource is a collection.
func (r *Resource) IsCollection() bool {
	return r.Collection
}

// Properties is an ordered multi-valued name -> values bag.
// Names keep their first insertion order.
type Properties struct {
	names  []string
	values map[string][]string
}

// NewProperties creates an empty property bag.
func NewProperties() *Properties {
	return &Properties{values: make(map[string][]string)}
}

// Add appends values to name.
func (p *Properties) Add(name string, values ...string) {
	if _, ok := p.values[name]; !ok {
		p.names = append(p.names, name)
	}
	p.values[name] = append(p.values[name], values...)
}

// Set replaces all values of name.
func (p *Properties) Set(name string, values ...string) {
	if _, ok := p.values[name]; !ok {
		p.names = append(p.names, name)
	}
	p.values[name] = append([]string(nil), values...)
}

// Remove drops name and its values.
func (p *Properties) Remove(name string) {
	if _, ok := p.values[name]; !ok {
		return
	}
	delete(p.values, name)
	for i, n := range p.names {
		if n == name {
			p.names = append(p.names[:i], p.names[i+1:]...)
			break
		}
	}
}

// Get returns the values of name, or nil.
func (p *Properties) Get(name string) []string {
	if p == nil {
		return nil
	}
	return p.values[name]
}

// First returns the first value of name, or "".
func (p *Properties) First(name string) string {
	vals := p.Get(name)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// Names returns the property names in insertion order.
func (p *Properties) Names() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.names...)
}

// Len returns the number of distinct names.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}

// Clone returns a deep copy.
func (p *Properties) Clone() *Properties {
	c := NewProperties()
	if p == nil {
		return c
	}
	for _, n := range p.names {
		c.Add(n, p.values[n]...)
	}
	return c
}

// SortedNames returns the property names sorted lexicographically.
func (p *Properties) SortedNames() []string {
	names := p.Names()
	sort.Strings(names)
	return names
}
