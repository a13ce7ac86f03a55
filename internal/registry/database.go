package registry

import (
	"context"
	"io"
)

// Database is a backing store for one registry instance.
type Database interface {
	// Begin opens a transaction scoped to the session's tenant and user.
	Begin(ctx context.Context, sess Session) (Tx, error)

	// Close closes the database connection.
	Close() error
}

// Tx is one open transaction. Every store obtained from a Tx shares it and
// must not be used concurrently from several goroutines.
type Tx interface {
	Session() Session

	Paths() PathCache
	Resources() ResourceStore
	Associations() AssociationStore
	Logs() LogStore

	// Commit commits the transaction and publishes newly interned paths.
	Commit() error

	// Rollback aborts the transaction. Calling it after Commit is a no-op.
	Rollback() error
}

// RunInTx runs fn inside a transaction, committing on success and rolling
// back on any error.
func RunInTx(ctx context.Context, db Database, sess Session, fn func(tx Tx) error) error {
	tx, err := db.Begin(ctx, sess)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// PathCache interns path strings to path IDs.
type PathCache interface {
	// GetPathID returns the ID of path, or -1 if it was never interned.
	GetPathID(ctx context.Context, path string) (int64, error)

	// AddEntry interns path under parentID and returns its ID. Calling it
	// again for the same path returns the existing ID.
	AddEntry(ctx context.Context, path string, parentID int64) (int64, error)

	// GetPath returns the path for id, or "" if unknown.
	GetPath(ctx context.Context, id int64) (string, error)
}

// NotFoundPathID is returned by GetPathID for unknown paths.
const NotFoundPathID int64 = -1

// ResourceStore persists versioned resource metadata, content and properties.
type ResourceStore interface {
	// Identity resolution

	// ResourceID resolves path, probing the collection interpretation first.
	// Returns nil if neither path nor its parent is known.
	ResourceID(ctx context.Context, path string) (*ResourceID, error)

	// ResourceIDAs resolves path as the given kind without probing.
	ResourceIDAs(ctx context.Context, path string, collection bool) (*ResourceID, error)

	// Existence and versions

	ResourceExists(ctx context.Context, path string) (bool, error)
	ResourceExistsAs(ctx context.Context, path string, collection bool) (bool, error)
	ResourceIDExists(ctx context.Context, id *ResourceID) (bool, error)

	// Version returns the current version of id, or NotFoundVersion.
	Version(ctx context.Context, id *ResourceID) (int64, error)

	// Versions returns every retained version of id, newest first.
	Versions(ctx context.Context, id *ResourceID) ([]int64, error)

	// Reads

	// Get returns the current version of id with content or children filled in,
	// or nil if it does not exist.
	Get(ctx context.Context, id *ResourceID) (*Resource, error)

	// GetByPath resolves path (collection first, then leaf) and returns it.
	GetByPath(ctx context.Context, path string) (*Resource, error)

	// GetCollection is Get with a children window.
	GetCollection(ctx context.Context, id *ResourceID, start, pageLen int) (*Resource, error)

	// GetVersion returns a specific version of the resource at path, including
	// archived versions of deleted resources. Returns nil if absent.
	GetVersion(ctx context.Context, path string, version int64) (*Resource, error)

	// Writes

	// Add allocates an identity for path under parent and appends its first version.
	Add(ctx context.Context, path string, parent *ResourceID, res *Resource) error

	// Update appends a new version for res.ID.
	Update(ctx context.Context, res *Resource) error

	// Delete removes every version row of res.ID together with its content and
	// properties, archiving them first when history retention is enabled.
	Delete(ctx context.Context, res *Resource) error

	// TouchCollection refreshes the last-modified time of a collection's current
	// version. Lock contention is reported as ErrConcurrentModification.
	TouchCollection(ctx context.Context, id *ResourceID) error

	// Properties

	AddProperties(ctx context.Context, res *Resource) error
	RemoveProperties(ctx context.Context, res *Resource) error

	// Children

	// Children lists authorized children of a collection: leaves sorted, then
	// child collections sorted, windowed over the concatenation.
	Children(ctx context.Context, coll *Resource, start, pageLen int) ([]string, error)

	// ChildCount counts leaves and child collections without authorization filtering.
	ChildCount(ctx context.Context, coll *Resource) (int, error)

	// ChildPaths lists all leaf and child collection paths without filtering.
	ChildPaths(ctx context.Context, id *ResourceID) (leaves []string, collections []string, err error)

	// Moves

	MoveResources(ctx context.Context, src, dst *ResourceID) error
	MoveResourcePaths(ctx context.Context, src, dst *ResourceID) error
	MoveProperties(ctx context.Context, src, dst *ResourceID) error
	MovePropertyPaths(ctx context.Context, src, dst *ResourceID) error

	// Content

	AddContent(ctx context.Context, r io.Reader) (int64, error)
	DeleteContent(ctx context.Context, id int64) error

	// ContentStream returns the blob, or nil if it does not exist.
	ContentStream(ctx context.Context, id int64) (io.ReadCloser, error)
}

// Association is a directed, typed edge between two paths.
type Association struct {
	Source string
	Target string
	Type   string
}

// AssociationStore persists associations.
type AssociationStore interface {
	// Add records the association unless the same triple already exists.
	Add(ctx context.Context, source, target, assocType string) error
	Remove(ctx context.Context, source, target, assocType string) error

	// GetAll returns associations where path is the source or the target.
	GetAll(ctx context.Context, path string) ([]Association, error)

	// GetAllForType returns associations of assocType whose source is path.
	GetAllForType(ctx context.Context, path, assocType string) ([]Association, error)

	// ReplaceAssociations rewrites the target side of associations pointing at oldPath.
	ReplaceAssociations(ctx context.Context, oldPath, newPath string) error

	RemoveAll(ctx context.Context, path string) error

	// CopyAssociations re-adds every association sourced at from with to as source.
	CopyAssociations(ctx context.Context, from, to string) error
}

// LogStore persists the audit log.
type LogStore interface {
	// Append inserts entries in the current transaction.
	Append(ctx context.Context, entries []LogEntry) error

	// Query returns matching entries in the [start, start+pageLen) window.
	// pageLen < 0 returns everything from start.
	Query(ctx context.Context, filter LogFilter, start, pageLen int) ([]LogEntry, error)

	// QueryPage returns the page described by page and records the total length on it.
	QueryPage(ctx context.Context, filter LogFilter, page *PaginationContext) ([]LogEntry, error)

	// Count returns the number of matching entries.
	Count(ctx context.Context, filter LogFilter) (int, error)
}
