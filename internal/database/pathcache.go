package database

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"reg-go/internal/database/sqlc"
	"reg-go/internal/registry"
)

type pathKey struct {
	tenant int64
	path   string
}

type pathIDKey struct {
	tenant int64
	id     int64
}

// sharedPathCache is the process-wide path <-> ID memo of one database.
// Lookups take the read lock; inserts are serialized by insertMu so two
// AddEntry calls for one path converge on a single row.
type sharedPathCache struct {
	mu      sync.RWMutex
	forward map[pathKey]int64
	reverse map[pathIDKey]string

	insertMu sync.Mutex
}

func newSharedPathCache() *sharedPathCache {
	return &sharedPathCache{
		forward: make(map[pathKey]int64),
		reverse: make(map[pathIDKey]string),
	}
}

func (c *sharedPathCache) lookup(tenant int64, path string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.forward[pathKey{tenant, path}]
	return id, ok
}

func (c *sharedPathCache) lookupID(tenant, id int64) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.reverse[pathIDKey{tenant, id}]
	return p, ok
}

func (c *sharedPathCache) store(tenant int64, path string, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forward[pathKey{tenant, path}] = id
	c.reverse[pathIDKey{tenant, id}] = path
}

func (c *sharedPathCache) publish(tenant int64, entries map[string]int64) {
	if len(entries) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for p, id := range entries {
		c.forward[pathKey{tenant, p}] = id
		c.reverse[pathIDKey{tenant, id}] = p
	}
}

// pathStore implements registry.PathCache over a transaction.
type pathStore struct {
	t *sqliteTx
}

func (s *pathStore) GetPathID(ctx context.Context, path string) (int64, error) {
	if path == registry.RootPath {
		return registry.RootPathID, nil
	}
	t := s.t
	if id, ok := t.pending[path]; ok {
		return id, nil
	}
	if id, ok := t.db.paths.lookup(t.sess.TenantID, path); ok {
		return id, nil
	}

	id, err := t.q.GetPathID(ctx, sqlc.GetPathIDParams{TenantID: t.sess.TenantID, Path: path})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return registry.NotFoundPathID, nil
		}
		return 0, registry.NewPersistenceError("get path id", path, err)
	}
	// Rows this tx did not insert are committed, so they are safe to share.
	t.db.paths.store(t.sess.TenantID, path, id)
	return id, nil
}

func (s *pathStore) AddEntry(ctx context.Context, path string, parentID int64) (int64, error) {
	id, err := s.GetPathID(ctx, path)
	if err != nil {
		return 0, err
	}
	if id != registry.NotFoundPathID {
		return id, nil
	}

	t := s.t
	t.db.paths.insertMu.Lock()
	defer t.db.paths.insertMu.Unlock()

	err = t.q.InsertPath(ctx, sqlc.InsertPathParams{
		TenantID: t.sess.TenantID,
		ParentID: sql.NullInt64{Int64: parentID, Valid: true},
		Path:     path,
	})
	if err != nil {
		return 0, registry.NewPersistenceError("add path", path, err)
	}
	id, err = t.q.GetPathID(ctx, sqlc.GetPathIDParams{TenantID: t.sess.TenantID, Path: path})
	if err != nil {
		return 0, registry.NewPersistenceError("read back path id", path, err)
	}

	t.pending[path] = id
	t.pendingRev[id] = path
	t.log.Debug("path interned", "path", path, "id", id)
	return id, nil
}

func (s *pathStore) GetPath(ctx context.Context, id int64) (string, error) {
	if id == registry.RootPathID {
		return registry.RootPath, nil
	}
	t := s.t
	if p, ok := t.pendingRev[id]; ok {
		return p, nil
	}
	if p, ok := t.db.paths.lookupID(t.sess.TenantID, id); ok {
		return p, nil
	}

	p, err := t.q.GetPathByID(ctx, sqlc.GetPathByIDParams{TenantID: t.sess.TenantID, ID: id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", registry.NewPersistenceError("get path", "", err)
	}
	t.db.paths.store(t.sess.TenantID, p, id)
	return p, nil
}

var _ registry.PathCache = (*pathStore)(nil)
