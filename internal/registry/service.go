package registry

import (
	"context"
	"fmt"

	"reg-go/internal/mount"
)

// RegistryService is the orchestration layer used by the CLI. It routes every
// path to the store that owns it (the local instance or a mounted one) and
// composes the per-store operations into whole-tree ones.
type RegistryService struct {
	local    Database
	backends map[string]Database
	mounts   *mount.Table
	fsmgr    FilesystemManager
	flags    Flags
	auth     Authorizer
	logger   Logger
	clock    Clock
}

// NewRegistryService creates a RegistryService. backends maps mount instance
// names to their databases and must cover every mount in mounts.
func NewRegistryService(local Database, backends map[string]Database, mounts *mount.Table, fsmgr FilesystemManager, flags Flags, auth Authorizer, logger Logger, clock Clock) (*RegistryService, error) {
	for _, m := range mounts.Mounts() {
		if _, ok := backends[m.Instance]; !ok {
			return nil, fmt.Errorf("no database for mounted instance %q", m.Instance)
		}
	}
	if auth == nil {
		auth = AllowAll{}
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &RegistryService{
		local:    local,
		backends: backends,
		mounts:   mounts,
		fsmgr:    fsmgr,
		flags:    flags,
		auth:     auth,
		logger:   logger,
		clock:    clock,
	}, nil
}

// target is a caller path resolved to the store that owns it.
type target struct {
	ext     string // cleaned external path
	path    string // path inside db
	db      Database
	mount   mount.Mount
	mounted bool
}

func (s *RegistryService) resolve(raw string) (target, error) {
	p, err := CleanPath(raw)
	if err != nil {
		return target{}, err
	}
	translated, m, ok := s.mounts.TranslateOut(p)
	if !ok {
		return target{ext: p, path: p, db: s.local}, nil
	}
	return target{ext: p, path: translated, db: s.backends[m.Instance], mount: m, mounted: true}, nil
}

// external maps a path read from t's store back to the caller's namespace.
func (s *RegistryService) external(t target, p string) string {
	if !t.mounted {
		return p
	}
	return s.mounts.TranslateIn(p, t.mount)
}

// internal maps an external path into t's store when t's store owns it.
// Paths owned by another store are kept in their external form.
func (s *RegistryService) internal(t target, ext string) string {
	translated, m, ok := s.mounts.TranslateOut(ext)
	if ok && t.mounted && m.Path == t.mount.Path {
		return translated
	}
	return ext
}

// externalize maps res and its children into the caller's namespace. Children
// the session may not read are dropped; the store filtered them too, but only
// by their store path.
func (s *RegistryService) externalize(sess Session, t target, res *Resource) *Resource {
	if res == nil {
		return nil
	}
	res.Path = s.external(t, res.Path)
	if res.Children == nil {
		return res
	}
	children := res.Children[:0]
	for _, c := range res.Children {
		ext := s.external(t, c)
		if s.auth.Authorize(sess, ext, AuthGet) {
			children = append(children, ext)
		}
	}
	res.Children = children
	return res
}

func (s *RegistryService) authorize(sess Session, p, action string) error {
	if !s.auth.Authorize(sess, p, action) {
		return fmt.Errorf("%w: %s %s", ErrForbidden, action, p)
	}
	return nil
}

// checkNoMounts fails when a mount point lies at or below p.
func (s *RegistryService) checkNoMounts(p string) error {
	for _, m := range s.mounts.Mounts() {
		if IsUnder(m.Path, p) {
			return fmt.Errorf("%s contains mount point %s", p, m.Path)
		}
	}
	return nil
}

// EnsureRoot creates the root collection of the local store, the target
// collection of every mount and a local placeholder for each mount point so
// it shows up when listing its parent.
func (s *RegistryService) EnsureRoot(ctx context.Context, sess Session) error {
	err := RunInTx(ctx, s.local, sess, func(tx Tx) error {
		_, err := s.ensureCollection(ctx, tx, RootPath)
		return err
	})
	if err != nil {
		return fmt.Errorf("creating root collection: %w", err)
	}

	for _, m := range s.mounts.Mounts() {
		err := RunInTx(ctx, s.backends[m.Instance], sess, func(tx Tx) error {
			_, err := s.ensureCollection(ctx, tx, m.TargetPath)
			return err
		})
		if err != nil {
			return fmt.Errorf("creating target %s on %s: %w", m.TargetPath, m.Instance, err)
		}

		parent, name := SplitPath(m.Path)
		pt, err := s.resolve(parent)
		if err != nil {
			return err
		}
		err = RunInTx(ctx, pt.db, sess, func(tx Tx) error {
			_, err := s.ensureCollection(ctx, tx, JoinPath(pt.path, name))
			return err
		})
		if err != nil {
			return fmt.Errorf("creating mount point %s: %w", m.Path, err)
		}
	}
	return nil
}

// existingID resolves p to the identity of its current version, probing the
// collection interpretation first. Returns nil if nothing is stored at p.
func existingID(ctx context.Context, rs ResourceStore, p string) (*ResourceID, error) {
	for _, collection := range []bool{true, false} {
		id, err := rs.ResourceIDAs(ctx, p, collection)
		if err != nil {
			return nil, err
		}
		if id == nil {
			continue
		}
		ok, err := rs.ResourceIDExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			return id, nil
		}
	}
	return nil, nil
}

// ensureCollection returns the identity of the collection at p, creating it
// and any missing ancestors.
func (s *RegistryService) ensureCollection(ctx context.Context, tx Tx, p string) (*ResourceID, error) {
	rs := tx.Resources()
	id, err := rs.ResourceIDAs(ctx, p, true)
	if err != nil {
		return nil, err
	}
	if id != nil {
		ok, err := rs.ResourceIDExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			return id, nil
		}
	}

	var parentID *ResourceID
	if p != RootPath {
		leaf, err := rs.ResourceExistsAs(ctx, p, false)
		if err != nil {
			return nil, err
		}
		if leaf {
			return nil, fmt.Errorf("%w: %s is a resource, not a collection", ErrExists, p)
		}
		parent, _ := SplitPath(p)
		if parentID, err = s.ensureCollection(ctx, tx, parent); err != nil {
			return nil, err
		}
	}

	coll := NewCollection()
	if err := rs.Add(ctx, p, parentID, coll); err != nil {
		return nil, err
	}
	s.logger.Debug("collection created", "path", p)
	return coll.ID, nil
}

// Get returns the current version of the resource at path.
func (s *RegistryService) Get(ctx context.Context, sess Session, path string) (*Resource, error) {
	return s.GetCollection(ctx, sess, path, 0, -1)
}

// GetCollection is Get with a children window. The window is ignored when
// pagination is disabled.
func (s *RegistryService) GetCollection(ctx context.Context, sess Session, path string, start, pageLen int) (*Resource, error) {
	t, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(sess, t.ext, AuthGet); err != nil {
		return nil, err
	}
	if !s.flags.PaginationEnabled() {
		start, pageLen = 0, -1
	}

	var res *Resource
	err = RunInTx(ctx, t.db, sess, func(tx Tx) error {
		rs := tx.Resources()
		id, err := existingID(ctx, rs, t.path)
		if err != nil || id == nil {
			return err
		}
		res, err = rs.GetCollection(ctx, id, start, pageLen)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", t.ext, err)
	}
	if res == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, t.ext)
	}
	return s.externalize(sess, t, res), nil
}

// ResourceExists reports whether anything is stored at path.
func (s *RegistryService) ResourceExists(ctx context.Context, sess Session, path string) (bool, error) {
	t, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	var exists bool
	err = RunInTx(ctx, t.db, sess, func(tx Tx) error {
		exists, err = tx.Resources().ResourceExists(ctx, t.path)
		return err
	})
	return exists, err
}

// Put adds the resource at path, or appends a new version if one exists.
// Missing ancestor collections are created.
func (s *RegistryService) Put(ctx context.Context, sess Session, path string, res *Resource) error {
	t, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := s.authorize(sess, t.ext, AuthPut); err != nil {
		return err
	}

	err = RunInTx(ctx, t.db, sess, func(tx Tx) error {
		action, err := s.put(ctx, tx, t.path, res)
		if err != nil {
			return err
		}
		return tx.Logs().Append(ctx, []LogEntry{{Path: t.path, Action: action}})
	})
	if err != nil {
		return fmt.Errorf("putting %s: %w", t.ext, err)
	}
	res.Path = t.ext
	s.logger.Info("resource stored", "path", t.ext, "version", res.Version)
	return nil
}

// put adds or updates the resource at p inside tx and returns the log action
// describing what happened.
func (s *RegistryService) put(ctx context.Context, tx Tx, p string, res *Resource) (int, error) {
	rs := tx.Resources()
	if p == RootPath && !res.Collection {
		return 0, fmt.Errorf("%w: the root must be a collection", ErrExists)
	}
	if res.Properties == nil {
		res.Properties = NewProperties()
	}

	clash, err := rs.ResourceExistsAs(ctx, p, !res.Collection)
	if err != nil {
		return 0, err
	}
	if clash {
		return 0, fmt.Errorf("%w: %s exists with a different kind", ErrExists, p)
	}

	var parentID *ResourceID
	if p != RootPath {
		parent, _ := SplitPath(p)
		if parentID, err = s.ensureCollection(ctx, tx, parent); err != nil {
			return 0, err
		}
	}

	id, err := rs.ResourceIDAs(ctx, p, res.Collection)
	if err != nil {
		return 0, err
	}
	var current *Resource
	if id != nil {
		if current, err = rs.GetCollection(ctx, id, 0, 0); err != nil {
			return 0, err
		}
	}

	action := ActionAdd
	if current == nil {
		if res.Content == nil {
			res.ContentID = 0
		}
		if err := rs.Add(ctx, p, parentID, res); err != nil {
			return 0, err
		}
	} else {
		action = ActionUpdate
		res.ID = current.ID
		res.Path = p
		if res.UUID == "" {
			res.UUID = current.UUID
		}
		if res.CreatedAt.IsZero() {
			res.CreatedAt = current.CreatedAt
		}
		if res.Author == "" {
			res.Author = current.Author
		}
		if !res.Collection && res.Content == nil {
			res.ContentID = current.ContentID
		}
		if err := rs.Update(ctx, res); err != nil {
			return 0, err
		}
	}

	if parentID != nil {
		if err := rs.TouchCollection(ctx, parentID); err != nil {
			return 0, err
		}
	}
	return action, nil
}

// Delete removes the resource at path. Collections are removed with
// everything below them.
func (s *RegistryService) Delete(ctx context.Context, sess Session, path string) error {
	t, err := s.resolve(path)
	if err != nil {
		return err
	}
	if t.ext == RootPath {
		return fmt.Errorf("cannot delete the root collection")
	}
	if err := s.authorize(sess, t.ext, AuthDelete); err != nil {
		return err
	}
	if err := s.checkNoMounts(t.ext); err != nil {
		return fmt.Errorf("deleting %s: %w", t.ext, err)
	}

	err = RunInTx(ctx, t.db, sess, func(tx Tx) error {
		if err := s.deleteTree(ctx, tx, t.path); err != nil {
			return err
		}
		if err := s.touchParent(ctx, tx, t.path); err != nil {
			return err
		}
		return tx.Logs().Append(ctx, []LogEntry{{Path: t.path, Action: ActionDelete}})
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", t.ext, err)
	}
	s.logger.Info("resource deleted", "path", t.ext)
	return nil
}

func (s *RegistryService) deleteTree(ctx context.Context, tx Tx, p string) error {
	rs := tx.Resources()
	id, err := existingID(ctx, rs, p)
	if err != nil {
		return err
	}
	if id == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}

	if id.Collection {
		leaves, collections, err := rs.ChildPaths(ctx, id)
		if err != nil {
			return err
		}
		for _, c := range append(collections, leaves...) {
			if err := s.deleteTree(ctx, tx, c); err != nil {
				return err
			}
		}
	}

	if err := tx.Associations().RemoveAll(ctx, p); err != nil {
		return err
	}
	return rs.Delete(ctx, &Resource{ID: id, Path: p, Collection: id.Collection})
}

func (s *RegistryService) touchParent(ctx context.Context, tx Tx, p string) error {
	if p == RootPath {
		return nil
	}
	parent, _ := SplitPath(p)
	rs := tx.Resources()
	id, err := rs.ResourceIDAs(ctx, parent, true)
	if err != nil || id == nil {
		return err
	}
	return rs.TouchCollection(ctx, id)
}
