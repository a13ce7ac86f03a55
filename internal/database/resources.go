package database

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"reg-go/internal/database/sqlc"
	"reg-go/internal/registry"
)

// resourceStore implements registry.ResourceStore over a transaction.
type resourceStore struct {
	t *sqliteTx
}

func nullName(name string) sql.NullString {
	return sql.NullString{String: name, Valid: true}
}

func (s *resourceStore) current(ctx context.Context, id *registry.ResourceID) (*sqlc.Resource, error) {
	var (
		row sqlc.Resource
		err error
	)
	tenant := s.t.sess.TenantID
	if id.Collection {
		row, err = s.t.q.GetCurrentCollection(ctx, sqlc.GetCurrentCollectionParams{TenantID: tenant, PathID: id.PathID})
	} else {
		row, err = s.t.q.GetCurrentResource(ctx, sqlc.GetCurrentResourceParams{TenantID: tenant, PathID: id.PathID, Name: nullName(id.Name)})
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, registry.NewPersistenceError("get current version", id.Path, err)
	}
	return &row, nil
}

func (s *resourceStore) Version(ctx context.Context, id *registry.ResourceID) (int64, error) {
	if id == nil {
		return registry.NotFoundVersion, nil
	}
	row, err := s.current(ctx, id)
	if err != nil {
		return 0, err
	}
	if row == nil {
		return registry.NotFoundVersion, nil
	}
	return row.Version, nil
}

func (s *resourceStore) Versions(ctx context.Context, id *registry.ResourceID) ([]int64, error) {
	tenant := s.t.sess.TenantID
	var (
		versions []int64
		err      error
	)
	if id.Collection {
		versions, err = s.t.q.ListCollectionVersions(ctx, sqlc.ListCollectionVersionsParams{
			TenantID: tenant, PathID: id.PathID,
			TenantID_2: tenant, PathID_2: id.PathID,
		})
	} else {
		versions, err = s.t.q.ListResourceVersions(ctx, sqlc.ListResourceVersionsParams{
			TenantID: tenant, PathID: id.PathID, Name: nullName(id.Name),
			TenantID_2: tenant, PathID_2: id.PathID, Name_2: nullName(id.Name),
		})
	}
	if err != nil {
		return nil, registry.NewPersistenceError("list versions", id.Path, err)
	}
	return versions, nil
}

func toResource(row *sqlc.Resource, id *registry.ResourceID) *registry.Resource {
	res := &registry.Resource{
		ID:           id,
		Path:         id.Path,
		MediaType:    row.MediaType,
		Author:       row.Creator,
		CreatedAt:    row.CreatedAt,
		LastUpdater:  row.LastUpdater,
		LastModified: row.LastModified,
		Version:      row.Version,
		Description:  row.Description,
		UUID:         row.Uuid,
		Properties:   registry.NewProperties(),
		Collection:   id.Collection,
	}
	if row.ContentID.Valid {
		res.ContentID = row.ContentID.Int64
	}
	return res
}

func (s *resourceStore) Get(ctx context.Context, id *registry.ResourceID) (*registry.Resource, error) {
	return s.GetCollection(ctx, id, 0, -1)
}

func (s *resourceStore) GetByPath(ctx context.Context, path string) (*registry.Resource, error) {
	for _, collection := range []bool{true, false} {
		id, err := s.ResourceIDAs(ctx, path, collection)
		if err != nil {
			return nil, err
		}
		if id == nil {
			continue
		}
		res, err := s.Get(ctx, id)
		if err != nil || res != nil {
			return res, err
		}
	}
	return nil, nil
}

func (s *resourceStore) GetCollection(ctx context.Context, id *registry.ResourceID, start, pageLen int) (*registry.Resource, error) {
	if id == nil {
		return nil, nil
	}
	row, err := s.current(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	res := toResource(row, id)
	if err := s.fill(ctx, res, start, pageLen); err != nil {
		return nil, err
	}
	return res, nil
}

// fill loads properties, then content for leaves or children for collections.
func (s *resourceStore) fill(ctx context.Context, res *registry.Resource, start, pageLen int) error {
	if err := s.loadProperties(ctx, res); err != nil {
		return err
	}
	if !res.Collection {
		if res.ContentID <= 0 {
			return nil
		}
		data, err := s.content(ctx, res.ContentID)
		if err != nil {
			return err
		}
		res.Content = data
		return nil
	}

	children, err := s.Children(ctx, res, start, pageLen)
	if err != nil {
		return err
	}
	count, err := s.ChildCount(ctx, res)
	if err != nil {
		return err
	}
	res.Children = children
	res.ChildCount = count
	return nil
}

func (s *resourceStore) GetVersion(ctx context.Context, path string, version int64) (*registry.Resource, error) {
	tenant := s.t.sess.TenantID
	row, err := s.t.q.GetResourceVersion(ctx, sqlc.GetResourceVersionParams{TenantID: tenant, Version: version})
	if errors.Is(err, sql.ErrNoRows) {
		row, err = s.t.q.GetArchivedVersion(ctx, sqlc.GetArchivedVersionParams{TenantID: tenant, Version: version})
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, registry.NewPersistenceError("get version", path, err)
	}

	base, err := s.t.Paths().GetPath(ctx, row.PathID)
	if err != nil {
		return nil, err
	}
	id := &registry.ResourceID{PathID: row.PathID, Collection: !row.Name.Valid, Path: base}
	if row.Name.Valid {
		id.Name = row.Name.String
		id.Path = registry.JoinPath(base, row.Name.String)
	}
	if id.Path != path {
		return nil, nil
	}

	res := toResource(&row, id)
	if err := s.fill(ctx, res, 0, -1); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *resourceStore) Add(ctx context.Context, path string, parent *registry.ResourceID, res *registry.Resource) error {
	paths := s.t.Paths()
	parentID := registry.RootPathID
	if parent != nil {
		parentID = parent.PathID
	} else if path != registry.RootPath {
		parentPath, _ := registry.SplitPath(path)
		id, err := paths.GetPathID(ctx, parentPath)
		if err != nil {
			return err
		}
		if id == registry.NotFoundPathID {
			return registry.NewPersistenceError("add resource", path, fmt.Errorf("parent collection %s does not exist", parentPath))
		}
		parentID = id
	}

	if res.Collection {
		pathID := registry.RootPathID
		if path != registry.RootPath {
			id, err := paths.AddEntry(ctx, path, parentID)
			if err != nil {
				return err
			}
			pathID = id
		}
		res.ID = &registry.ResourceID{PathID: pathID, Collection: true, Path: path}
	} else {
		if path == registry.RootPath {
			return registry.NewPersistenceError("add resource", path, errors.New("root must be a collection"))
		}
		_, name := registry.SplitPath(path)
		res.ID = &registry.ResourceID{PathID: parentID, Name: name, Path: path}
	}
	res.Path = path
	return s.insertVersion(ctx, res)
}

func (s *resourceStore) Update(ctx context.Context, res *registry.Resource) error {
	if res.ID == nil {
		return registry.NewPersistenceError("update resource", res.Path, errors.New("resource has no identity"))
	}
	if !s.t.db.opts.Flags.VersionedProperties() {
		if err := s.RemoveProperties(ctx, res); err != nil {
			return err
		}
	}
	return s.insertVersion(ctx, res)
}

// insertVersion appends a version row for res.ID, storing a new content blob
// when res.Content is set, and links res.Properties to it.
func (s *resourceStore) insertVersion(ctx context.Context, res *registry.Resource) error {
	t := s.t
	now := t.db.opts.Clock.Now()
	if res.CreatedAt.IsZero() {
		res.CreatedAt = now
	}
	if res.Author == "" {
		res.Author = t.sess.User
	}
	if res.UUID == "" {
		res.UUID = t.db.opts.IDGenerator.New()
	}
	res.LastModified = now
	res.LastUpdater = t.sess.User

	if !res.Collection && res.Content != nil {
		contentID, err := s.AddContent(ctx, bytes.NewReader(res.Content))
		if err != nil {
			return err
		}
		res.ContentID = contentID
	}

	params := sqlc.InsertResourceParams{
		TenantID:     t.sess.TenantID,
		PathID:       res.ID.PathID,
		MediaType:    res.MediaType,
		Creator:      res.Author,
		CreatedAt:    res.CreatedAt,
		LastUpdater:  res.LastUpdater,
		LastModified: res.LastModified,
		Description:  res.Description,
		Uuid:         res.UUID,
	}
	if !res.Collection {
		params.Name = nullName(res.ID.Name)
	}
	if res.ContentID > 0 {
		params.ContentID = sql.NullInt64{Int64: res.ContentID, Valid: true}
	}

	version, err := t.q.InsertResource(ctx, params)
	if err != nil {
		return registry.NewPersistenceError("insert resource version", res.Path, err)
	}
	res.Version = version

	if err := s.AddProperties(ctx, res); err != nil {
		return err
	}
	t.log.Debug("resource version added", "path", res.Path, "version", version)
	return nil
}

func (s *resourceStore) Delete(ctx context.Context, res *registry.Resource) error {
	t := s.t
	id := res.ID
	tenant := t.sess.TenantID

	var (
		rows []sqlc.Resource
		err  error
	)
	if id.Collection {
		rows, err = t.q.ListCollectionRows(ctx, sqlc.ListCollectionRowsParams{TenantID: tenant, PathID: id.PathID})
	} else {
		rows, err = t.q.ListResourceRows(ctx, sqlc.ListResourceRowsParams{TenantID: tenant, PathID: id.PathID, Name: nullName(id.Name)})
	}
	if err != nil {
		return registry.NewPersistenceError("list versions for delete", id.Path, err)
	}

	flags := t.db.opts.Flags
	if flags.RetainHistory() {
		now := t.db.opts.Clock.Now()
		if id.Collection {
			err = t.q.ArchiveCollectionRows(ctx, sqlc.ArchiveCollectionRowsParams{ArchivedAt: now, TenantID: tenant, PathID: id.PathID})
		} else {
			err = t.q.ArchiveResourceRows(ctx, sqlc.ArchiveResourceRowsParams{ArchivedAt: now, TenantID: tenant, PathID: id.PathID, Name: nullName(id.Name)})
		}
		if err != nil {
			return registry.NewPersistenceError("archive versions", id.Path, err)
		}
	} else {
		for _, row := range rows {
			if row.ContentID.Valid {
				if err := s.DeleteContent(ctx, row.ContentID.Int64); err != nil {
					return err
				}
			}
			if flags.VersionedProperties() {
				if err := s.removeVersionProperties(ctx, row.Version, id.Path); err != nil {
					return err
				}
			}
		}
	}
	if err := s.removeIdentityProperties(ctx, id); err != nil {
		return err
	}

	if id.Collection {
		err = t.q.DeleteCollectionRows(ctx, sqlc.DeleteCollectionRowsParams{TenantID: tenant, PathID: id.PathID})
	} else {
		err = t.q.DeleteResourceRows(ctx, sqlc.DeleteResourceRowsParams{TenantID: tenant, PathID: id.PathID, Name: nullName(id.Name)})
	}
	if err != nil {
		return registry.NewPersistenceError("delete resource", id.Path, err)
	}
	t.log.Debug("resource deleted", "path", id.Path, "versions", len(rows))
	return nil
}

func (s *resourceStore) TouchCollection(ctx context.Context, id *registry.ResourceID) error {
	v, err := s.Version(ctx, id)
	if err != nil {
		return err
	}
	if v == registry.NotFoundVersion {
		return nil
	}
	t := s.t
	err = t.q.TouchResourceVersion(ctx, sqlc.TouchResourceVersionParams{
		LastModified: t.db.opts.Clock.Now(),
		LastUpdater:  t.sess.User,
		TenantID:     t.sess.TenantID,
		Version:      v,
	})
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked) {
			err = fmt.Errorf("%w: %v", registry.ErrConcurrentModification, err)
		}
		return registry.NewPersistenceError("touch collection", id.Path, err)
	}
	return nil
}

// Moves

func (s *resourceStore) MoveResources(ctx context.Context, src, dst *registry.ResourceID) error {
	t := s.t
	var err error
	if src.Collection {
		err = t.q.MoveCollectionRows(ctx, sqlc.MoveCollectionRowsParams{
			PathID: dst.PathID, TenantID: t.sess.TenantID, PathID_2: src.PathID,
		})
	} else {
		err = t.q.MoveResourceRows(ctx, sqlc.MoveResourceRowsParams{
			PathID: dst.PathID, Name: nullName(dst.Name),
			TenantID: t.sess.TenantID, PathID_2: src.PathID, Name_2: nullName(src.Name),
		})
	}
	if err != nil {
		return registry.NewPersistenceError("move resource", src.Path, err)
	}
	return nil
}

func (s *resourceStore) MoveResourcePaths(ctx context.Context, src, dst *registry.ResourceID) error {
	t := s.t
	err := t.q.MovePathRows(ctx, sqlc.MovePathRowsParams{
		PathID: dst.PathID, TenantID: t.sess.TenantID, PathID_2: src.PathID,
	})
	if err != nil {
		return registry.NewPersistenceError("move resource paths", src.Path, err)
	}
	return nil
}

func (s *resourceStore) MoveProperties(ctx context.Context, src, dst *registry.ResourceID) error {
	t := s.t
	if t.db.opts.Flags.VersionedProperties() {
		return nil
	}
	var err error
	if src.Collection {
		err = t.q.MoveCollectionPropertyLinks(ctx, sqlc.MoveCollectionPropertyLinksParams{
			PathID:   sql.NullInt64{Int64: dst.PathID, Valid: true},
			TenantID: t.sess.TenantID,
			PathID_2: sql.NullInt64{Int64: src.PathID, Valid: true},
		})
	} else {
		err = t.q.MoveResourcePropertyLinks(ctx, sqlc.MoveResourcePropertyLinksParams{
			PathID:         sql.NullInt64{Int64: dst.PathID, Valid: true},
			ResourceName:   nullName(dst.Name),
			TenantID:       t.sess.TenantID,
			PathID_2:       sql.NullInt64{Int64: src.PathID, Valid: true},
			ResourceName_2: nullName(src.Name),
		})
	}
	if err != nil {
		return registry.NewPersistenceError("move properties", src.Path, err)
	}
	return nil
}

func (s *resourceStore) MovePropertyPaths(ctx context.Context, src, dst *registry.ResourceID) error {
	t := s.t
	if t.db.opts.Flags.VersionedProperties() {
		return nil
	}
	err := t.q.MovePathPropertyLinks(ctx, sqlc.MovePathPropertyLinksParams{
		PathID:   sql.NullInt64{Int64: dst.PathID, Valid: true},
		TenantID: t.sess.TenantID,
		PathID_2: sql.NullInt64{Int64: src.PathID, Valid: true},
	})
	if err != nil {
		return registry.NewPersistenceError("move property paths", src.Path, err)
	}
	return nil
}

var _ registry.ResourceStore = (*resourceStore)(nil)
