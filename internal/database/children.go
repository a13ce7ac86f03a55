package database

import (
	"context"
	"database/sql"
	"sort"

	"reg-go/internal/database/sqlc"
	"reg-go/internal/registry"
)

func (s *resourceStore) ChildPaths(ctx context.Context, id *registry.ResourceID) ([]string, []string, error) {
	t := s.t
	names, err := t.q.ListChildResourceNames(ctx, sqlc.ListChildResourceNamesParams{
		TenantID: t.sess.TenantID,
		PathID:   id.PathID,
	})
	if err != nil {
		return nil, nil, registry.NewPersistenceError("list child resources", id.Path, err)
	}
	leaves := make([]string, 0, len(names))
	for _, n := range names {
		if n.Valid {
			leaves = append(leaves, registry.JoinPath(id.Path, n.String))
		}
	}

	colls, err := t.q.ListChildCollectionPaths(ctx, sqlc.ListChildCollectionPathsParams{
		TenantID: t.sess.TenantID,
		ParentID: sql.NullInt64{Int64: id.PathID, Valid: true},
	})
	if err != nil {
		return nil, nil, registry.NewPersistenceError("list child collections", id.Path, err)
	}
	collections := make([]string, 0, len(colls))
	for _, c := range colls {
		collections = append(collections, c.Path)
	}

	sort.Strings(leaves)
	sort.Strings(collections)
	return leaves, collections, nil
}

func (s *resourceStore) Children(ctx context.Context, coll *registry.Resource, start, pageLen int) ([]string, error) {
	leaves, collections, err := s.ChildPaths(ctx, coll.ID)
	if err != nil {
		return nil, err
	}

	auth := s.t.db.opts.Authorizer
	children := make([]string, 0, len(leaves)+len(collections))
	for _, group := range [][]string{leaves, collections} {
		for _, p := range group {
			if auth.Authorize(s.t.sess, p, registry.AuthGet) {
				children = append(children, p)
			}
		}
	}

	if start > len(children) {
		return nil, registry.NewPersistenceError("list children", coll.Path, registry.ErrPageOutOfRange)
	}
	return registry.Page(children, start, pageLen), nil
}

// ChildCount counts leaves and child collections without authorization.
func (s *resourceStore) ChildCount(ctx context.Context, coll *registry.Resource) (int, error) {
	t := s.t
	leaves, err := t.q.CountChildResources(ctx, sqlc.CountChildResourcesParams{
		TenantID: t.sess.TenantID,
		PathID:   coll.ID.PathID,
	})
	if err != nil {
		return 0, registry.NewPersistenceError("count child resources", coll.Path, err)
	}
	colls, err := t.q.CountChildCollections(ctx, sqlc.CountChildCollectionsParams{
		TenantID: t.sess.TenantID,
		ParentID: sql.NullInt64{Int64: coll.ID.PathID, Valid: true},
	})
	if err != nil {
		return 0, registry.NewPersistenceError("count child collections", coll.Path, err)
	}
	return int(leaves + colls), nil
}
