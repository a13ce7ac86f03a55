package database

import (
	"context"
	"database/sql"
	"strings"

	"reg-go/internal/database/sqlc"
	"reg-go/internal/registry"
)

// AddProperties links every (name, value) of res.Properties either to
// res.Version or to the resource identity, depending on the properties mode.
// A name without values is stored as a single NULL value.
func (s *resourceStore) AddProperties(ctx context.Context, res *registry.Resource) error {
	if res.Properties.Len() == 0 {
		return nil
	}
	t := s.t
	versioned := t.db.opts.Flags.VersionedProperties()

	link := sqlc.InsertPropertyLinkParams{TenantID: t.sess.TenantID}
	if versioned {
		link.Version = sql.NullInt64{Int64: res.Version, Valid: true}
	} else {
		link.PathID = sql.NullInt64{Int64: res.ID.PathID, Valid: true}
		if !res.ID.Collection {
			link.ResourceName = nullName(res.ID.Name)
		}
	}

	for _, name := range res.Properties.Names() {
		values := res.Properties.Get(name)
		nullable := make([]sql.NullString, 0, len(values))
		for _, v := range values {
			nullable = append(nullable, sql.NullString{String: v, Valid: true})
		}
		if len(nullable) == 0 {
			nullable = append(nullable, sql.NullString{})
		}

		for _, v := range nullable {
			propID, err := t.q.InsertProperty(ctx, sqlc.InsertPropertyParams{
				TenantID: t.sess.TenantID,
				Name:     name,
				Value:    v,
			})
			if err != nil {
				return registry.NewPersistenceError("add property", res.Path, err)
			}
			link.PropertyID = propID
			if err := t.q.InsertPropertyLink(ctx, link); err != nil {
				return registry.NewPersistenceError("link property", res.Path, err)
			}
		}
	}
	return nil
}

// RemoveProperties deletes the properties currently linked to res. With
// versioned properties that is res.Version; otherwise the identity.
func (s *resourceStore) RemoveProperties(ctx context.Context, res *registry.Resource) error {
	if s.t.db.opts.Flags.VersionedProperties() {
		return s.removeVersionProperties(ctx, res.Version, res.Path)
	}
	return s.removeIdentityProperties(ctx, res.ID)
}

func (s *resourceStore) removeVersionProperties(ctx context.Context, version int64, path string) error {
	rows, err := s.t.q.ListVersionProperties(ctx, sqlc.ListVersionPropertiesParams{
		TenantID: s.t.sess.TenantID,
		Version:  sql.NullInt64{Int64: version, Valid: true},
	})
	if err != nil {
		return registry.NewPersistenceError("list properties", path, err)
	}
	return s.deleteProperties(ctx, rows, path)
}

func (s *resourceStore) removeIdentityProperties(ctx context.Context, id *registry.ResourceID) error {
	rows, err := s.identityProperties(ctx, id)
	if err != nil {
		return err
	}
	return s.deleteProperties(ctx, rows, id.Path)
}

func (s *resourceStore) identityProperties(ctx context.Context, id *registry.ResourceID) ([]sqlc.PropertyRow, error) {
	var (
		rows []sqlc.PropertyRow
		err  error
	)
	pathID := sql.NullInt64{Int64: id.PathID, Valid: true}
	if id.Collection {
		rows, err = s.t.q.ListCollectionPathProperties(ctx, sqlc.ListCollectionPathPropertiesParams{
			TenantID: s.t.sess.TenantID, PathID: pathID,
		})
	} else {
		rows, err = s.t.q.ListResourcePathProperties(ctx, sqlc.ListResourcePathPropertiesParams{
			TenantID: s.t.sess.TenantID, PathID: pathID, ResourceName: nullName(id.Name),
		})
	}
	if err != nil {
		return nil, registry.NewPersistenceError("list properties", id.Path, err)
	}
	return rows, nil
}

// deleteChunk bounds the IN lists of deleteProperties below SQLite's
// bound-parameter limit (999 in older builds).
const deleteChunk = 500

// deleteProperties deletes the join rows and property rows of props, in
// chunks of deleteChunk, inside the store's transaction.
func (s *resourceStore) deleteProperties(ctx context.Context, props []sqlc.PropertyRow, path string) error {
	for len(props) > 0 {
		n := min(len(props), deleteChunk)
		if err := s.deletePropertyChunk(ctx, props[:n], path); err != nil {
			return err
		}
		props = props[n:]
	}
	return nil
}

func (s *resourceStore) deletePropertyChunk(ctx context.Context, props []sqlc.PropertyRow, path string) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(props)), ",")
	args := make([]any, 0, len(props)+1)
	args = append(args, s.t.sess.TenantID)
	for _, p := range props {
		args = append(args, p.ID)
	}

	stmts := []string{
		"DELETE FROM resource_properties WHERE tenant_id = ? AND property_id IN (" + placeholders + ")",
		"DELETE FROM properties WHERE tenant_id = ? AND id IN (" + placeholders + ")",
	}
	for _, stmt := range stmts {
		if _, err := s.t.tx.ExecContext(ctx, stmt, args...); err != nil {
			return registry.NewPersistenceError("remove properties", path, err)
		}
	}
	return nil
}

func (s *resourceStore) loadProperties(ctx context.Context, res *registry.Resource) error {
	var (
		rows []sqlc.PropertyRow
		err  error
	)
	if s.t.db.opts.Flags.VersionedProperties() {
		rows, err = s.t.q.ListVersionProperties(ctx, sqlc.ListVersionPropertiesParams{
			TenantID: s.t.sess.TenantID,
			Version:  sql.NullInt64{Int64: res.Version, Valid: true},
		})
		if err != nil {
			return registry.NewPersistenceError("load properties", res.Path, err)
		}
	} else {
		rows, err = s.identityProperties(ctx, res.ID)
		if err != nil {
			return err
		}
	}

	props := registry.NewProperties()
	for _, r := range rows {
		if r.Value.Valid {
			props.Add(r.Name, r.Value.String)
		} else {
			props.Add(r.Name)
		}
	}
	res.Properties = props
	return nil
}
