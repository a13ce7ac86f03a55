package database

import (
	"context"

	"reg-go/internal/database/sqlc"
	"reg-go/internal/registry"
)

// associationStore implements registry.AssociationStore over a transaction.
type associationStore struct {
	t *sqliteTx
}

func (s *associationStore) Add(ctx context.Context, source, target, assocType string) error {
	t := s.t
	n, err := t.q.CountAssociation(ctx, sqlc.CountAssociationParams{
		TenantID:        t.sess.TenantID,
		SourcePath:      source,
		TargetPath:      target,
		AssociationType: assocType,
	})
	if err != nil {
		return registry.NewPersistenceError("check association", source, err)
	}
	if n > 0 {
		return nil
	}
	err = t.q.InsertAssociation(ctx, sqlc.InsertAssociationParams{
		TenantID:        t.sess.TenantID,
		SourcePath:      source,
		TargetPath:      target,
		AssociationType: assocType,
	})
	if err != nil {
		return registry.NewPersistenceError("add association", source, err)
	}
	return nil
}

func (s *associationStore) Remove(ctx context.Context, source, target, assocType string) error {
	t := s.t
	err := t.q.DeleteAssociation(ctx, sqlc.DeleteAssociationParams{
		TenantID:        t.sess.TenantID,
		SourcePath:      source,
		TargetPath:      target,
		AssociationType: assocType,
	})
	if err != nil {
		return registry.NewPersistenceError("remove association", source, err)
	}
	return nil
}

func toAssociations(rows []sqlc.Association) []registry.Association {
	out := make([]registry.Association, 0, len(rows))
	for _, r := range rows {
		out = append(out, registry.Association{
			Source: r.SourcePath,
			Target: r.TargetPath,
			Type:   r.AssociationType,
		})
	}
	return out
}

func (s *associationStore) GetAll(ctx context.Context, path string) ([]registry.Association, error) {
	rows, err := s.t.q.ListAssociations(ctx, sqlc.ListAssociationsParams{
		TenantID:   s.t.sess.TenantID,
		SourcePath: path,
		TargetPath: path,
	})
	if err != nil {
		return nil, registry.NewPersistenceError("list associations", path, err)
	}
	return toAssociations(rows), nil
}

func (s *associationStore) GetAllForType(ctx context.Context, path, assocType string) ([]registry.Association, error) {
	rows, err := s.t.q.ListAssociationsBySourceAndType(ctx, sqlc.ListAssociationsBySourceAndTypeParams{
		TenantID:        s.t.sess.TenantID,
		SourcePath:      path,
		AssociationType: assocType,
	})
	if err != nil {
		return nil, registry.NewPersistenceError("list associations", path, err)
	}
	return toAssociations(rows), nil
}

// ReplaceAssociations points associations targeting oldPath at newPath.
// Rows that would duplicate an existing association are dropped.
func (s *associationStore) ReplaceAssociations(ctx context.Context, oldPath, newPath string) error {
	t := s.t
	err := t.q.ReplaceAssociationTargets(ctx, sqlc.ReplaceAssociationTargetsParams{
		TargetPath:   newPath,
		TenantID:     t.sess.TenantID,
		TargetPath_2: oldPath,
	})
	if err != nil {
		return registry.NewPersistenceError("replace associations", oldPath, err)
	}
	err = t.q.DeleteAssociationsByTarget(ctx, sqlc.DeleteAssociationsByTargetParams{
		TenantID:   t.sess.TenantID,
		TargetPath: oldPath,
	})
	if err != nil {
		return registry.NewPersistenceError("replace associations", oldPath, err)
	}
	return nil
}

func (s *associationStore) RemoveAll(ctx context.Context, path string) error {
	err := s.t.q.DeleteAllAssociations(ctx, sqlc.DeleteAllAssociationsParams{
		TenantID:   s.t.sess.TenantID,
		SourcePath: path,
		TargetPath: path,
	})
	if err != nil {
		return registry.NewPersistenceError("remove associations", path, err)
	}
	return nil
}

func (s *associationStore) CopyAssociations(ctx context.Context, from, to string) error {
	rows, err := s.t.q.ListAssociationsBySource(ctx, sqlc.ListAssociationsBySourceParams{
		TenantID:   s.t.sess.TenantID,
		SourcePath: from,
	})
	if err != nil {
		return registry.NewPersistenceError("copy associations", from, err)
	}
	for _, r := range rows {
		if err := s.Add(ctx, to, r.TargetPath, r.AssociationType); err != nil {
			return err
		}
	}
	return nil
}

var _ registry.AssociationStore = (*associationStore)(nil)
