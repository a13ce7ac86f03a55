package registry

import (
	"context"
	"fmt"
)

// AddAssociation links source to target. Both ends must live in the same
// store and source must exist.
func (s *RegistryService) AddAssociation(ctx context.Context, sess Session, source, target, assocType string) error {
	return s.changeAssociation(ctx, sess, source, target, assocType, ActionAddAssociation)
}

// RemoveAssociation drops the association if present.
func (s *RegistryService) RemoveAssociation(ctx context.Context, sess Session, source, target, assocType string) error {
	return s.changeAssociation(ctx, sess, source, target, assocType, ActionRemoveAssociation)
}

func (s *RegistryService) changeAssociation(ctx context.Context, sess Session, source, dest, assocType string, action int) error {
	if assocType == "" {
		return fmt.Errorf("association type is required")
	}
	from, err := s.resolve(source)
	if err != nil {
		return err
	}
	to, err := s.resolve(dest)
	if err != nil {
		return err
	}
	if from.db != to.db {
		return fmt.Errorf("associating %s with %s: %w", from.ext, to.ext, ErrCrossMount)
	}
	if err := s.authorize(sess, from.ext, AuthPut); err != nil {
		return err
	}

	err = RunInTx(ctx, from.db, sess, func(tx Tx) error {
		as := tx.Associations()
		if action == ActionAddAssociation {
			id, err := existingID(ctx, tx.Resources(), from.path)
			if err != nil {
				return err
			}
			if id == nil {
				return fmt.Errorf("%w: %s", ErrNotFound, from.ext)
			}
			if err := as.Add(ctx, from.path, to.path, assocType); err != nil {
				return err
			}
		} else if err := as.Remove(ctx, from.path, to.path, assocType); err != nil {
			return err
		}
		return tx.Logs().Append(ctx, []LogEntry{{
			Path:       from.path,
			Action:     action,
			ActionData: assocType + ";" + to.ext,
		}})
	})
	if err != nil {
		return fmt.Errorf("updating association %s -> %s: %w", from.ext, to.ext, err)
	}
	return nil
}

// Associations returns the associations where path is the source or the target.
func (s *RegistryService) Associations(ctx context.Context, sess Session, path string) ([]Association, error) {
	return s.associations(ctx, sess, path, "")
}

// AssociationsOfType returns the associations of assocType sourced at path.
func (s *RegistryService) AssociationsOfType(ctx context.Context, sess Session, path, assocType string) ([]Association, error) {
	return s.associations(ctx, sess, path, assocType)
}

func (s *RegistryService) associations(ctx context.Context, sess Session, path, assocType string) ([]Association, error) {
	t, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(sess, t.ext, AuthGet); err != nil {
		return nil, err
	}

	var assocs []Association
	err = RunInTx(ctx, t.db, sess, func(tx Tx) error {
		if assocType == "" {
			assocs, err = tx.Associations().GetAll(ctx, t.path)
		} else {
			assocs, err = tx.Associations().GetAllForType(ctx, t.path, assocType)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("listing associations of %s: %w", t.ext, err)
	}
	for i := range assocs {
		assocs[i].Source = s.external(t, assocs[i].Source)
		assocs[i].Target = s.external(t, assocs[i].Target)
	}
	return assocs, nil
}
