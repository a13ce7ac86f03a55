package registry

import (
	"context"
	"fmt"
	"strconv"
)

// Versions lists every retained version of the resource at path, newest
// first. Archived versions of a deleted resource are included.
func (s *RegistryService) Versions(ctx context.Context, sess Session, path string) ([]int64, error) {
	t, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(sess, t.ext, AuthGet); err != nil {
		return nil, err
	}

	var versions []int64
	err = RunInTx(ctx, t.db, sess, func(tx Tx) error {
		rs := tx.Resources()
		for _, collection := range []bool{true, false} {
			id, err := rs.ResourceIDAs(ctx, t.path, collection)
			if err != nil {
				return err
			}
			if id == nil {
				continue
			}
			if versions, err = rs.Versions(ctx, id); err != nil {
				return err
			}
			if len(versions) > 0 {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing versions of %s: %w", t.ext, err)
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, t.ext)
	}
	return versions, nil
}

// GetVersion returns one version of the resource at path.
func (s *RegistryService) GetVersion(ctx context.Context, sess Session, path string, version int64) (*Resource, error) {
	t, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(sess, t.ext, AuthGet); err != nil {
		return nil, err
	}

	var res *Resource
	err = RunInTx(ctx, t.db, sess, func(tx Tx) error {
		res, err = tx.Resources().GetVersion(ctx, t.path, version)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getting %s version %d: %w", t.ext, version, err)
	}
	if res == nil {
		return nil, fmt.Errorf("%w: %s version %d", ErrNotFound, t.ext, version)
	}
	return s.externalize(sess, t, res), nil
}

// RestoreVersion stores a copy of an earlier version as the new current
// version. The resource is re-created if it was deleted.
func (s *RegistryService) RestoreVersion(ctx context.Context, sess Session, path string, version int64) (*Resource, error) {
	t, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(sess, t.ext, AuthPut); err != nil {
		return nil, err
	}

	var restored *Resource
	err = RunInTx(ctx, t.db, sess, func(tx Tx) error {
		old, err := tx.Resources().GetVersion(ctx, t.path, version)
		if err != nil {
			return err
		}
		if old == nil {
			return fmt.Errorf("%w: version %d", ErrNotFound, version)
		}

		restored = freshCopy(old)
		restored.UUID = old.UUID
		restored.Author = old.Author
		restored.CreatedAt = old.CreatedAt
		if !restored.Collection && restored.Content == nil {
			restored.Content = []byte{}
		}
		if _, err := s.put(ctx, tx, t.path, restored); err != nil {
			return err
		}
		return tx.Logs().Append(ctx, []LogEntry{{
			Path:       t.path,
			Action:     ActionRestore,
			ActionData: strconv.FormatInt(version, 10),
		}})
	})
	if err != nil {
		return nil, fmt.Errorf("restoring %s version %d: %w", t.ext, version, err)
	}
	restored.Path = t.ext
	s.logger.Info("version restored", "path", t.ext, "from", version, "version", restored.Version)
	return restored, nil
}
