package registry

import (
	"context"
	"fmt"
	"path"
)

// Move re-parents the resource at src, with everything below it, to dst.
// Version history and identity properties travel with it and associations
// pointing at any moved path are rewritten.
func (s *RegistryService) Move(ctx context.Context, sess Session, src, dst string) error {
	from, to, err := s.resolvePair(sess, src, dst, AuthDelete)
	if err != nil {
		return err
	}
	if from.db != to.db {
		return fmt.Errorf("moving %s to %s: %w", from.ext, to.ext, ErrCrossMount)
	}
	if err := s.checkNoMounts(from.ext); err != nil {
		return fmt.Errorf("moving %s: %w", from.ext, err)
	}

	err = RunInTx(ctx, from.db, sess, func(tx Tx) error {
		rs := tx.Resources()
		id, err := existingID(ctx, rs, from.path)
		if err != nil {
			return err
		}
		if id == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, from.ext)
		}
		exists, err := rs.ResourceExists(ctx, to.path)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrExists, to.ext)
		}

		parent, _ := SplitPath(to.path)
		parentID, err := s.ensureCollection(ctx, tx, parent)
		if err != nil {
			return err
		}
		if err := s.move(ctx, tx, id, to.path, parentID); err != nil {
			return err
		}
		if err := s.touchParent(ctx, tx, from.path); err != nil {
			return err
		}
		if err := rs.TouchCollection(ctx, parentID); err != nil {
			return err
		}
		return tx.Logs().Append(ctx, []LogEntry{{Path: to.path, Action: ActionMove, ActionData: from.ext}})
	})
	if err != nil {
		return fmt.Errorf("moving %s to %s: %w", from.ext, to.ext, err)
	}
	s.logger.Info("resource moved", "from", from.ext, "to", to.ext)
	return nil
}

// resolvePair resolves a source and destination path and checks the source
// action on src and put on dst.
func (s *RegistryService) resolvePair(sess Session, src, dst, srcAction string) (target, target, error) {
	from, err := s.resolve(src)
	if err != nil {
		return target{}, target{}, err
	}
	to, err := s.resolve(dst)
	if err != nil {
		return target{}, target{}, err
	}
	if from.ext == RootPath {
		return target{}, target{}, fmt.Errorf("cannot move or copy the root collection")
	}
	if IsUnder(to.ext, from.ext) {
		return target{}, target{}, fmt.Errorf("cannot place %s inside itself", from.ext)
	}
	if err := s.authorize(sess, from.ext, srcAction); err != nil {
		return target{}, target{}, err
	}
	if err := s.authorize(sess, to.ext, AuthPut); err != nil {
		return target{}, target{}, err
	}
	return from, to, nil
}

func (s *RegistryService) move(ctx context.Context, tx Tx, id *ResourceID, dst string, parentID *ResourceID) error {
	rs := tx.Resources()
	_, name := SplitPath(dst)

	if !id.Collection {
		dstID := &ResourceID{PathID: parentID.PathID, Name: name, Path: dst}
		if err := rs.MoveResources(ctx, id, dstID); err != nil {
			return err
		}
		if err := rs.MoveProperties(ctx, id, dstID); err != nil {
			return err
		}
		return moveAssociations(ctx, tx.Associations(), id.Path, dst)
	}

	leaves, collections, err := rs.ChildPaths(ctx, id)
	if err != nil {
		return err
	}
	pathID, err := tx.Paths().AddEntry(ctx, dst, parentID.PathID)
	if err != nil {
		return err
	}
	dstID := &ResourceID{PathID: pathID, Collection: true, Path: dst}
	if err := rs.MoveResourcePaths(ctx, id, dstID); err != nil {
		return err
	}
	if err := rs.MovePropertyPaths(ctx, id, dstID); err != nil {
		return err
	}
	if err := moveAssociations(ctx, tx.Associations(), id.Path, dst); err != nil {
		return err
	}
	for _, leaf := range leaves {
		_, name := SplitPath(leaf)
		if err := moveAssociations(ctx, tx.Associations(), leaf, JoinPath(dst, name)); err != nil {
			return err
		}
	}

	for _, c := range collections {
		childID, err := rs.ResourceIDAs(ctx, c, true)
		if err != nil {
			return err
		}
		_, name := SplitPath(c)
		if err := s.move(ctx, tx, childID, JoinPath(dst, name), dstID); err != nil {
			return err
		}
	}
	return nil
}

// moveAssociations rewrites both ends of every association touching from.
func moveAssociations(ctx context.Context, as AssociationStore, from, to string) error {
	if err := as.ReplaceAssociations(ctx, from, to); err != nil {
		return err
	}
	if err := as.CopyAssociations(ctx, from, to); err != nil {
		return err
	}
	return as.RemoveAll(ctx, from)
}

// node is one resource captured by snapshot. rel is its path relative to the
// snapshot root, "" for the root itself.
type node struct {
	rel    string
	res    *Resource
	assocs []Association
}

// snapshot reads the tree rooted at p, parents before children, with
// content and the associations sourced at each path.
func snapshot(ctx context.Context, tx Tx, p string) ([]node, error) {
	rs := tx.Resources()
	var nodes []node

	var walk func(p, rel string) error
	walk = func(p, rel string) error {
		id, err := existingID(ctx, rs, p)
		if err != nil {
			return err
		}
		if id == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		res, err := rs.GetCollection(ctx, id, 0, 0)
		if err != nil {
			return err
		}
		all, err := tx.Associations().GetAll(ctx, p)
		if err != nil {
			return err
		}
		var sourced []Association
		for _, a := range all {
			if a.Source == p {
				sourced = append(sourced, a)
			}
		}
		nodes = append(nodes, node{rel: rel, res: res, assocs: sourced})

		if !id.Collection {
			return nil
		}
		leaves, collections, err := rs.ChildPaths(ctx, id)
		if err != nil {
			return err
		}
		for _, c := range append(leaves, collections...) {
			_, name := SplitPath(c)
			if err := walk(c, path.Join(rel, name)); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(p, ""); err != nil {
		return nil, err
	}
	return nodes, nil
}

// Copy duplicates the resource at src, with everything below it, to dst.
// Copies get fresh identities and start a new version history. src and dst
// may live in different stores.
func (s *RegistryService) Copy(ctx context.Context, sess Session, src, dst string) error {
	from, to, err := s.resolvePair(sess, src, dst, AuthGet)
	if err != nil {
		return err
	}

	var nodes []node
	err = RunInTx(ctx, from.db, sess, func(tx Tx) error {
		nodes, err = snapshot(ctx, tx, from.path)
		return err
	})
	if err != nil {
		return fmt.Errorf("reading %s: %w", from.ext, err)
	}

	err = RunInTx(ctx, to.db, sess, func(tx Tx) error {
		exists, err := tx.Resources().ResourceExists(ctx, to.path)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrExists, to.ext)
		}
		for _, n := range nodes {
			p := JoinPath(to.path, n.rel)
			if _, err := s.put(ctx, tx, p, freshCopy(n.res)); err != nil {
				return err
			}
			for _, a := range n.assocs {
				assocTarget := s.internal(to, s.external(from, a.Target))
				if err := tx.Associations().Add(ctx, p, assocTarget, a.Type); err != nil {
					return err
				}
			}
		}
		return tx.Logs().Append(ctx, []LogEntry{{Path: to.path, Action: ActionCopy, ActionData: from.ext}})
	})
	if err != nil {
		return fmt.Errorf("copying %s to %s: %w", from.ext, to.ext, err)
	}
	s.logger.Info("resource copied", "from", from.ext, "to", to.ext, "resources", len(nodes))
	return nil
}

// freshCopy returns the user-supplied part of res, ready to be stored as a
// new resource.
func freshCopy(res *Resource) *Resource {
	c := &Resource{
		Collection:  res.Collection,
		MediaType:   res.MediaType,
		Description: res.Description,
		Properties:  res.Properties.Clone(),
	}
	if !res.Collection && res.Content != nil {
		c.Content = append([]byte{}, res.Content...)
	}
	return c
}
