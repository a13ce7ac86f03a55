package registry

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
)

// Import copies the local file or directory tree at localPath into the
// registry at regPath. Directories become collections and files become
// resources. Returns the number of resources stored.
func (s *RegistryService) Import(ctx context.Context, sess Session, localPath, regPath string) (int, error) {
	if s.fsmgr == nil {
		return 0, fmt.Errorf("no filesystem manager configured")
	}
	t, err := s.resolve(regPath)
	if err != nil {
		return 0, err
	}
	if err := s.authorize(sess, t.ext, AuthPut); err != nil {
		return 0, err
	}

	count := 0
	err = RunInTx(ctx, t.db, sess, func(tx Tx) error {
		var entries []LogEntry
		err := s.fsmgr.Walk(localPath, func(rel string, isDir bool) error {
			p := t.path
			if rel != "." {
				p = JoinPath(t.path, rel)
			}
			res, err := s.readLocal(filepath.Join(localPath, filepath.FromSlash(rel)), isDir)
			if err != nil {
				return err
			}
			action, err := s.put(ctx, tx, p, res)
			if err != nil {
				return fmt.Errorf("storing %s: %w", p, err)
			}
			entries = append(entries, LogEntry{Path: p, Action: action})
			count++
			return nil
		})
		if err != nil {
			return err
		}
		return tx.Logs().Append(ctx, entries)
	})
	if err != nil {
		return 0, fmt.Errorf("importing %s into %s: %w", localPath, t.ext, err)
	}
	s.logger.Info("import complete", "source", localPath, "path", t.ext, "resources", count)
	return count, nil
}

func (s *RegistryService) readLocal(name string, isDir bool) (*Resource, error) {
	if isDir {
		return NewCollection(), nil
	}
	f, err := s.fsmgr.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	res := NewResource()
	res.Content = data
	res.MediaType = mime.TypeByExtension(path.Ext(name))
	return res, nil
}

// Export writes the resource tree at regPath below localDir. Collections
// become directories and resources become files. Returns the number of
// resources written.
func (s *RegistryService) Export(ctx context.Context, sess Session, regPath, localDir string) (int, error) {
	if s.fsmgr == nil {
		return 0, fmt.Errorf("no filesystem manager configured")
	}
	t, err := s.resolve(regPath)
	if err != nil {
		return 0, err
	}
	if err := s.authorize(sess, t.ext, AuthGet); err != nil {
		return 0, err
	}

	var nodes []node
	err = RunInTx(ctx, t.db, sess, func(tx Tx) error {
		nodes, err = snapshot(ctx, tx, t.path)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", t.ext, err)
	}

	count := 0
	for _, n := range nodes {
		ext := JoinPath(t.ext, n.rel)
		if !s.auth.Authorize(sess, ext, AuthGet) {
			continue
		}
		dest := filepath.Join(localDir, filepath.FromSlash(n.rel))
		if n.rel == "" && !n.res.Collection {
			_, name := SplitPath(t.ext)
			dest = filepath.Join(localDir, name)
		}
		if n.res.Collection {
			err = s.fsmgr.MkdirAll(dest)
		} else {
			err = s.fsmgr.WriteFile(dest, n.res.Content)
		}
		if err != nil {
			return count, fmt.Errorf("exporting %s: %w", ext, err)
		}
		count++
	}
	s.logger.Info("export complete", "path", t.ext, "destination", localDir, "resources", count)
	return count, nil
}
