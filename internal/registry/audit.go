package registry

import (
	"context"
	"fmt"
	"sort"
)

// AppendLogs records entries, each one in the store that owns its path.
// Entries for one store are written in a single transaction.
func (s *RegistryService) AppendLogs(ctx context.Context, sess Session, entries []LogEntry) error {
	var order []Database
	groups := make(map[Database][]LogEntry)
	for _, e := range entries {
		db := s.local
		if e.Path != "" {
			if p, m, ok := s.mounts.Route(e.Path); ok {
				db = s.backends[m.Instance]
				e.Path = p
			}
		}
		if e.Date.IsZero() {
			e.Date = s.clock.Now()
		}
		if _, ok := groups[db]; !ok {
			order = append(order, db)
		}
		groups[db] = append(groups[db], e)
	}

	for _, db := range order {
		err := RunInTx(ctx, db, sess, func(tx Tx) error {
			return tx.Logs().Append(ctx, groups[db])
		})
		if err != nil {
			return fmt.Errorf("appending log entries: %w", err)
		}
	}
	return nil
}

// logSource is one store a log query visits, with the filter rewritten for it.
type logSource struct {
	target
	filter LogFilter
}

// logSources picks the stores a query has to visit. A path filter selects
// the one store owning that path; no path means every store.
func (s *RegistryService) logSources(filter LogFilter) ([]logSource, error) {
	if filter.Path != "" {
		t, err := s.resolve(filter.Path)
		if err != nil {
			return nil, err
		}
		f := filter
		f.Path = t.path
		return []logSource{{target: t, filter: f}}, nil
	}

	sources := []logSource{{target: target{db: s.local}, filter: filter}}
	for _, m := range s.mounts.Covering("") {
		sources = append(sources, logSource{
			target: target{db: s.backends[m.Instance], mount: m, mounted: true},
			filter: filter,
		})
	}
	return sources, nil
}

// translate rewrites entry paths read from src into the external namespace.
// Entries of a mounted store that lie outside the mounted sub-tree are not
// visible through the mount and are dropped.
func (s *RegistryService) translate(src logSource, entries []LogEntry) []LogEntry {
	if !src.mounted {
		return entries
	}
	out := entries[:0]
	for _, e := range entries {
		if e.Path == "" || !IsUnder(e.Path, src.mount.TargetPath) {
			continue
		}
		e.Path = s.external(src.target, e.Path)
		out = append(out, e)
	}
	return out
}

// Logs returns the entries matching filter in the [start, start+pageLen)
// window. pageLen < 0 returns everything from start.
func (s *RegistryService) Logs(ctx context.Context, sess Session, filter LogFilter, start, pageLen int) ([]LogEntry, error) {
	sources, err := s.logSources(filter)
	if err != nil {
		return nil, err
	}
	if len(sources) == 1 {
		src := sources[0]
		var entries []LogEntry
		err := RunInTx(ctx, src.db, sess, func(tx Tx) error {
			entries, err = tx.Logs().Query(ctx, src.filter, start, pageLen)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("querying logs: %w", err)
		}
		return s.translate(src, entries), nil
	}

	merged, err := s.mergedLogs(ctx, sess, sources, filter.Descending)
	if err != nil {
		return nil, err
	}
	return Page(merged, start, pageLen), nil
}

// LogsPage returns the page described by page and records the total number of
// matching entries on it.
func (s *RegistryService) LogsPage(ctx context.Context, sess Session, filter LogFilter, page *PaginationContext) ([]LogEntry, error) {
	sources, err := s.logSources(filter)
	if err != nil {
		return nil, err
	}
	if len(sources) == 1 {
		src := sources[0]
		var entries []LogEntry
		err := RunInTx(ctx, src.db, sess, func(tx Tx) error {
			entries, err = tx.Logs().QueryPage(ctx, src.filter, page)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("querying logs: %w", err)
		}
		return s.translate(src, entries), nil
	}

	merged, err := s.mergedLogs(ctx, sess, sources, filter.Descending)
	if err != nil {
		return nil, err
	}
	page.SetLength(len(merged))
	from, to := page.Window(len(merged))
	return merged[from:to], nil
}

// mergedLogs reads every matching entry from each source and merges them by
// date. Store-side pagination is disabled; the caller windows the result once.
func (s *RegistryService) mergedLogs(ctx context.Context, sess Session, sources []logSource, descending bool) ([]LogEntry, error) {
	var merged []LogEntry
	for _, src := range sources {
		var entries []LogEntry
		err := RunInTx(ctx, src.db, sess, func(tx Tx) error {
			var err error
			entries, err = tx.Logs().Query(ctx, src.filter, 0, -1)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("querying logs: %w", err)
		}
		merged = append(merged, s.translate(src, entries)...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if descending {
			return merged[i].Date.After(merged[j].Date)
		}
		return merged[i].Date.Before(merged[j].Date)
	})
	s.logger.Debug("merged log query", "sources", len(sources), "entries", len(merged))
	return merged, nil
}
