package database

import (
	"context"
	"database/sql"
	"strings"

	"reg-go/internal/database/sqlc"
	"reg-go/internal/registry"
)

// logStore implements registry.LogStore over a transaction.
type logStore struct {
	t *sqliteTx
}

func (s *logStore) Append(ctx context.Context, entries []registry.LogEntry) error {
	t := s.t
	for _, e := range entries {
		params := sqlc.InsertLogParams{
			TenantID: t.sess.TenantID,
			UserName: e.User,
			LoggedAt: e.Date.UTC(),
			Action:   int64(e.Action),
		}
		if params.UserName == "" {
			params.UserName = t.sess.User
		}
		if e.Date.IsZero() {
			params.LoggedAt = t.db.opts.Clock.Now()
		}
		if e.Path != "" {
			params.Path = sql.NullString{String: e.Path, Valid: true}
		}
		if e.ActionData != "" {
			params.ActionData = sql.NullString{String: e.ActionData, Valid: true}
		}
		if err := t.q.InsertLog(ctx, params); err != nil {
			return registry.NewPersistenceError("append log", e.Path, err)
		}
	}
	return nil
}

// logWhere builds the conjunctive WHERE clause for filter. The tenant is
// always part of it.
func logWhere(tenant int64, filter registry.LogFilter) (string, []any) {
	conds := []string{"tenant_id = ?"}
	args := []any{tenant}
	if filter.Path != "" {
		conds = append(conds, "path = ?")
		args = append(args, filter.Path)
	}
	if filter.User != "" {
		conds = append(conds, "user_name = ?")
		args = append(args, filter.User)
	}
	if !filter.From.IsZero() {
		conds = append(conds, "logged_at >= ?")
		args = append(args, filter.From.UTC())
	}
	if !filter.To.IsZero() {
		conds = append(conds, "logged_at <= ?")
		args = append(args, filter.To.UTC())
	}
	if filter.Action != registry.ActionAll {
		conds = append(conds, "action = ?")
		args = append(args, filter.Action)
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *logStore) Count(ctx context.Context, filter registry.LogFilter) (int, error) {
	where, args := logWhere(s.t.sess.TenantID, filter)
	var n int
	if err := s.t.tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM logs"+where, args...).Scan(&n); err != nil {
		return 0, registry.NewPersistenceError("count logs", filter.Path, err)
	}
	return n, nil
}

func (s *logStore) Query(ctx context.Context, filter registry.LogFilter, start, pageLen int) ([]registry.LogEntry, error) {
	where, args := logWhere(s.t.sess.TenantID, filter)
	order := " ORDER BY logged_at, id"
	if filter.Descending {
		order = " ORDER BY logged_at DESC, id DESC"
	}
	if start < 0 {
		start = 0
	}
	if pageLen < 0 {
		pageLen = -1
	}
	query := "SELECT path, user_name, logged_at, action, action_data FROM logs" + where + order + " LIMIT ? OFFSET ?"
	args = append(args, pageLen, start)

	rows, err := s.t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, registry.NewPersistenceError("query logs", filter.Path, err)
	}
	defer s.t.closeRows(rows, "query logs")

	var entries []registry.LogEntry
	for rows.Next() {
		var (
			e          registry.LogEntry
			path, data sql.NullString
			action     int64
		)
		if err := rows.Scan(&path, &e.User, &e.Date, &action, &data); err != nil {
			return nil, registry.NewPersistenceError("scan log", filter.Path, err)
		}
		e.Path = path.String
		e.ActionData = data.String
		e.Action = int(action)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, registry.NewPersistenceError("query logs", filter.Path, err)
	}
	return entries, nil
}

func (s *logStore) QueryPage(ctx context.Context, filter registry.LogFilter, page *registry.PaginationContext) ([]registry.LogEntry, error) {
	total, err := s.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	page.SetLength(total)
	from, to := page.Window(total)
	return s.Query(ctx, filter, from, to-from)
}

var _ registry.LogStore = (*logStore)(nil)
