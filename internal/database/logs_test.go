package database

import (
	"context"
	"testing"
	"time"

	"reg-go/internal/registry"
)

func seedLogs(t *testing.T, tx registry.Tx, base time.Time) {
	t.Helper()
	entries := []registry.LogEntry{
		{Path: "/p", User: "u", Date: base, Action: registry.ActionAdd},
		{Path: "/p", User: "v", Date: base.Add(time.Minute), Action: registry.ActionUpdate},
		{Path: "/q", User: "u", Date: base.Add(2 * time.Minute), Action: registry.ActionAdd},
		{Path: "/p", User: "u", Date: base.Add(3 * time.Minute), Action: registry.ActionDelete, ActionData: "gone"},
	}
	if err := tx.Logs().Append(context.Background(), entries); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
}

func paths(entries []registry.LogEntry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Path)
	}
	return out
}

func TestLogStore_Query(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("path and user filters combine", func(t *testing.T) {
		db := newTestDB(t, Options{})
		tx := beginTx(t, db, testSession)
		seedLogs(t, tx, base)

		filter := registry.NewLogFilter()
		filter.Path = "/p"
		filter.User = "u"
		got, err := tx.Logs().Query(ctx, filter, 0, -1)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("Query() returned %d entries, want 2", len(got))
		}
		for _, e := range got {
			if e.Path != "/p" || e.User != "u" {
				t.Errorf("entry %+v does not match filter", e)
			}
		}
		if got[1].ActionData != "gone" || got[1].Action != registry.ActionDelete {
			t.Errorf("last entry = %+v, want delete with data", got[1])
		}
	})

	t.Run("no filters returns every tenant entry in time order", func(t *testing.T) {
		db := newTestDB(t, Options{})
		tx := beginTx(t, db, testSession)
		seedLogs(t, tx, base)
		if err := tx.Logs().Append(ctx, []registry.LogEntry{{Path: "/p", User: "u", Date: base}}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		commit(t, tx)

		other := beginTx(t, db, registry.NewSession(9, "x"))
		if err := other.Logs().Append(ctx, []registry.LogEntry{{Path: "/p", User: "u", Date: base}}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		commit(t, other)

		tx2 := beginTx(t, db, testSession)
		asc, err := tx2.Logs().Query(ctx, registry.NewLogFilter(), 0, -1)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(asc) != 5 {
			t.Fatalf("Query() returned %d entries, want 5", len(asc))
		}
		for i := 1; i < len(asc); i++ {
			if asc[i].Date.Before(asc[i-1].Date) {
				t.Errorf("ascending order broken at %d: %v before %v", i, asc[i].Date, asc[i-1].Date)
			}
		}

		filter := registry.NewLogFilter()
		filter.Descending = true
		desc, err := tx2.Logs().Query(ctx, filter, 0, -1)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if !desc[0].Date.Equal(base.Add(3 * time.Minute)) {
			t.Errorf("newest entry date = %v, want %v", desc[0].Date, base.Add(3*time.Minute))
		}
	})

	t.Run("action and time range filters", func(t *testing.T) {
		db := newTestDB(t, Options{})
		tx := beginTx(t, db, testSession)
		seedLogs(t, tx, base)

		filter := registry.NewLogFilter()
		filter.Action = registry.ActionAdd
		got, err := tx.Logs().Query(ctx, filter, 0, -1)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("action filter returned %v, want 2 entries", paths(got))
		}

		filter = registry.NewLogFilter()
		filter.From = base.Add(30 * time.Second)
		filter.To = base.Add(2 * time.Minute)
		got, err = tx.Logs().Query(ctx, filter, 0, -1)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("time range returned %v, want 2 entries", paths(got))
		}
	})

	t.Run("offset pagination", func(t *testing.T) {
		db := newTestDB(t, Options{})
		tx := beginTx(t, db, testSession)
		seedLogs(t, tx, base)

		got, err := tx.Logs().Query(ctx, registry.NewLogFilter(), 1, 2)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(got) != 2 || got[0].User != "v" || got[1].Path != "/q" {
			t.Errorf("Query(1, 2) = %+v", got)
		}
	})

	t.Run("paged query records total length", func(t *testing.T) {
		db := newTestDB(t, Options{})
		tx := beginTx(t, db, testSession)
		seedLogs(t, tx, base)

		page := registry.NewPaginationContext(3, 2)
		got, err := tx.Logs().QueryPage(ctx, registry.NewLogFilter(), page)
		if err != nil {
			t.Fatalf("QueryPage() error = %v", err)
		}
		if page.Length() != 4 {
			t.Errorf("Length() = %d, want 4", page.Length())
		}
		if len(got) != 1 || got[0].Action != registry.ActionDelete {
			t.Errorf("QueryPage() = %+v, want the last entry", got)
		}

		count, err := tx.Logs().Count(ctx, registry.NewLogFilter())
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		if count != 4 {
			t.Errorf("Count() = %d, want 4", count)
		}
	})

	t.Run("missing user and date come from the session and clock", func(t *testing.T) {
		clock := newStepClock()
		db := newTestDB(t, Options{Clock: clock})
		tx := beginTx(t, db, testSession)

		if err := tx.Logs().Append(ctx, []registry.LogEntry{{Path: "/p", Action: registry.ActionAdd}}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		got, err := tx.Logs().Query(ctx, registry.NewLogFilter(), 0, -1)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(got) != 1 || got[0].User != "tester" || !got[0].Date.Equal(clock.Now()) {
			t.Errorf("Query() = %+v", got)
		}
	})
}
