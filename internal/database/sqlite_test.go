package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"reg-go/internal/registry"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newTestDB creates a new in-memory database with schema applied.
func newTestDB(t *testing.T, opts Options) *SQLiteDatabase {
	t.Helper()

	db, err := NewSQLiteDatabase(":memory:", opts)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}

	if _, err := db.db.Exec(Schema); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

var testSession = registry.NewSession(0, "tester")

// beginTx opens a transaction that is rolled back at cleanup unless committed.
func beginTx(t *testing.T, db *SQLiteDatabase, sess registry.Session) registry.Tx {
	t.Helper()

	tx, err := db.Begin(context.Background(), sess)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	t.Cleanup(func() { tx.Rollback() })
	return tx
}

func commit(t *testing.T, tx registry.Tx) {
	t.Helper()
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
}

func addCollection(t *testing.T, tx registry.Tx, path string) *registry.Resource {
	t.Helper()
	res := registry.NewCollection()
	if err := tx.Resources().Add(context.Background(), path, nil, res); err != nil {
		t.Fatalf("Add(%s) error = %v", path, err)
	}
	return res
}

func addLeaf(t *testing.T, tx registry.Tx, path, content string) *registry.Resource {
	t.Helper()
	res := registry.NewResource()
	res.MediaType = "text/plain"
	res.Content = []byte(content)
	if err := tx.Resources().Add(context.Background(), path, nil, res); err != nil {
		t.Fatalf("Add(%s) error = %v", path, err)
	}
	return res
}

func TestSQLiteDatabase_Tx(t *testing.T) {
	ctx := context.Background()

	t.Run("committed writes are visible to later transactions", func(t *testing.T) {
		db := newTestDB(t, Options{})

		tx := beginTx(t, db, testSession)
		addCollection(t, tx, "/a")
		commit(t, tx)

		tx2 := beginTx(t, db, testSession)
		ok, err := tx2.Resources().ResourceExists(ctx, "/a")
		if err != nil {
			t.Fatalf("ResourceExists() error = %v", err)
		}
		if !ok {
			t.Error("ResourceExists(/a) = false after commit")
		}
	})

	t.Run("rollback discards writes and interned paths", func(t *testing.T) {
		db := newTestDB(t, Options{})

		tx := beginTx(t, db, testSession)
		addCollection(t, tx, "/a")
		if err := tx.Rollback(); err != nil {
			t.Fatalf("Rollback() error = %v", err)
		}

		tx2 := beginTx(t, db, testSession)
		id, err := tx2.Paths().GetPathID(ctx, "/a")
		if err != nil {
			t.Fatalf("GetPathID() error = %v", err)
		}
		if id != registry.NotFoundPathID {
			t.Errorf("GetPathID(/a) = %d after rollback, want %d", id, registry.NotFoundPathID)
		}
	})

	t.Run("rollback after commit is a no-op", func(t *testing.T) {
		db := newTestDB(t, Options{})

		tx := beginTx(t, db, testSession)
		commit(t, tx)
		if err := tx.Rollback(); err != nil {
			t.Errorf("Rollback() after Commit() error = %v", err)
		}
	})

	t.Run("RunInTx rolls back when fn fails", func(t *testing.T) {
		db := newTestDB(t, Options{})

		err := registry.RunInTx(ctx, db, testSession, func(tx registry.Tx) error {
			addCollection(t, tx, "/a")
			return registry.ErrConcurrentModification
		})
		if err != registry.ErrConcurrentModification {
			t.Fatalf("RunInTx() error = %v, want ErrConcurrentModification", err)
		}

		tx := beginTx(t, db, testSession)
		ok, _ := tx.Resources().ResourceExists(ctx, "/a")
		if ok {
			t.Error("ResourceExists(/a) = true after failed RunInTx")
		}
	})
}

func TestSQLiteDatabase_MaxVersion(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, Options{})

	v, err := db.MaxVersion(ctx)
	if err != nil {
		t.Fatalf("MaxVersion() error = %v", err)
	}
	if v != 0 {
		t.Errorf("MaxVersion() on empty store = %d, want 0", v)
	}

	tx := beginTx(t, db, testSession)
	res := addLeaf(t, tx, "/doc", "x")
	commit(t, tx)

	v, err = db.MaxVersion(ctx)
	if err != nil {
		t.Fatalf("MaxVersion() error = %v", err)
	}
	if v != res.Version {
		t.Errorf("MaxVersion() = %d, want %d", v, res.Version)
	}
}
