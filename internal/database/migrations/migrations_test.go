package migrations

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"reg-go/internal/registry"
)

func TestUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	before, after, err := Up(db)
	if err != nil {
		t.Fatalf("Up() failed: %v", err)
	}
	if before.Initialized {
		t.Errorf("before = %+v, want uninitialized", before)
	}
	if !after.Initialized || after.Version != after.Latest || after.Err() != nil {
		t.Errorf("after = %+v, want latest clean version", after)
	}

	tables := []string{
		"paths", "resources", "resource_history", "contents", "properties",
		"resource_properties", "associations", "logs", "schema_migrations",
	}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if _, _, err := Up(db); err != nil {
		t.Fatalf("first Up() failed: %v", err)
	}
	before, after, err := Up(db)
	if err != nil {
		t.Fatalf("second Up() failed: %v", err)
	}
	if before != after {
		t.Errorf("second Up() changed status from %+v to %+v", before, after)
	}
	if err := Check(db); err != nil {
		t.Errorf("Check() after double migration returned error: %v", err)
	}
}

func TestLatestVersion(t *testing.T) {
	v, err := LatestVersion()
	if err != nil {
		t.Fatalf("LatestVersion() error = %v", err)
	}
	if v < 1 {
		t.Errorf("LatestVersion() = %d, want at least 1", v)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		setup string // run after migrating; empty means leave the store as is
		fresh bool
		want  error
	}{
		{name: "fresh database", fresh: true, want: ErrNoSchema},
		{name: "latest"},
		{name: "dirty", setup: "UPDATE schema_migrations SET dirty = 1", want: ErrSchemaDirty},
		{name: "behind", setup: "UPDATE schema_migrations SET version = 0", want: ErrSchemaBehind},
		{name: "ahead", setup: "UPDATE schema_migrations SET version = 9999", want: ErrSchemaAhead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openTestDB(t)
			defer db.Close()

			if !tt.fresh {
				if _, _, err := Up(db); err != nil {
					t.Fatalf("Up() failed: %v", err)
				}
			}
			if tt.setup != "" {
				if _, err := db.Exec(tt.setup); err != nil {
					t.Fatalf("setup failed: %v", err)
				}
			}

			err := Check(db)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Check() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Check() = %v, want %v", err, tt.want)
			}
			var perr *registry.PersistenceError
			if !errors.As(err, &perr) || perr.Op != "check schema" {
				t.Errorf("Check() = %#v, want a check schema PersistenceError", err)
			}
		})
	}
}

func TestUp_RefusesDirtySchema(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if _, _, err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_migrations SET dirty = 1"); err != nil {
		t.Fatalf("marking dirty failed: %v", err)
	}
	if _, _, err := Up(db); !errors.Is(err, ErrSchemaDirty) {
		t.Errorf("Up() on dirty schema = %v, want ErrSchemaDirty", err)
	}
}

func TestForeignKeyConstraints(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if _, _, err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	// A property link must point at an existing property.
	_, err := db.Exec(`
		INSERT INTO resource_properties (property_id, tenant_id, version)
		VALUES (999, 0, 1)
	`)
	if err == nil {
		t.Error("Expected foreign key constraint violation, but insert succeeded")
	}
}

func TestSchema_PropertyLinksCascade(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if _, _, err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	res, err := db.Exec("INSERT INTO properties (tenant_id, name, value) VALUES (0, 'color', 'red')")
	if err != nil {
		t.Fatalf("Failed to insert property: %v", err)
	}
	id, _ := res.LastInsertId()
	if _, err := db.Exec("INSERT INTO resource_properties (property_id, tenant_id, version) VALUES (?, 0, 1)", id); err != nil {
		t.Fatalf("Failed to insert property link: %v", err)
	}
	if _, err := db.Exec("DELETE FROM properties WHERE id = ?", id); err != nil {
		t.Fatalf("Failed to delete property: %v", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM resource_properties").Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("resource_properties rows = %d, want 0 after cascade", n)
	}
}

func TestSchema_PathUniquePerTenant(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if _, _, err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	_, err := db.Exec("INSERT INTO paths (tenant_id, parent_id, path) VALUES (0, 0, '/test/path')")
	if err != nil {
		t.Fatalf("Failed to insert first path: %v", err)
	}

	_, err = db.Exec("INSERT INTO paths (tenant_id, parent_id, path) VALUES (0, 0, '/test/path')")
	if err == nil {
		t.Error("Expected unique constraint violation for duplicate path, but insert succeeded")
	}

	// Another tenant may intern the same path.
	_, err = db.Exec("INSERT INTO paths (tenant_id, parent_id, path) VALUES (1, 0, '/test/path')")
	if err != nil {
		t.Errorf("insert for second tenant failed: %v", err)
	}
}

func TestSchema_AssociationUnique(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if _, _, err := Up(db); err != nil {
		t.Fatalf("Up() failed: %v", err)
	}

	stmt := "INSERT INTO associations (tenant_id, source_path, target_path, association_type) VALUES (0, '/a', '/b', 'depends')"
	if _, err := db.Exec(stmt); err != nil {
		t.Fatalf("Failed to insert association: %v", err)
	}
	if _, err := db.Exec(stmt); err == nil {
		t.Error("Expected unique constraint violation for duplicate association, but insert succeeded")
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	return db
}
