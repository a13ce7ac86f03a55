package database

import (
	"database/sql"
	"reflect"
	"testing"

	"reg-go/internal/database/migrations"
)

// ddl lists the registry tables and indexes of db by name.
func ddl(t *testing.T, db *sql.DB) map[string]string {
	t.Helper()
	rows, err := db.Query(`
		SELECT name, sql FROM sqlite_master
		WHERE type IN ('table', 'index')
		  AND sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		  AND tbl_name != 'schema_migrations'`)
	if err != nil {
		t.Fatalf("reading sqlite_master: %v", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var name, stmt string
		if err := rows.Scan(&name, &stmt); err != nil {
			t.Fatalf("scan: %v", err)
		}
		out[name] = stmt
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	return out
}

func TestSchema_MatchesMigrations(t *testing.T) {
	migrated, err := OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("OpenConnection() error = %v", err)
	}
	defer migrated.Close()
	if _, _, err := migrations.Up(migrated); err != nil {
		t.Fatalf("Up() error = %v", err)
	}

	embedded := newTestDB(t, Options{})

	want := ddl(t, migrated)
	got := ddl(t, embedded.db)
	if len(want) == 0 {
		t.Fatal("migrations created no tables")
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("embedded schema differs from migrations; run go generate ./internal/database\ngot  %v\nwant %v", got, want)
	}
}
