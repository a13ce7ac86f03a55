// generate_schema migrates an in-memory registry store and writes its DDL to
// internal/database/sqlc/schema.sql, which sqlc and the store tests read.
// Run from the module root (go generate ./internal/database does that).
package main

import (
	"bytes"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reg-go/internal/database"
	"reg-go/internal/database/migrations"
)

var schemaPath = filepath.Join("internal", "database", "sqlc", "schema.sql")

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "generate_schema: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	db, err := database.OpenConnection(":memory:")
	if err != nil {
		return err
	}
	defer db.Close()

	_, status, err := migrations.Up(db)
	if err != nil {
		return err
	}

	ddl, err := registryDDL(db)
	if err != nil {
		return err
	}
	schema := []byte(header(status.Version) + ddl)

	current, err := os.ReadFile(schemaPath)
	if err == nil && bytes.Equal(current, schema) {
		fmt.Printf("%s is up to date (schema version %d)\n", schemaPath, status.Version)
		return nil
	}
	if err := os.WriteFile(schemaPath, schema, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", schemaPath, err)
	}
	fmt.Printf("wrote %s (schema version %d)\n", schemaPath, status.Version)
	return nil
}

func header(version uint) string {
	return fmt.Sprintf(`-- Registry schema version %d, generated from internal/database/migrations/files.
-- Do not edit. Run 'go generate ./internal/database' to regenerate.

`, version)
}

// registryDDL returns the CREATE statements of the registry tables, then
// their indexes, each group sorted by name. SQLite internals and the
// migration bookkeeping table are left out.
func registryDDL(db *sql.DB) (string, error) {
	rows, err := db.Query(`
		SELECT sql || ';'
		FROM sqlite_master
		WHERE type IN ('table', 'index')
		  AND sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		  AND tbl_name != 'schema_migrations'
		ORDER BY CASE type WHEN 'table' THEN 1 ELSE 2 END, name`)
	if err != nil {
		return "", fmt.Errorf("reading sqlite_master: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", fmt.Errorf("reading statement: %w", err)
		}
		b.WriteString(stmt)
		b.WriteString("\n\n")
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("reading sqlite_master: %w", err)
	}
	return b.String(), nil
}
