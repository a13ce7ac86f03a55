// Package migrations holds the registry schema and applies it with
// golang-migrate. The schema_migrations table it maintains is the only
// record of which schema a store file carries.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"reg-go/internal/registry"
)

//go:embed files/*.sql
var migrationFiles embed.FS

var (
	ErrNoSchema     = errors.New("registry schema not initialized")
	ErrSchemaDirty  = errors.New("registry schema left dirty by a failed migration")
	ErrSchemaBehind = errors.New("registry schema is older than this binary")
	ErrSchemaAhead  = errors.New("registry schema is newer than this binary")
)

// Status is a store's schema version measured against the embedded migrations.
type Status struct {
	Initialized bool
	Version     uint
	Dirty       bool
	Latest      uint
}

// Err returns nil for a store at the latest clean version, otherwise one of
// the Err* sentinels with the versions involved.
func (s Status) Err() error {
	switch {
	case !s.Initialized:
		return ErrNoSchema
	case s.Dirty:
		return fmt.Errorf("%w (version %d)", ErrSchemaDirty, s.Version)
	case s.Version < s.Latest:
		return fmt.Errorf("%w (version %d, latest %d)", ErrSchemaBehind, s.Version, s.Latest)
	case s.Version > s.Latest:
		return fmt.Errorf("%w (version %d, latest %d)", ErrSchemaAhead, s.Version, s.Latest)
	}
	return nil
}

// LatestVersion returns the highest version among the embedded migrations.
func LatestVersion() (uint, error) {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return 0, fmt.Errorf("reading migration files: %w", err)
	}
	defer src.Close()
	return lastVersion(src)
}

func lastVersion(src source.Driver) (uint, error) {
	v, err := src.First()
	if err != nil {
		return 0, fmt.Errorf("no migrations: %w", err)
	}
	for {
		next, err := src.Next(v)
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		if err != nil {
			return 0, fmt.Errorf("reading migration after %d: %w", v, err)
		}
		v = next
	}
}

// ReadStatus reports db's schema version without migrating it.
func ReadStatus(db *sql.DB) (Status, error) {
	latest, err := LatestVersion()
	if err != nil {
		return Status{}, err
	}
	m, err := newMigrate(db)
	if err != nil {
		return Status{}, err
	}
	// Closing m would close db, which belongs to the caller.

	st := Status{Latest: latest}
	v, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return st, nil
	case err != nil:
		return Status{}, fmt.Errorf("reading schema version: %w", err)
	}
	st.Initialized, st.Version, st.Dirty = true, v, dirty
	return st, nil
}

// Check returns nil when db carries the latest schema. Otherwise the error is
// a *registry.PersistenceError wrapping one of the Err* sentinels.
func Check(db *sql.DB) error {
	st, err := ReadStatus(db)
	if err != nil {
		return registry.NewPersistenceError("check schema", "", err)
	}
	return registry.NewPersistenceError("check schema", "", st.Err())
}

// Up applies every pending migration. It returns the status before and after
// so callers can report what changed.
func Up(db *sql.DB) (before, after Status, err error) {
	before, err = ReadStatus(db)
	if err != nil {
		return before, before, registry.NewPersistenceError("migrate schema", "", err)
	}
	if before.Dirty {
		return before, before, registry.NewPersistenceError("migrate schema", "", before.Err())
	}

	m, err := newMigrate(db)
	if err != nil {
		return before, before, registry.NewPersistenceError("migrate schema", "", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return before, before, registry.NewPersistenceError("migrate schema", "",
			fmt.Errorf("from version %d: %w", before.Version, err))
	}

	after, err = ReadStatus(db)
	if err != nil {
		return before, after, registry.NewPersistenceError("migrate schema", "", err)
	}
	return before, after, nil
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("reading migration files: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("opening migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	return m, nil
}
