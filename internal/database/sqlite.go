package database

import (
	"context"
	"database/sql"
	"fmt"

	"reg-go/internal/database/migrations"
	"reg-go/internal/database/sqlc"
	"reg-go/internal/registry"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Options configures the collaborators a SQLiteDatabase consults on every call.
// Nil fields fall back to defaults: no logging, unversioned properties with
// pagination on, the real clock, random UUIDs and an allow-all authorizer.
type Options struct {
	Logger      registry.Logger
	Flags       registry.Flags
	Clock       registry.Clock
	IDGenerator registry.IDGenerator
	Authorizer  registry.Authorizer
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = registry.NewNopLogger()
	}
	if o.Flags == nil {
		o.Flags = registry.NewMutableFlags(false, true, false)
	}
	if o.Clock == nil {
		o.Clock = registry.RealClock{}
	}
	if o.IDGenerator == nil {
		o.IDGenerator = registry.UUIDGenerator{}
	}
	if o.Authorizer == nil {
		o.Authorizer = registry.AllowAll{}
	}
	return o
}

// SQLiteDatabase implements registry.Database using SQLite.
type SQLiteDatabase struct {
	db      *sql.DB
	queries *sqlc.Queries
	path    string
	opts    Options
	paths   *sharedPathCache
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func NewSQLiteDatabase(path string, opts Options) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	s := NewSQLiteDatabaseFromDB(db, opts)
	s.path = path
	return s, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB, opts Options) *SQLiteDatabase {
	return &SQLiteDatabase{
		db:      db,
		queries: sqlc.New(db),
		opts:    opts.withDefaults(),
		paths:   newSharedPathCache(),
	}
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// This is exported for use in tools and tests that need a properly configured SQLite connection.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// PRAGMAs are per connection and ":memory:" databases die with theirs.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	return db, nil
}

// Begin opens a transaction bound to sess.
func (s *SQLiteDatabase) Begin(ctx context.Context, sess registry.Session) (registry.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, registry.NewPersistenceError("begin transaction", "", err)
	}
	return newSQLiteTx(s, tx, sess), nil
}

// MaxVersion returns the highest resource version in the store, across tenants.
func (s *SQLiteDatabase) MaxVersion(ctx context.Context) (int64, error) {
	v, err := s.queries.GetMaxResourceVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("reading max version: %w", err)
	}
	return v, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.Check(s.db)
}

// Migrate brings the schema up to the latest version.
func (s *SQLiteDatabase) Migrate() error {
	before, after, err := migrations.Up(s.db)
	if err != nil {
		return err
	}
	if !before.Initialized || before.Version != after.Version {
		s.opts.Logger.Info("schema migrated", "path", s.path, "from", before.Version, "to", after.Version)
	}
	return nil
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ registry.Database = (*SQLiteDatabase)(nil)
