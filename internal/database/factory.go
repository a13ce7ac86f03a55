package database

import (
	"fmt"
	"os"
	"path/filepath"

	"reg-go/internal/config"
)

// NewDatabaseFromConfig creates a registry backing store from the database config.
// name selects the database file, so every mount gets its own file under DataDir.
// In-memory databases are migrated immediately since nothing else could have done it.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, name string, opts Options) (*SQLiteDatabase, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data_dir: %w", err)
		}
		dbPath := filepath.Join(cfg.DataDir, name+".db")
		return NewSQLiteDatabase(dbPath, opts)
	case "memory":
		db, err := NewSQLiteDatabase(":memory:", opts)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating in-memory database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
