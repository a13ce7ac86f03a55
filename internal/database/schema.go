package database

import _ "embed"

// sqlc/schema.sql is produced by tools/generate_schema.go from the migrations;
// the sqlc query code is generated from it in turn.
//go:generate sh -c "cd ../.. && go run internal/database/tools/generate_schema.go"
//go:generate sh -c "cd ../.. && sqlc generate -f internal/database/sqlc/sqlc.yaml"

// Schema is the full DDL produced from the migrations. Tests apply it to fresh
// in-memory databases instead of running migrate.
//
//go:embed sqlc/schema.sql
var Schema string
