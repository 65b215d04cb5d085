// Package resultstore persists run results into a DuckDB database for
// querying across runs. Every record is keyed by a content fingerprint, so
// ingestion is idempotent.
package resultstore

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/duckdb/duckdb-go/v2"
)

// schemaDDL holds the DuckDB schema definition.
//
//go:embed schema.sql
var schemaDDL string

// SchemaDDL returns the schema DDL used for initializing result databases.
func SchemaDDL() string {
	return schemaDDL
}

// EnsureSchema applies the schema DDL to the provided database connection.
func EnsureSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("resultstore: db is nil")
	}
	_, err := db.Exec(schemaDDL)
	return err
}

// Open opens (or creates) a DuckDB database at path and applies the schema.
// An empty path opens an in-memory database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
