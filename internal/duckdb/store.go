// Package duckdb stores imported knowledge-base tables in DuckDB so a
// normalized table can be reused across runs without re-parsing the export.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding imported tables.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// IsStorePath reports whether path names a DuckDB table store rather than
// a delimited table file.
func IsStorePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".duckdb", ".db":
		return true
	}
	return false
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path ("" for in-memory).
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates the catalog table if it doesn't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS kb_tables (
		name VARCHAR PRIMARY KEY,
		columns VARCHAR,
		row_count BIGINT,
		source_path VARCHAR,
		source_size BIGINT,
		source_modtime VARCHAR,
		imported_at TIMESTAMP
	)`)
	return err
}

var validName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func dataTable(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("invalid table name %q", name)
	}
	return "kb_" + name, nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
