// Package duckdb persists per-sample conversion reports in DuckDB so batch
// runs can be inspected and queried after the fact.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for run reports.
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
			return nil, fmt.Errorf("create report directory: %w", err)
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

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist. report_staging has the
// columns of sample_reports without the key; WriteReports appends to it
// before replacing rows in sample_reports.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS sample_reports (
		sample VARCHAR PRIMARY KEY,
		output VARCHAR,
		vcf_path VARCHAR,
		vcf_size BIGINT,
		vcf_modtime VARCHAR,
		coverage_path VARCHAR,
		variants BIGINT,
		records BIGINT,
		masked_positions BIGINT,
		low_depth_fraction DOUBLE,
		reference_length BIGINT,
		min_depth BIGINT,
		duration_ms BIGINT,
		created_at TIMESTAMP
	)`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS report_staging AS
		SELECT * FROM sample_reports LIMIT 0`)
	return err
}
