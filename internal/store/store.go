package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the user_version stamped on databases this build creates.
// schema.sql is the complete version 1 layout.
const schemaVersion = 1

// ErrSchemaTooNew is returned when a database was written by a newer idlsdk.
var ErrSchemaTooNew = errors.New("database schema is newer than this idlsdk supports")

// Store provides durable storage for transform run history.
type Store struct {
	db *sql.DB
}

// Open creates or opens the run history database at path.
// Opening an existing database leaves its runs untouched.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open run history: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to run history: %w", err)
	}

	// One connection serializes RecordRun's seq allocation.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	steps := []struct {
		name string
		fn   func(*sql.DB) error
	}{
		{"apply pragmas", applyPragmas},
		{"check schema version", checkSchemaVersion},
		{"apply schema", applySchema},
	}
	for _, step := range steps {
		if err := step.fn(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", step.name, err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%q: %w", pragma, err)
		}
	}
	return nil
}

// checkSchemaVersion rejects databases stamped by a newer build before any
// DDL touches them.
func checkSchemaVersion(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("%w: version %d, supported %d", ErrSchemaTooNew, version, schemaVersion)
	}
	return nil
}

// applySchema creates the runs table and its index, then stamps the version.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
