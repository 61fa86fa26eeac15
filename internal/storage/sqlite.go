// Package storage persists document and embedding metadata in a
// SQLite database alongside the vector index.
package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// schemaVersion is stored in _meta and checked on open.
const schemaVersion = "1"

// DB wraps the metadata database.
type DB struct {
	conn *sql.DB
}

// Open opens (creating if needed) the metadata database at path.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) init() error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS _meta (
  key TEXT PRIMARY KEY,
  value TEXT
)`,
		`CREATE TABLE IF NOT EXISTS documents (
  name TEXT PRIMARY KEY,
  fingerprint TEXT NOT NULL,
  pages INTEGER NOT NULL,
  ingested_at INTEGER NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS chunks (
  document TEXT NOT NULL,
  seq INTEGER NOT NULL,
  page INTEGER NOT NULL,
  start_pos INTEGER NOT NULL,
  end_pos INTEGER NOT NULL,
  text TEXT NOT NULL,
  PRIMARY KEY (document, seq)
)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document)`,
		`CREATE TABLE IF NOT EXISTS embedding_meta (
  document TEXT PRIMARY KEY,
  model TEXT NOT NULL,
  dimensions INTEGER NOT NULL,
  chunk_count INTEGER NOT NULL,
  indexed_at INTEGER NOT NULL
)`,
	}

	for _, stmt := range ddl {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("initializing schema: %w", err)
		}
	}

	if _, err := db.conn.Exec(
		`INSERT OR REPLACE INTO _meta (key, value) VALUES ('schema_version', ?)`,
		schemaVersion,
	); err != nil {
		return fmt.Errorf("writing schema version: %w", err)
	}
	return nil
}

// SchemaVersion returns the stored schema version.
func (db *DB) SchemaVersion() (string, error) {
	var v sql.NullString
	err := db.conn.QueryRow(`SELECT value FROM _meta WHERE key = 'schema_version'`).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v.String, nil
}
