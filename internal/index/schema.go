// Package index keeps the proof history and the workspace source map in
// SQLite, with optional FTS5 search over formulas and traces.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS proofs (
	checksum   TEXT PRIMARY KEY,
	formula    TEXT NOT NULL,
	normalized TEXT NOT NULL,
	successors TEXT NOT NULL DEFAULT 'shallowest',
	valid      INTEGER NOT NULL,
	trace      TEXT NOT NULL DEFAULT '',
	model      TEXT NOT NULL DEFAULT '',
	verified   INTEGER NOT NULL DEFAULT 0,
	stats      TEXT NOT NULL DEFAULT '{}',
	run_id     TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS files (
	path       TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	expect     TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sources (
	path     TEXT NOT NULL REFERENCES files(path) ON DELETE CASCADE,
	line     INTEGER NOT NULL,
	checksum TEXT NOT NULL,
	UNIQUE(path, line)
);

CREATE INDEX IF NOT EXISTS idx_proofs_valid ON proofs(valid);
CREATE INDEX IF NOT EXISTS idx_sources_checksum ON sources(checksum);
`

// DB wraps a sql.DB with history operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Ping reports whether the database is reachable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
