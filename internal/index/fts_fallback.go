//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

// Without FTS5 the proofs table is searched with LIKE.
func initFTS(_ *sql.DB) error { return nil }

func ftsUpsert(_ *sql.Tx, _, _, _, _ string) error { return nil }


// textSearch matches the raw query against formulas and traces.
func (db *DB) textSearch(query string, limit int) ([]SearchResult, error) {
	like := likePattern(query)
	rows, err := db.conn.Query(`
		SELECT checksum, formula, valid, substr(normalized, 1, 200)
		FROM proofs
		WHERE formula LIKE ?1 ESCAPE '\' OR normalized LIKE ?1 ESCAPE '\' OR trace LIKE ?1 ESCAPE '\'
		ORDER BY updated_at DESC
		LIMIT ?2
	`, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}
