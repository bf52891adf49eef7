//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS proofs_fts USING fts5(
			checksum UNINDEXED,
			formula,
			normalized,
			trace,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, checksum, formula, normalized, trace string) error {
	_, _ = tx.Exec(`DELETE FROM proofs_fts WHERE checksum = ?`, checksum)
	_, err := tx.Exec(`INSERT INTO proofs_fts (checksum, formula, normalized, trace) VALUES (?, ?, ?, ?)`,
		checksum, formula, normalized, trace)
	if err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

// textSearch runs query as an FTS5 match and returns a trace snippet
// for each hit.
func (db *DB) textSearch(query string, limit int) ([]SearchResult, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}
	rows, err := db.conn.Query(`
		SELECT proofs_fts.checksum,
		       proofs_fts.formula,
		       p.valid,
		       snippet(proofs_fts, 3, '<b>', '</b>', '...', 32)
		FROM proofs_fts JOIN proofs p ON p.checksum = proofs_fts.checksum
		WHERE proofs_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}

// ftsQuery quotes every whitespace-separated term so FTS keywords in the
// input are matched as text. Terms without a letter or digit produce no
// tokens and are dropped.
func ftsQuery(query string) string {
	var terms []string
	for _, t := range strings.Fields(query) {
		if strings.IndexFunc(t, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) < 0 {
			continue
		}
		terms = append(terms, `"`+strings.ReplaceAll(t, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " ")
}
