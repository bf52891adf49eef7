package index

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/modalk/internal/formula"
)

const defaultSearchLimit = 20

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns proofs matching query. A query that parses as a formula
// first matches proofs with the same normal form, in either notation; the
// text search results follow, without duplicates.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	var out []SearchResult
	seen := make(map[string]struct{})
	add := func(rs []SearchResult) {
		for _, r := range rs {
			if _, dup := seen[r.Checksum]; dup || len(out) >= limit {
				continue
			}
			seen[r.Checksum] = struct{}{}
			out = append(out, r)
		}
	}

	if f, err := formula.Parse(query); err == nil {
		rs, err := db.normalFormSearch(formula.String(formula.Normalize(f)), limit)
		if err != nil {
			return nil, err
		}
		add(rs)
	}
	if len(out) < limit {
		rs, err := db.textSearch(query, limit)
		if err != nil {
			return nil, err
		}
		add(rs)
	}
	return out, nil
}

func (db *DB) normalFormSearch(normalized string, limit int) ([]SearchResult, error) {
	rows, err := db.conn.Query(`
		SELECT checksum, formula, valid, normalized
		FROM proofs
		WHERE normalized = ?
		ORDER BY updated_at DESC
		LIMIT ?
	`, normalized, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search normal form: %w", err)
	}
	return scanResults(rows)
}

// likePattern matches s anywhere, with LIKE wildcards in s taken literally.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Checksum, &r.Formula, &r.Valid, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
