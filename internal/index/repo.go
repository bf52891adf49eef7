package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/modalk/internal/apperr"
)

// ProofRow is a row of the proofs table. Model and Stats hold JSON; Model
// is empty for valid formulas.
type ProofRow struct {
	Checksum   string
	Formula    string
	Normalized string
	Successors string
	Valid      bool
	Trace      string
	Model      string
	Verified   bool
	Stats      string
	RunID      string
	UpdatedAt  time.Time
}

// FileRow is a row of the files table.
type FileRow struct {
	Path      string
	Title     string
	Expect    string
	Checksum  string
	UpdatedAt time.Time
}

// SourceRow links a workspace line to a proof. Valid and Expect are joined
// from the proofs and files tables.
type SourceRow struct {
	Path     string
	Line     int
	Checksum string
	Valid    bool
	Expect   string
}

// SearchResult is one search hit.
type SearchResult struct {
	Checksum string `json:"checksum"`
	Formula  string `json:"formula"`
	Valid    bool   `json:"valid"`
	Snippet  string `json:"snippet"`
}

const proofColumns = `checksum, formula, normalized, successors, valid, trace, model, verified, stats, run_id, updated_at`

// UpsertProof inserts or replaces a proof and its search entry in one
// transaction. Formulas sharing a normal form share a row; the row keeps
// the surface formula it was first recorded with.
func (db *DB) UpsertProof(p ProofRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	if p.Stats == "" {
		p.Stats = "{}"
	}
	_, err = tx.Exec(`
		INSERT INTO proofs (`+proofColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(checksum) DO UPDATE SET
			normalized = excluded.normalized,
			successors = excluded.successors,
			valid      = excluded.valid,
			trace      = excluded.trace,
			model      = excluded.model,
			verified   = excluded.verified,
			stats      = excluded.stats,
			run_id     = excluded.run_id,
			updated_at = excluded.updated_at
	`, p.Checksum, p.Formula, p.Normalized, p.Successors, p.Valid, p.Trace, p.Model, p.Verified, p.Stats, p.RunID, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert proof: %w", err)
	}

	stored := p.Formula
	if err := tx.QueryRow(`SELECT formula FROM proofs WHERE checksum = ?`, p.Checksum).Scan(&stored); err != nil {
		return fmt.Errorf("index: read back proof: %w", err)
	}

	// No-op when the FTS5 tag is absent.
	if err := ftsUpsert(tx, p.Checksum, stored, p.Normalized, p.Trace); err != nil {
		return err
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProof(s scanner) (*ProofRow, error) {
	var p ProofRow
	err := s.Scan(&p.Checksum, &p.Formula, &p.Normalized, &p.Successors, &p.Valid,
		&p.Trace, &p.Model, &p.Verified, &p.Stats, &p.RunID, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProof returns the proof stored under checksum.
func (db *DB) GetProof(checksum string) (*ProofRow, error) {
	row := db.conn.QueryRow(`SELECT `+proofColumns+` FROM proofs WHERE checksum = ?`, checksum)
	p, err := scanProof(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: proof %s: %w", checksum, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get proof: %w", err)
	}
	return p, nil
}

// ListProofs returns a page of proofs, newest first, and the total count.
// verdict filters by "valid" or "invalid"; empty means all.
func (db *DB) ListProofs(limit, offset int, verdict string) ([]ProofRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	where, args := "", []any{}
	switch verdict {
	case "valid":
		where, args = " WHERE valid = ?", append(args, true)
	case "invalid":
		where, args = " WHERE valid = ?", append(args, false)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM proofs`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count proofs: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+proofColumns+` FROM proofs`+where+
		` ORDER BY updated_at DESC, checksum LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list proofs: %w", err)
	}
	defer rows.Close()

	var out []ProofRow
	for rows.Next() {
		p, err := scanProof(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

// UpsertFile records a workspace file and replaces its source lines.
func (db *DB) UpsertFile(f FileRow, sources []SourceRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = time.Now()
	}
	_, err = tx.Exec(`
		INSERT INTO files (path, title, expect, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			expect     = excluded.expect,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, f.Path, f.Title, f.Expect, f.Checksum, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}

	_, _ = tx.Exec(`DELETE FROM sources WHERE path = ?`, f.Path)
	if len(sources) > 0 {
		stmt, err := tx.Prepare(`INSERT OR REPLACE INTO sources (path, line, checksum) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare source insert: %w", err)
		}
		defer stmt.Close()
		for _, s := range sources {
			if _, err := stmt.Exec(f.Path, s.Line, s.Checksum); err != nil {
				return fmt.Errorf("index: insert source: %w", err)
			}
		}
	}
	return tx.Commit()
}

// DeleteFile removes a workspace file and its source lines. Proofs stay in
// the history.
func (db *DB) DeleteFile(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM sources WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM files WHERE path = ?`, path)
	return tx.Commit()
}

// GetFile returns the recorded state of a workspace file.
func (db *DB) GetFile(path string) (*FileRow, error) {
	var f FileRow
	err := db.conn.QueryRow(`SELECT path, title, expect, checksum, updated_at FROM files WHERE path = ?`, path).
		Scan(&f.Path, &f.Title, &f.Expect, &f.Checksum, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: file %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get file: %w", err)
	}
	return &f, nil
}

// Sources lists the recorded lines of a workspace file in line order.
func (db *DB) Sources(path string) ([]SourceRow, error) {
	return db.querySources(`WHERE s.path = ? ORDER BY s.line`, path)
}

// SourcesOf lists the workspace lines that produced a proof.
func (db *DB) SourcesOf(checksum string) ([]SourceRow, error) {
	return db.querySources(`WHERE s.checksum = ? ORDER BY s.path, s.line`, checksum)
}

func (db *DB) querySources(clause string, arg string) ([]SourceRow, error) {
	rows, err := db.conn.Query(`
		SELECT s.path, s.line, s.checksum, COALESCE(p.valid, 0), COALESCE(f.expect, '')
		FROM sources s
		LEFT JOIN proofs p ON p.checksum = s.checksum
		LEFT JOIN files f ON f.path = s.path
		`+clause, arg)
	if err != nil {
		return nil, fmt.Errorf("index: sources: %w", err)
	}
	defer rows.Close()

	var out []SourceRow
	for rows.Next() {
		var s SourceRow
		if err := rows.Scan(&s.Path, &s.Line, &s.Checksum, &s.Valid, &s.Expect); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AllFileChecksums maps every recorded workspace path to its checksum.
func (db *DB) AllFileChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
