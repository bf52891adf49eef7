// Package models defines the workspace and history types shared by the
// storage, index and service layers.
package models

import "time"

// Expectation is the verdict a workspace file declares for its formulas.
type Expectation string

const (
	ExpectNone    Expectation = ""
	ExpectValid   Expectation = "valid"
	ExpectInvalid Expectation = "invalid"
)

// Matches reports whether a verdict satisfies the expectation. A file
// without an expectation accepts any verdict.
func (e Expectation) Matches(valid bool) bool {
	switch e {
	case ExpectValid:
		return valid
	case ExpectInvalid:
		return !valid
	}
	return true
}

// Entry is one formula line of a workspace file.
type Entry struct {
	Line    int    `json:"line"`
	Formula string `json:"formula"`
}

// FormulaFile is a parsed *.modal file.
type FormulaFile struct {
	Path      string      `json:"path"`
	Title     string      `json:"title,omitempty"`
	Expect    Expectation `json:"expect,omitempty"`
	Entries   []Entry     `json:"entries"`
	Checksum  string      `json:"checksum"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// FileMetadata is the lightweight listing returned by storage.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SourceRef links a workspace line to the proof recorded for it.
type SourceRef struct {
	Path     string      `json:"path"`
	Line     int         `json:"line"`
	Checksum string      `json:"checksum"`
	Expect   Expectation `json:"expect,omitempty"`
	Valid    bool        `json:"valid"`
}

// Mismatch reports whether the recorded verdict contradicts the file.
func (s SourceRef) Mismatch() bool { return !s.Expect.Matches(s.Valid) }
