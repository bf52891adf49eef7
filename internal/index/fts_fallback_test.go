//go:build !sqlite_fts5

package index

import (
	"testing"
	"time"
)

func TestTextSearch_WildcardsAreLiteral(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertProof(proofRow("u", "a_b", false, time.Now()))
	_ = db.UpsertProof(proofRow("x", "axb", false, time.Now()))

	results, err := db.Search("a_b", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Checksum != "u" {
		t.Errorf("results = %+v, want only the literal match", results)
	}
}

func TestLikePattern(t *testing.T) {
	if got := likePattern(`50%_\`); got != `%50\%\_\\%` {
		t.Errorf("likePattern = %q", got)
	}
}
