package parser

import (
	"errors"
	"testing"

	"github.com/starford/modalk/internal/apperr"
	"github.com/starford/modalk/internal/models"
)

func TestParse_FrontmatterAndEntries(t *testing.T) {
	input := []byte("---\ntitle: Axiom K\nexpect: valid\n---\n[](p -> q) -> ([]p -> []q)\n\n# distribution\n<>(p V q) -> <>p V <>q\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Axiom K" {
		t.Errorf("title = %q, want %q", r.Title, "Axiom K")
	}
	if r.Expect != models.ExpectValid {
		t.Errorf("expect = %q, want valid", r.Expect)
	}
	if len(r.Entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(r.Entries))
	}
	if r.Entries[0].Line != 5 || r.Entries[0].Formula != "[](p -> q) -> ([]p -> []q)" {
		t.Errorf("entries[0] = %+v", r.Entries[0])
	}
	if r.Entries[1].Line != 8 {
		t.Errorf("entries[1].Line = %d, want 8", r.Entries[1].Line)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	r, err := Parse([]byte("# Seriality fails in K\n<>T\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Expect != models.ExpectNone {
		t.Errorf("expect = %q, want empty", r.Expect)
	}
	if r.Title != "Seriality fails in K" {
		t.Errorf("title = %q", r.Title)
	}
	if len(r.Entries) != 1 || r.Entries[0].Line != 2 || r.Entries[0].Formula != "<>T" {
		t.Errorf("entries = %+v", r.Entries)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	r, err := Parse([]byte("---\n: invalid: yaml: {{{\n---\np\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Malformed YAML leaves every line in the body.
	if r.Title != "" || r.Expect != models.ExpectNone {
		t.Errorf("expected empty frontmatter, got %+v", r)
	}
	if len(r.Entries) != 4 {
		t.Errorf("len(entries) = %d, want 4", len(r.Entries))
	}
}

func TestParse_BadExpectation(t *testing.T) {
	_, err := Parse([]byte("---\nexpect: maybe\n---\np\n"))
	if err == nil {
		t.Fatal("expected error for unknown expectation")
	}
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("error %v does not wrap ErrInvalidInput", err)
	}
}

func TestExpectation_Matches(t *testing.T) {
	if !models.ExpectNone.Matches(false) || !models.ExpectNone.Matches(true) {
		t.Error("empty expectation should accept any verdict")
	}
	if models.ExpectValid.Matches(false) {
		t.Error("valid expectation accepted an invalid verdict")
	}
	if !models.ExpectInvalid.Matches(false) {
		t.Error("invalid expectation rejected an invalid verdict")
	}
}
