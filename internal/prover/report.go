package prover

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/starford/modalk/internal/formula"
	"github.com/starford/modalk/internal/index"
	"github.com/starford/modalk/internal/kripke"
	"github.com/starford/modalk/internal/models"
	"github.com/starford/modalk/internal/proof"
	"github.com/starford/modalk/internal/sequent"
)

// Report is the rendered result of a decision.
//
// Formulas with the same normal form share a checksum. A report returned by
// Prove carries the formula as given; one read back from the history
// carries the formula the checksum was first recorded with.
type Report struct {
	ID         string             `json:"id"`
	Checksum   string             `json:"checksum"`
	Given      string             `json:"given"`
	Normalized string             `json:"normalized"`
	Goal       string             `json:"goal"`
	Valid      bool               `json:"valid"`
	Verdict    string             `json:"verdict"`
	Notation   string             `json:"notation"`
	Successors string             `json:"successors"`
	Trace      []string           `json:"trace"`
	Model      *kripke.Model      `json:"model,omitempty"`
	ModelText  string             `json:"model_text,omitempty"`
	DOT        string             `json:"dot,omitempty"`
	Verified   bool               `json:"verified"`
	Stats      proof.Stats        `json:"stats"`
	Sources    []models.SourceRef `json:"sources,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// NewReport renders d in notation n.
func NewReport(d *Decision, n formula.Notation) *Report {
	r := &Report{
		Checksum:   Key(d.Normalized, d.Successors),
		Given:      formula.Render(d.Given, n),
		Normalized: formula.Render(d.Normalized, n),
		Goal:       sequent.Goal(d.Normalized).Render(n),
		Valid:      d.Valid(),
		Verdict:    d.Proof.Verdict(),
		Notation:   n.String(),
		Successors: d.Successors.String(),
		Trace:      d.Proof.Lines(n),
		Verified:   d.Verified,
		Stats:      d.Proof.Stats(),
	}
	if d.Model != nil {
		r.Model = d.Model
		r.ModelText = d.Model.String()
		r.DOT = d.Model.DOT()
	}
	return r
}

// TextOptions controls WriteText.
type TextOptions struct {
	// DOT prints the counter-model as Graphviz instead of the text listing.
	DOT bool
	// Verdict styles the verdict line; nil prints it plain.
	Verdict func(string) string
}

// WriteText prints the report the way the prove command shows it.
func (r *Report) WriteText(w io.Writer, opts TextOptions) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Given: %s\n", r.Given)
	if r.Normalized != r.Given {
		fmt.Fprintf(bw, "...normalized to: %s\n", r.Normalized)
	}
	fmt.Fprintf(bw, "starting with: %s\n", r.Goal)
	for _, line := range r.Trace {
		bw.WriteString(line)
		bw.WriteByte('\n')
	}
	verdict := r.Verdict
	if opts.Verdict != nil {
		verdict = opts.Verdict(verdict)
	}
	bw.WriteString(verdict)
	bw.WriteByte('\n')
	if r.Model != nil {
		if opts.DOT {
			bw.WriteString(r.DOT)
		} else {
			bw.WriteString(r.ModelText)
		}
	}
	return bw.Flush()
}

// proofRow converts a report into its history row. The history always
// stores symbolic notation.
func proofRow(d *Decision, r *Report) (index.ProofRow, error) {
	row := index.ProofRow{
		Checksum:   r.Checksum,
		Formula:    formula.String(d.Given),
		Normalized: formula.String(d.Normalized),
		Successors: r.Successors,
		Valid:      r.Valid,
		Trace:      strings.Join(d.Proof.Lines(formula.Symbolic), "\n"),
		Verified:   r.Verified,
		RunID:      r.ID,
		UpdatedAt:  r.CreatedAt,
	}
	if d.Model != nil {
		b, err := json.Marshal(d.Model)
		if err != nil {
			return row, fmt.Errorf("prover: encode model: %w", err)
		}
		row.Model = string(b)
	}
	b, err := json.Marshal(r.Stats)
	if err != nil {
		return row, fmt.Errorf("prover: encode stats: %w", err)
	}
	row.Stats = string(b)
	return row, nil
}

// reportFromRow rebuilds a symbolic report from the history.
func reportFromRow(row *index.ProofRow) (*Report, error) {
	r := &Report{
		ID:         row.RunID,
		Checksum:   row.Checksum,
		Given:      row.Formula,
		Normalized: row.Normalized,
		Valid:      row.Valid,
		Verdict:    "INVALID",
		Notation:   formula.Symbolic.String(),
		Successors: row.Successors,
		Verified:   row.Verified,
		CreatedAt:  row.UpdatedAt,
	}
	if row.Valid {
		r.Verdict = "VALID"
	}
	if row.Trace != "" {
		r.Trace = strings.Split(row.Trace, "\n")
	}
	if n, err := formula.Parse(row.Normalized); err == nil {
		r.Goal = sequent.Goal(n).Render(formula.Symbolic)
	}
	if row.Stats != "" {
		if err := json.Unmarshal([]byte(row.Stats), &r.Stats); err != nil {
			return nil, fmt.Errorf("prover: decode stats: %w", err)
		}
	}
	if row.Model != "" {
		var m kripke.Model
		if err := json.Unmarshal([]byte(row.Model), &m); err != nil {
			return nil, fmt.Errorf("prover: decode model: %w", err)
		}
		r.Model = &m
		r.ModelText = m.String()
		r.DOT = m.DOT()
	}
	return r, nil
}

func sourceRefs(rows []index.SourceRow) []models.SourceRef {
	refs := make([]models.SourceRef, len(rows))
	for i, s := range rows {
		refs[i] = models.SourceRef{
			Path:     s.Path,
			Line:     s.Line,
			Checksum: s.Checksum,
			Expect:   models.Expectation(s.Expect),
			Valid:    s.Valid,
		}
	}
	return refs
}
