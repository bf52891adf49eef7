// Package prover runs the decision procedure for API, MCP, CLI and
// workspace callers and records the results in the proof history.
package prover

import (
	"github.com/starford/modalk/internal/checksum"
	"github.com/starford/modalk/internal/formula"
	"github.com/starford/modalk/internal/kripke"
	"github.com/starford/modalk/internal/proof"
)

// Decision is the outcome of deciding one formula.
type Decision struct {
	Given      formula.Formula
	Normalized formula.Formula
	Proof      *proof.Proof
	// Model is nil when the formula is valid.
	Model      *kripke.Model
	Verified   bool
	Successors kripke.Successors
}

// Valid reports the verdict.
func (d *Decision) Valid() bool { return d.Proof.Valid() }

// Decide normalizes f, proves it and, when it is invalid, synthesizes a
// counter-model and checks that the model falsifies the normalized formula.
func Decide(f formula.Formula, succ kripke.Successors) *Decision {
	n := formula.Normalize(f)
	d := &Decision{
		Given:      f,
		Normalized: n,
		Proof:      proof.Prove(n),
		Successors: succ,
	}
	if d.Proof.Valid() {
		return d
	}
	m, err := kripke.Synthesize(d.Proof, kripke.WithSuccessors(succ))
	if err != nil {
		// Unreachable: the proof was checked above.
		panic(err)
	}
	d.Model = m
	d.Verified = m.Falsifies(n)
	return d
}

// Key identifies a decision in the history. Formulas with the same normal
// form share a key under the same successor policy.
func Key(normalized formula.Formula, succ kripke.Successors) string {
	return checksum.Lines(formula.String(normalized), succ.String())
}
