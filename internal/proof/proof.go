// Package proof drives the sequent engine to a verdict and keeps the
// resulting derivation as an immutable tree.
package proof

import (
	"github.com/starford/modalk/internal/formula"
	"github.com/starford/modalk/internal/sequent"
)

// Outcome tags how a proof node was closed.
type Outcome int

const (
	// OutcomeValid is an axiom leaf.
	OutcomeValid Outcome = iota
	// OutcomeInvalid is a leaf where no rule applies.
	OutcomeInvalid
	// OutcomeAnyValid holds one child per candidate successor world.
	OutcomeAnyValid
	// OutcomeBothValid holds the two halves of a case split.
	OutcomeBothValid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeAnyValid:
		return "any_valid"
	case OutcomeBothValid:
		return "both_valid"
	}
	return "unknown"
}

// StepKind distinguishes the lines of a node's log.
type StepKind int

const (
	// StepStart records the sequent the node set out to prove.
	StepStart StepKind = iota
	// StepRewrite records a non-branching rule and its successor.
	StepRewrite
	// StepClose records the verdict or branching rule that ended the node.
	StepClose
)

// Step is one entry of a node's log.
type Step struct {
	Kind    StepKind
	Rule    sequent.Rule // zero for StepStart and for leaf closes
	Sequent sequent.Sequent
}

// Proof is a node of the derivation tree. It is built once by Build and
// never modified afterwards.
type Proof struct {
	steps    []Step
	trueHere []formula.Atom
	valid    bool
	outcome  Outcome
	rule     sequent.Rule
	children []*Proof
}

// Build proves s, recursing into every branch the engine opens.
func Build(s sequent.Sequent) *Proof {
	steps := []Step{{Kind: StepStart, Sequent: s}}
	for {
		switch r := sequent.Step(s).(type) {
		case sequent.Indeterminate:
			steps = append(steps, Step{Kind: StepRewrite, Rule: r.Rule, Sequent: r.Next})
			s = r.Next

		case sequent.Valid:
			return leaf(steps, r.Atoms, true)

		case sequent.Invalid:
			return leaf(steps, r.Atoms, false)

		case sequent.ValidIfAny:
			children := make([]*Proof, 0, len(r.Branches))
			valid := false
			for _, b := range r.Branches {
				c := Build(b)
				valid = valid || c.valid
				children = append(children, c)
			}
			return &Proof{
				steps:    append(steps, Step{Kind: StepClose, Rule: r.Rule}),
				trueHere: r.Atoms,
				valid:    valid,
				outcome:  OutcomeAnyValid,
				rule:     r.Rule,
				children: children,
			}

		case sequent.ValidIfBoth:
			a, b := Build(r.Left), Build(r.Right)
			return &Proof{
				steps:    append(steps, Step{Kind: StepClose, Rule: r.Rule}),
				trueHere: r.Atoms,
				valid:    a.valid && b.valid,
				outcome:  OutcomeBothValid,
				rule:     r.Rule,
				children: []*Proof{a, b},
			}

		default:
			panic("proof: unexpected step result")
		}
	}
}

// Prove normalizes f and builds the proof of the root sequent ⇒ f.
func Prove(f formula.Formula) *Proof {
	return Build(sequent.Goal(formula.Normalize(f)))
}

func leaf(steps []Step, atoms []formula.Atom, valid bool) *Proof {
	outcome := OutcomeInvalid
	if valid {
		outcome = OutcomeValid
	}
	return &Proof{
		steps:    append(steps, Step{Kind: StepClose}),
		trueHere: atoms,
		valid:    valid,
		outcome:  outcome,
	}
}

// Valid reports whether the node's obligation holds.
func (p *Proof) Valid() bool { return p.valid }

// Outcome reports how the node was closed.
func (p *Proof) Outcome() Outcome { return p.outcome }

// Rule is the branching rule of an AnyValid or BothValid node.
func (p *Proof) Rule() sequent.Rule { return p.rule }

// TrueHere lists the letters on the left when the node closed. Callers
// must not modify the returned slice.
func (p *Proof) TrueHere() []formula.Atom { return p.trueHere }

// Steps is the node's own log, excluding children.
func (p *Proof) Steps() []Step { return p.steps }

// Children returns the branches of AnyValid (any number) and BothValid
// (exactly two) nodes; leaves have none.
func (p *Proof) Children() []*Proof { return p.children }

// Goal is the sequent this node set out to prove.
func (p *Proof) Goal() sequent.Sequent { return p.steps[0].Sequent }

// MinDepth is the length of the shortest path from p to a leaf.
func (p *Proof) MinDepth() int {
	switch p.outcome {
	case OutcomeValid, OutcomeInvalid:
		return 0
	}
	if len(p.children) == 0 {
		// An AnyValid node without branches has nothing below it.
		return 1
	}
	d := p.children[0].MinDepth()
	for _, c := range p.children[1:] {
		d = min(d, c.MinDepth())
	}
	return 1 + d
}
