package kripke

import (
	"errors"
	"fmt"
	"strings"

	"github.com/starford/modalk/internal/proof"
)

// ErrProofValid is returned when a counter-model is requested for a valid proof.
var ErrProofValid = errors.New("kripke: proof is valid, no counter-model exists")

// Successors selects how many successor worlds an AnyValid node gets.
type Successors int

const (
	// SuccessorsShallowest follows one witness branch per AnyValid node,
	// the one with the smallest MinDepth.
	SuccessorsShallowest Successors = iota
	// SuccessorsAll creates one successor for every failed branch, which
	// is what it takes to falsify several ◇ hypotheses at once.
	SuccessorsAll
)

func (s Successors) String() string {
	if s == SuccessorsAll {
		return "all"
	}
	return "shallowest"
}

// ParseSuccessors maps a configuration value to a policy. The empty string
// selects SuccessorsShallowest.
func ParseSuccessors(s string) (Successors, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "shallowest":
		return SuccessorsShallowest, nil
	case "all":
		return SuccessorsAll, nil
	}
	return SuccessorsShallowest, fmt.Errorf("kripke: unknown successor policy %q", s)
}

// Option configures Synthesize.
type Option func(*synthesizer)

// WithSuccessors sets the successor policy.
func WithSuccessors(s Successors) Option {
	return func(sy *synthesizer) { sy.successors = s }
}

type synthesizer struct {
	b          *Builder
	next       World
	successors Successors
}

// Synthesize walks an invalid proof and returns a model whose root world
// is the falsifying world. Case splits stay in the current world; every
// followed modal branch gets a fresh world reached by one edge.
func Synthesize(p *proof.Proof, opts ...Option) (*Model, error) {
	if p.Valid() {
		return nil, ErrProofValid
	}
	sy := &synthesizer{b: NewBuilder(), next: Root + 1}
	for _, opt := range opts {
		opt(sy)
	}
	sy.visit(Root, p)
	return sy.b.Model(), nil
}

func (sy *synthesizer) visit(w World, p *proof.Proof) {
	for _, a := range p.TrueHere() {
		sy.b.SetTrue(w, a)
	}

	children := p.Children()
	switch p.Outcome() {
	case proof.OutcomeValid, proof.OutcomeInvalid:
		return

	case proof.OutcomeAnyValid:
		if len(children) == 0 {
			return
		}
		if sy.successors == SuccessorsAll && !p.Valid() {
			for _, c := range children {
				if !c.Valid() {
					sy.descend(w, c)
				}
			}
			return
		}
		sy.descend(w, witness(children))

	case proof.OutcomeBothValid:
		a, b := children[0], children[1]
		switch {
		case p.Valid():
			sy.visit(w, a)
			sy.visit(w, b)
		case !a.Valid() && b.Valid():
			sy.visit(w, a)
		case a.Valid() && !b.Valid():
			sy.visit(w, b)
		case b.MinDepth() < a.MinDepth():
			sy.visit(w, b)
		default:
			sy.visit(w, a)
		}
	}
}

func (sy *synthesizer) descend(from World, p *proof.Proof) {
	to := sy.next
	sy.next++
	sy.b.AddAccess(from, to)
	sy.visit(to, p)
}

// witness picks the branch to follow: invalid branches are preferred, and
// among the candidates the shallowest wins, ties going to the earliest.
func witness(children []*proof.Proof) *proof.Proof {
	candidates := make([]*proof.Proof, 0, len(children))
	for _, c := range children {
		if !c.Valid() {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		candidates = children
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.MinDepth() < best.MinDepth() {
			best = c
		}
	}
	return best
}
