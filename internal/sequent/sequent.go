// Package sequent implements the rewrite engine of the K sequent calculus.
//
// A Sequent left ⇒ right is the obligation that the conjunction of left
// entails the disjunction of right. Step applies exactly one rule, chosen
// by a fixed priority, and reports either a successor obligation or a
// verdict. Step never modifies the slices of its argument.
package sequent

import (
	"strings"

	"github.com/starford/modalk/internal/formula"
)

// Sequent is a proof obligation. Formula order only decides which
// occurrence a rule picks first.
type Sequent struct {
	Left  []formula.Formula
	Right []formula.Formula
}

// New builds a sequent from the given sides.
func New(left, right []formula.Formula) Sequent {
	return Sequent{Left: left, Right: right}
}

// Goal is the root obligation for proving f: nothing on the left, f on the right.
func Goal(f formula.Formula) Sequent {
	return Sequent{Right: []formula.Formula{f}}
}

// Render prints the sequent as "l1,l2  ⇒  r1,r2".
func (s Sequent) Render(n formula.Notation) string {
	return join(s.Left, n) + "  " + n.Entails() + "  " + join(s.Right, n)
}

func (s Sequent) String() string { return s.Render(formula.Symbolic) }

// Size is the total node count of both sides.
func (s Sequent) Size() int {
	n := 0
	for _, f := range s.Left {
		n += formula.Size(f)
	}
	for _, f := range s.Right {
		n += formula.Size(f)
	}
	return n
}

// ModalDepth is the greatest modal depth on either side.
func (s Sequent) ModalDepth() int {
	d := 0
	for _, f := range s.Left {
		d = max(d, formula.ModalDepth(f))
	}
	for _, f := range s.Right {
		d = max(d, formula.ModalDepth(f))
	}
	return d
}

func join(fs []formula.Formula, n formula.Notation) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = formula.Render(f, n)
	}
	return strings.Join(parts, ",")
}
