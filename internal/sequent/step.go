package sequent

import "github.com/starford/modalk/internal/formula"

// Rule names a rewrite rule. Rules are tried in declaration order.
type Rule int

const (
	RuleLTop Rule = iota + 1
	RuleRBot
	RuleLNeg
	RuleRNeg
	RuleLAnd
	RuleROr
	RuleLOr
	RuleRAnd
	RuleDiamond
)

var ruleNames = map[Rule]string{
	RuleLTop:    "ltop",
	RuleRBot:    "rbot",
	RuleLNeg:    "lneg",
	RuleRNeg:    "rneg",
	RuleLAnd:    "land",
	RuleROr:     "r_or",
	RuleLOr:     "l_or",
	RuleRAnd:    "rand",
	RuleDiamond: "diam",
}

func (r Rule) String() string {
	if name, ok := ruleNames[r]; ok {
		return name
	}
	return "unknown"
}

// StepResult is the outcome of one Step. The variants are Indeterminate,
// ValidIfBoth, ValidIfAny, Valid and Invalid.
type StepResult interface {
	stepResult()
}

// Indeterminate carries the single successor of a non-branching rule.
type Indeterminate struct {
	Rule Rule
	Next Sequent
}

// ValidIfBoth splits the obligation into two that must both hold.
type ValidIfBoth struct {
	Rule        Rule
	Left, Right Sequent
	Atoms       []formula.Atom
}

// ValidIfAny lists candidate successor worlds; one valid branch suffices.
type ValidIfAny struct {
	Rule     Rule
	Branches []Sequent
	Atoms    []formula.Atom
}

// Valid means the sequent is an axiom.
type Valid struct {
	Atoms []formula.Atom
}

// Invalid means no rule applies and the sequent is not an axiom.
type Invalid struct {
	Atoms []formula.Atom
}

func (Indeterminate) stepResult() {}
func (ValidIfBoth) stepResult() {}
func (ValidIfAny) stepResult() {}
func (Valid) stepResult() {}
func (Invalid) stepResult() {}

// Step applies the first applicable rule to s. Atoms in the result are the
// letters of s.Left at the time of the step.
func Step(s Sequent) StepResult {
	if isAxiom(s) {
		return Valid{Atoms: formula.LetterAtoms(s.Left)}
	}

	if i, _ := first[formula.Top](s.Left); i >= 0 {
		return Indeterminate{Rule: RuleLTop, Next: Sequent{
			Left:  splice(s.Left, i),
			Right: clone(s.Right),
		}}
	}
	if i, _ := first[formula.Bottom](s.Right); i >= 0 {
		return Indeterminate{Rule: RuleRBot, Next: Sequent{
			Left:  clone(s.Left),
			Right: splice(s.Right, i),
		}}
	}
	if i, n := first[formula.Negation](s.Left); i >= 0 {
		return Indeterminate{Rule: RuleLNeg, Next: Sequent{
			Left:  splice(s.Left, i),
			Right: push(s.Right, n.X),
		}}
	}
	if i, n := first[formula.Negation](s.Right); i >= 0 {
		return Indeterminate{Rule: RuleRNeg, Next: Sequent{
			Left:  push(s.Left, n.X),
			Right: splice(s.Right, i),
		}}
	}
	if i, c := first[formula.Conjunction](s.Left); i >= 0 {
		return Indeterminate{Rule: RuleLAnd, Next: Sequent{
			Left:  splice(s.Left, i, c.L, c.R),
			Right: clone(s.Right),
		}}
	}
	if i, d := first[formula.Disjunction](s.Right); i >= 0 {
		return Indeterminate{Rule: RuleROr, Next: Sequent{
			Left:  clone(s.Left),
			Right: splice(s.Right, i, d.L, d.R),
		}}
	}

	atoms := formula.LetterAtoms(s.Left)

	if i, d := first[formula.Disjunction](s.Left); i >= 0 {
		return ValidIfBoth{
			Rule:  RuleLOr,
			Left:  Sequent{Left: splice(s.Left, i, d.L), Right: clone(s.Right)},
			Right: Sequent{Left: splice(s.Left, i, d.R), Right: clone(s.Right)},
			Atoms: atoms,
		}
	}
	if i, c := first[formula.Conjunction](s.Right); i >= 0 {
		return ValidIfBoth{
			Rule:  RuleRAnd,
			Left:  Sequent{Left: clone(s.Left), Right: splice(s.Right, i, c.L)},
			Right: Sequent{Left: clone(s.Left), Right: splice(s.Right, i, c.R)},
			Atoms: atoms,
		}
	}

	if branches, ok := diamond(s); ok {
		return ValidIfAny{Rule: RuleDiamond, Branches: branches, Atoms: atoms}
	}
	return Invalid{Atoms: atoms}
}

// isAxiom reports ⊤ on the right, ⊥ on the left, or a letter on both sides.
func isAxiom(s Sequent) bool {
	if i, _ := first[formula.Top](s.Right); i >= 0 {
		return true
	}
	if i, _ := first[formula.Bottom](s.Left); i >= 0 {
		return true
	}
	lefts := make(map[formula.Atom]struct{})
	for _, f := range s.Left {
		if l, ok := f.(formula.Letter); ok {
			lefts[l.Atom] = struct{}{}
		}
	}
	for _, f := range s.Right {
		if l, ok := f.(formula.Letter); ok {
			if _, shared := lefts[l.Atom]; shared {
				return true
			}
		}
	}
	return false
}

// diamond is the modal rule: every ◇A on the left yields the obligation
// A ⇒ B1..Bn where ◇B1..◇Bn are the right-hand possibilities. It applies
// whenever the left has a possibility, even if the right has none.
func diamond(s Sequent) ([]Sequent, bool) {
	var goals []formula.Formula
	for _, f := range s.Right {
		if p, ok := f.(formula.Possibility); ok {
			goals = append(goals, p.X)
		}
	}
	var branches []Sequent
	for _, f := range s.Left {
		if p, ok := f.(formula.Possibility); ok {
			branches = append(branches, Sequent{
				Left:  []formula.Formula{p.X},
				Right: clone(goals),
			})
		}
	}
	return branches, len(branches) > 0
}

// first finds the first element of fs whose dynamic type is T. Matching and
// extraction happen in the same assertion, so a match always yields a value.
func first[T formula.Formula](fs []formula.Formula) (int, T) {
	for i, f := range fs {
		if x, ok := f.(T); ok {
			return i, x
		}
	}
	var zero T
	return -1, zero
}

// splice returns a new slice equal to fs with fs[i] replaced by repl.
func splice(fs []formula.Formula, i int, repl ...formula.Formula) []formula.Formula {
	out := make([]formula.Formula, 0, len(fs)-1+len(repl))
	out = append(out, fs[:i]...)
	out = append(out, repl...)
	return append(out, fs[i+1:]...)
}

// push returns a new slice equal to fs with f appended.
func push(fs []formula.Formula, f formula.Formula) []formula.Formula {
	out := make([]formula.Formula, 0, len(fs)+1)
	out = append(out, fs...)
	return append(out, f)
}

func clone(fs []formula.Formula) []formula.Formula {
	out := make([]formula.Formula, len(fs))
	copy(out, fs)
	return out
}
