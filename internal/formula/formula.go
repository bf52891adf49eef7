// Package formula defines the term algebra of modal logic K and the
// normalizer that reduces it to the connectives the prover works on.
package formula

// Atom identifies a propositional letter.
type Atom rune

// String returns the letter as text.
func (a Atom) String() string { return string(a) }

// Kind enumerates the formula variants.
type Kind int

const (
	KindTop Kind = iota
	KindBottom
	KindLetter
	KindNegation
	KindConjunction
	KindDisjunction
	KindPossibility
	KindNecessity
	KindImplication
)

// BindStrength returns how tightly the connective binds; higher binds tighter.
func (k Kind) BindStrength() int {
	switch k {
	case KindTop, KindBottom, KindLetter:
		return 99
	case KindNegation, KindPossibility, KindNecessity:
		return 3
	case KindConjunction, KindDisjunction:
		return 2
	case KindImplication:
		return 1
	}
	panic("formula: unknown kind")
}

func (k Kind) String() string {
	switch k {
	case KindTop:
		return "top"
	case KindBottom:
		return "bottom"
	case KindLetter:
		return "letter"
	case KindNegation:
		return "negation"
	case KindConjunction:
		return "conjunction"
	case KindDisjunction:
		return "disjunction"
	case KindPossibility:
		return "possibility"
	case KindNecessity:
		return "necessity"
	case KindImplication:
		return "implication"
	}
	return "unknown"
}

// Formula is a closed sum type. Only the variants declared in this file
// implement it. Every variant is a comparable value, so two formulas are
// structurally equal exactly when they compare equal with ==.
type Formula interface {
	Kind() Kind
	sealed()
}

type (
	// Top is the constant true.
	Top struct{}
	// Bottom is the constant false.
	Bottom struct{}
	// Letter is an atomic proposition.
	Letter struct{ Atom Atom }
	// Negation is ¬X.
	Negation struct{ X Formula }
	// Conjunction is L ∧ R.
	Conjunction struct{ L, R Formula }
	// Disjunction is L ∨ R.
	Disjunction struct{ L, R Formula }
	// Possibility is ◇X.
	Possibility struct{ X Formula }
	// Necessity is □X. Surface syntax only; Normalize removes it.
	Necessity struct{ X Formula }
	// Implication is L → R. Surface syntax only; Normalize removes it.
	Implication struct{ L, R Formula }
)

func (Top) Kind() Kind { return KindTop }
func (Bottom) Kind() Kind { return KindBottom }
func (Letter) Kind() Kind { return KindLetter }
func (Negation) Kind() Kind { return KindNegation }
func (Conjunction) Kind() Kind { return KindConjunction }
func (Disjunction) Kind() Kind { return KindDisjunction }
func (Possibility) Kind() Kind { return KindPossibility }
func (Necessity) Kind() Kind { return KindNecessity }
func (Implication) Kind() Kind { return KindImplication }

func (Top) sealed() {}
func (Bottom) sealed() {}
func (Letter) sealed() {}
func (Negation) sealed() {}
func (Conjunction) sealed() {}
func (Disjunction) sealed() {}
func (Possibility) sealed() {}
func (Necessity) sealed() {}
func (Implication) sealed() {}

// Shorthand constructors, mostly for tests and examples.

func Var(a rune) Formula { return Letter{Atom: Atom(a)} }
func Not(x Formula) Formula { return Negation{X: x} }
func And(l, r Formula) Formula { return Conjunction{L: l, R: r} }
func Or(l, r Formula) Formula { return Disjunction{L: l, R: r} }
func Diamond(x Formula) Formula { return Possibility{X: x} }
func Box(x Formula) Formula { return Necessity{X: x} }
func Implies(l, r Formula) Formula { return Implication{L: l, R: r} }

// Equal reports structural equality.
func Equal(a, b Formula) bool { return a == b }

// Normalize rewrites Necessity and Implication in terms of the other
// connectives. The result is K-equivalent to f and contains neither.
func Normalize(f Formula) Formula {
	switch f := f.(type) {
	case Top, Bottom, Letter:
		return f
	case Negation:
		return Negation{X: Normalize(f.X)}
	case Conjunction:
		return Conjunction{L: Normalize(f.L), R: Normalize(f.R)}
	case Disjunction:
		return Disjunction{L: Normalize(f.L), R: Normalize(f.R)}
	case Possibility:
		return Possibility{X: Normalize(f.X)}
	case Necessity:
		return Negation{X: Possibility{X: Negation{X: Normalize(f.X)}}}
	case Implication:
		return Disjunction{L: Negation{X: Normalize(f.L)}, R: Normalize(f.R)}
	}
	panic(unknownVariant(f))
}

// IsNormal reports whether f contains no Necessity or Implication node.
func IsNormal(f Formula) bool {
	switch f := f.(type) {
	case Top, Bottom, Letter:
		return true
	case Negation:
		return IsNormal(f.X)
	case Conjunction:
		return IsNormal(f.L) && IsNormal(f.R)
	case Disjunction:
		return IsNormal(f.L) && IsNormal(f.R)
	case Possibility:
		return IsNormal(f.X)
	case Necessity, Implication:
		return false
	}
	panic(unknownVariant(f))
}

// Size counts the nodes of f.
func Size(f Formula) int {
	switch f := f.(type) {
	case Top, Bottom, Letter:
		return 1
	case Negation:
		return 1 + Size(f.X)
	case Conjunction:
		return 1 + Size(f.L) + Size(f.R)
	case Disjunction:
		return 1 + Size(f.L) + Size(f.R)
	case Possibility:
		return 1 + Size(f.X)
	case Necessity:
		return 1 + Size(f.X)
	case Implication:
		return 1 + Size(f.L) + Size(f.R)
	}
	panic(unknownVariant(f))
}

// ModalDepth is the deepest nesting of ◇ and □ in f.
func ModalDepth(f Formula) int {
	switch f := f.(type) {
	case Top, Bottom, Letter:
		return 0
	case Negation:
		return ModalDepth(f.X)
	case Conjunction:
		return max(ModalDepth(f.L), ModalDepth(f.R))
	case Disjunction:
		return max(ModalDepth(f.L), ModalDepth(f.R))
	case Possibility:
		return 1 + ModalDepth(f.X)
	case Necessity:
		return 1 + ModalDepth(f.X)
	case Implication:
		return max(ModalDepth(f.L), ModalDepth(f.R))
	}
	panic(unknownVariant(f))
}

// Atoms returns the letters occurring anywhere in f, sorted and unique.
func Atoms(f Formula) []Atom {
	set := make(map[Atom]struct{})
	collectAtoms(f, set)
	return SortedAtoms(set)
}

func collectAtoms(f Formula, set map[Atom]struct{}) {
	switch f := f.(type) {
	case Top, Bottom:
	case Letter:
		set[f.Atom] = struct{}{}
	case Negation:
		collectAtoms(f.X, set)
	case Conjunction:
		collectAtoms(f.L, set)
		collectAtoms(f.R, set)
	case Disjunction:
		collectAtoms(f.L, set)
		collectAtoms(f.R, set)
	case Possibility:
		collectAtoms(f.X, set)
	case Necessity:
		collectAtoms(f.X, set)
	case Implication:
		collectAtoms(f.L, set)
		collectAtoms(f.R, set)
	default:
		panic(unknownVariant(f))
	}
}

func unknownVariant(f Formula) string {
	if f == nil {
		return "formula: nil formula"
	}
	return "formula: unknown variant " + f.Kind().String()
}
