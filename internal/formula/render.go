package formula

import (
	"fmt"
	"strings"
)

// Notation selects the symbol set used when rendering formulas.
type Notation int

const (
	// Symbolic renders with ¬ ∧ ∨ ◇ □ → ⊤ ⊥.
	Symbolic Notation = iota
	// ASCII renders with - & V <> [] -> T F.
	ASCII
)

type symbols struct {
	top, bottom, not, and, or, diamond, box, implies, entails string
}

var symbolTable = map[Notation]symbols{
	Symbolic: {"⊤", "⊥", "¬", "∧", "∨", "◇", "□", "→", "⇒"},
	ASCII:    {"T", "F", "-", "&", "V", "<>", "[]", "->", "=>"},
}

func (n Notation) symbols() symbols {
	s, ok := symbolTable[n]
	if !ok {
		return symbolTable[Symbolic]
	}
	return s
}

func (n Notation) String() string {
	if n == ASCII {
		return "ascii"
	}
	return "symbolic"
}

// Entails returns the sequent arrow for the notation.
func (n Notation) Entails() string { return n.symbols().entails }

// ParseNotation maps a configuration value to a Notation. The empty string
// selects Symbolic.
func ParseNotation(s string) (Notation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "symbolic", "unicode":
		return Symbolic, nil
	case "ascii":
		return ASCII, nil
	}
	return Symbolic, fmt.Errorf("formula: unknown notation %q", s)
}

// Render prints f in the given notation with the minimum parentheses that
// still parse back to f.
func Render(f Formula, n Notation) string {
	var b strings.Builder
	write(&b, f, n.symbols())
	return b.String()
}

// String renders f symbolically.
func String(f Formula) string { return Render(f, Symbolic) }

func write(b *strings.Builder, f Formula, s symbols) {
	switch f := f.(type) {
	case Top:
		b.WriteString(s.top)
	case Bottom:
		b.WriteString(s.bottom)
	case Letter:
		b.WriteRune(rune(f.Atom))
	case Negation:
		b.WriteString(s.not)
		writeChild(b, KindNegation, f.X, false, s)
	case Possibility:
		b.WriteString(s.diamond)
		writeChild(b, KindPossibility, f.X, false, s)
	case Necessity:
		b.WriteString(s.box)
		writeChild(b, KindNecessity, f.X, false, s)
	case Conjunction:
		writeChild(b, KindConjunction, f.L, false, s)
		b.WriteString(s.and)
		writeChild(b, KindConjunction, f.R, true, s)
	case Disjunction:
		writeChild(b, KindDisjunction, f.L, false, s)
		b.WriteString(s.or)
		writeChild(b, KindDisjunction, f.R, true, s)
	case Implication:
		writeChild(b, KindImplication, f.L, false, s)
		b.WriteString(s.implies)
		writeChild(b, KindImplication, f.R, true, s)
	default:
		panic(unknownVariant(f))
	}
}

func writeChild(b *strings.Builder, parent Kind, child Formula, right bool, s symbols) {
	parens := needParens(parent, child.Kind(), right)
	if parens {
		b.WriteByte('(')
	}
	write(b, child, s)
	if parens {
		b.WriteByte(')')
	}
}

// needParens decides whether child must be bracketed under parent. The
// parser splits binary operators at their first top-level occurrence, so
// only a right-nested ∧ or ∨ of the same kind may go without brackets.
func needParens(parent, child Kind, right bool) bool {
	ps, cs := parent.BindStrength(), child.BindStrength()
	switch {
	case cs > ps:
		return false
	case cs < ps:
		return true
	}
	if isUnary(parent) {
		return false
	}
	associative := parent == KindConjunction || parent == KindDisjunction
	return !(associative && child == parent && right)
}

func isUnary(k Kind) bool {
	return k == KindNegation || k == KindPossibility || k == KindNecessity
}
