package kripke

import "github.com/starford/modalk/internal/formula"

// Satisfies evaluates f at world w under K semantics. ◇A holds when some
// successor satisfies A; □A holds when every successor does, so □A is
// vacuously true at a world without successors.
func (m *Model) Satisfies(w World, f formula.Formula) bool {
	switch f := f.(type) {
	case formula.Top:
		return true
	case formula.Bottom:
		return false
	case formula.Letter:
		return m.TrueAt(f.Atom, w)
	case formula.Negation:
		return !m.Satisfies(w, f.X)
	case formula.Conjunction:
		return m.Satisfies(w, f.L) && m.Satisfies(w, f.R)
	case formula.Disjunction:
		return m.Satisfies(w, f.L) || m.Satisfies(w, f.R)
	case formula.Implication:
		return !m.Satisfies(w, f.L) || m.Satisfies(w, f.R)
	case formula.Possibility:
		for _, s := range m.Successors(w) {
			if m.Satisfies(s, f.X) {
				return true
			}
		}
		return false
	case formula.Necessity:
		for _, s := range m.Successors(w) {
			if !m.Satisfies(s, f.X) {
				return false
			}
		}
		return true
	}
	panic("kripke: unknown formula variant")
}

// Falsifies reports whether f fails at the root world.
func (m *Model) Falsifies(f formula.Formula) bool {
	return !m.Satisfies(Root, f)
}
