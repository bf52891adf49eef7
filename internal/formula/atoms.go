package formula

import (
	"slices"
	"strings"
)

// SortedAtoms returns the members of set in ascending order.
func SortedAtoms(set map[Atom]struct{}) []Atom {
	out := make([]Atom, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

// LetterAtoms returns the atoms that occur as top-level Letter entries of
// fs, sorted and unique. Nested letters are not included.
func LetterAtoms(fs []Formula) []Atom {
	set := make(map[Atom]struct{})
	for _, f := range fs {
		if l, ok := f.(Letter); ok {
			set[l.Atom] = struct{}{}
		}
	}
	return SortedAtoms(set)
}

// JoinAtoms renders atoms as "p, q, r".
func JoinAtoms(atoms []Atom) string {
	parts := make([]string, len(atoms))
	for i, a := range atoms {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}
