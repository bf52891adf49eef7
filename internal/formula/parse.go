package formula

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrUnrecognized is returned when text is not a well-formed formula.
var ErrUnrecognized = errors.New("unrecognized formula")

// asciiReplacer turns ASCII spellings into symbols. Multi-character tokens
// come first so "->" is consumed before "-".
var asciiReplacer = strings.NewReplacer(
	"->", "→",
	"=>", "⇒",
	"-", "¬",
	"~", "¬",
	"/\\", "∧",
	"&", "∧",
	"\\/", "∨",
	"V", "∨",
	"<>", "◇",
	"[]", "□",
	"T", "⊤",
	"F", "⊥",
)

// Clean converts ASCII notation to symbols and drops all whitespace.
func Clean(text string) string {
	return asciiReplacer.Replace(strings.Join(strings.Fields(text), ""))
}

// Parse reads a formula in either notation.
func Parse(text string) (Formula, error) {
	f := parse([]rune(Clean(text)))
	if f == nil {
		return nil, fmt.Errorf("formula: parse %q: %w", text, ErrUnrecognized)
	}
	return f, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(text string) Formula {
	f, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return f
}

var operatorKinds = map[rune]Kind{
	'¬': KindNegation,
	'◇': KindPossibility,
	'□': KindNecessity,
	'∧': KindConjunction,
	'∨': KindDisjunction,
	'→': KindImplication,
}

func parse(s []rune) Formula {
	for hasRedundantBrackets(s) {
		s = s[1 : len(s)-1]
	}
	if len(s) == 1 {
		switch r := s[0]; {
		case r == '⊤':
			return Top{}
		case r == '⊥':
			return Bottom{}
		case unicode.IsLower(r):
			return Letter{Atom: Atom(r)}
		}
		return nil
	}

	// Find the loosest-binding operator outside parentheses. Prefix
	// operators count only at position 0; among equals the first wins.
	bestStrength, best := KindLetter.BindStrength(), -1
	depth := 0
	for i, r := range s {
		switch {
		case r == '(':
			depth++
			continue
		case r == ')':
			if depth == 0 {
				return nil
			}
			depth--
			continue
		case depth > 0:
			continue
		}
		k, ok := operatorKinds[r]
		if !ok || (isUnary(k) && i != 0) {
			continue
		}
		if k.BindStrength() < bestStrength {
			bestStrength, best = k.BindStrength(), i
		}
	}
	if best < 0 {
		return nil
	}

	switch kind := operatorKinds[s[best]]; kind {
	case KindNegation, KindPossibility, KindNecessity:
		x := parse(s[best+1:])
		if x == nil {
			return nil
		}
		switch kind {
		case KindNegation:
			return Negation{X: x}
		case KindPossibility:
			return Possibility{X: x}
		default:
			return Necessity{X: x}
		}
	default:
		l, r := parse(s[:best]), parse(s[best+1:])
		if l == nil || r == nil {
			return nil
		}
		switch kind {
		case KindConjunction:
			return Conjunction{L: l, R: r}
		case KindDisjunction:
			return Disjunction{L: l, R: r}
		default:
			return Implication{L: l, R: r}
		}
	}
}

// hasRedundantBrackets reports whether s is wrapped in one matched pair.
func hasRedundantBrackets(s []rune) bool {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return false
	}
	depth := 1
	for _, r := range s[1 : len(s)-1] {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return false
			}
		}
	}
	return true
}
