// Package kripke holds finite Kripke models: the counter-models the
// synthesizer extracts from failed proofs, and the K semantics used to
// check them.
package kripke

import (
	"cmp"
	"slices"

	"golang.org/x/exp/maps"

	"github.com/starford/modalk/internal/formula"
)

// World identifies a world. Worlds are numbered from 1.
type World int

// Root is the world at which a counter-model falsifies its formula.
const Root World = 1

// Edge is a directed accessibility pair.
type Edge struct {
	From World
	To   World
}

// Model is a finite Kripke model. A letter is false at every world not
// listed in its valuation.
type Model struct {
	NumWorlds  int
	Access     map[Edge]struct{}
	Valuations map[formula.Atom]map[World]struct{}
}

// Builder accumulates a Model. NumWorlds always equals the largest world
// id mentioned so far, and is at least 1.
type Builder struct {
	m Model
}

// NewBuilder starts a one-world model with no edges and nothing true.
func NewBuilder() *Builder {
	return &Builder{m: Model{
		NumWorlds:  1,
		Access:     make(map[Edge]struct{}),
		Valuations: make(map[formula.Atom]map[World]struct{}),
	}}
}

// AddAccess records from → to.
func (b *Builder) AddAccess(from, to World) {
	b.m.NumWorlds = max(b.m.NumWorlds, int(from), int(to))
	b.m.Access[Edge{From: from, To: to}] = struct{}{}
}

// SetTrue makes atom a true at world w.
func (b *Builder) SetTrue(w World, a formula.Atom) {
	b.m.NumWorlds = max(b.m.NumWorlds, int(w))
	worlds, ok := b.m.Valuations[a]
	if !ok {
		worlds = make(map[World]struct{})
		b.m.Valuations[a] = worlds
	}
	worlds[w] = struct{}{}
}

// Model returns the finished model. The builder must not be used afterwards.
func (b *Builder) Model() *Model {
	m := b.m
	b.m = Model{}
	return &m
}

// Worlds lists 1..NumWorlds.
func (m *Model) Worlds() []World {
	out := make([]World, m.NumWorlds)
	for i := range out {
		out[i] = World(i + 1)
	}
	return out
}

// Edges returns the accessibility relation in ascending order.
func (m *Model) Edges() []Edge {
	out := maps.Keys(m.Access)
	slices.SortFunc(out, func(a, b Edge) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		return cmp.Compare(a.To, b.To)
	})
	return out
}

// Successors lists the worlds accessible from w in ascending order.
func (m *Model) Successors(w World) []World {
	var out []World
	for e := range m.Access {
		if e.From == w {
			out = append(out, e.To)
		}
	}
	slices.Sort(out)
	return out
}

// Atoms lists the letters with a non-empty valuation.
func (m *Model) Atoms() []formula.Atom {
	out := maps.Keys(m.Valuations)
	slices.Sort(out)
	return out
}

// TrueAt reports whether a holds at w.
func (m *Model) TrueAt(a formula.Atom, w World) bool {
	_, ok := m.Valuations[a][w]
	return ok
}

// WorldsWhere lists the worlds where a holds in ascending order.
func (m *Model) WorldsWhere(a formula.Atom) []World {
	out := maps.Keys(m.Valuations[a])
	slices.Sort(out)
	return out
}

// TrueAtoms lists the letters true at w.
func (m *Model) TrueAtoms(w World) []formula.Atom {
	var out []formula.Atom
	for _, a := range m.Atoms() {
		if m.TrueAt(a, w) {
			out = append(out, a)
		}
	}
	return out
}

// Equal compares two models as values.
func (m *Model) Equal(o *Model) bool {
	if m.NumWorlds != o.NumWorlds || len(m.Access) != len(o.Access) || len(m.Valuations) != len(o.Valuations) {
		return false
	}
	for e := range m.Access {
		if _, ok := o.Access[e]; !ok {
			return false
		}
	}
	for a, ws := range m.Valuations {
		other, ok := o.Valuations[a]
		if !ok || len(other) != len(ws) {
			return false
		}
		for w := range ws {
			if _, ok := other[w]; !ok {
				return false
			}
		}
	}
	return true
}
