package kripke

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/starford/modalk/internal/formula"
)

// String renders the model in the block layout printed after an INVALID
// trace. Worlds, edges and letters are listed in ascending order; the
// access and valuation lines are left out when they are empty.
func (m *Model) String() string {
	var b strings.Builder
	b.WriteString("Model:\n")
	fmt.Fprintf(&b, "  worlds:     %s\n", m.worldsSummary())

	if edges := m.Edges(); len(edges) > 0 {
		pairs := make([]string, len(edges))
		for i, e := range edges {
			pairs[i] = fmt.Sprintf("(%d, %d)", e.From, e.To)
		}
		fmt.Fprintf(&b, "  access fn.: {%s}\n", strings.Join(pairs, ", "))
	}

	atoms := m.Atoms()
	if len(atoms) == 0 {
		return b.String()
	}
	b.WriteString("  valuations: {\n")
	for _, a := range atoms {
		fmt.Fprintf(&b, "    %s: {%s}\n", a, joinWorlds(m.WorldsWhere(a)))
	}
	b.WriteString("  }\n")
	return b.String()
}

func (m *Model) worldsSummary() string {
	if m.NumWorlds <= 4 {
		return "{" + joinWorlds(m.Worlds()) + "}"
	}
	return fmt.Sprintf("{1, 2, ... %d}", m.NumWorlds)
}

func joinWorlds(ws []World) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = strconv.Itoa(int(w))
	}
	return strings.Join(parts, ", ")
}

// WriteDOT emits the model as a Graphviz digraph. Each node is labelled
// with its id and the letters true there; the root is marked by an
// incoming arrow from an invisible start point.
func (m *Model) WriteDOT(w io.Writer) error {
	var b strings.Builder
	b.WriteString("digraph CounterModel {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=circle];\n")
	b.WriteString("  start [shape=point];\n")
	fmt.Fprintf(&b, "  start -> w%d;\n", Root)
	for _, wd := range m.Worlds() {
		label := strconv.Itoa(int(wd))
		if atoms := m.TrueAtoms(wd); len(atoms) > 0 {
			label += "\\n{" + formula.JoinAtoms(atoms) + "}"
		}
		fmt.Fprintf(&b, "  w%d [label=\"%s\"];\n", wd, label)
	}
	for _, e := range m.Edges() {
		fmt.Fprintf(&b, "  w%d -> w%d;\n", e.From, e.To)
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// DOT is WriteDOT into a string.
func (m *Model) DOT() string {
	var b strings.Builder
	_ = m.WriteDOT(&b)
	return b.String()
}

type modelJSON struct {
	Worlds     int              `json:"worlds"`
	Access     [][2]int         `json:"access"`
	Valuations map[string][]int `json:"valuations"`
}

// MarshalJSON encodes the model with sorted edges and world lists.
func (m *Model) MarshalJSON() ([]byte, error) {
	out := modelJSON{
		Worlds:     m.NumWorlds,
		Access:     make([][2]int, 0, len(m.Access)),
		Valuations: make(map[string][]int, len(m.Valuations)),
	}
	for _, e := range m.Edges() {
		out.Access = append(out.Access, [2]int{int(e.From), int(e.To)})
	}
	for _, a := range m.Atoms() {
		ws := m.WorldsWhere(a)
		ints := make([]int, len(ws))
		for i, w := range ws {
			ints[i] = int(w)
		}
		out.Valuations[a.String()] = ints
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a model written by MarshalJSON.
func (m *Model) UnmarshalJSON(data []byte) error {
	var in modelJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	b := NewBuilder()
	for _, e := range in.Access {
		b.AddAccess(World(e[0]), World(e[1]))
	}
	for name, ws := range in.Valuations {
		r := []rune(name)
		if len(r) != 1 {
			return fmt.Errorf("kripke: invalid letter %q", name)
		}
		for _, w := range ws {
			b.SetTrue(World(w), formula.Atom(r[0]))
		}
	}
	built := b.Model()
	built.NumWorlds = max(built.NumWorlds, in.Worlds)
	*m = *built
	return nil
}
