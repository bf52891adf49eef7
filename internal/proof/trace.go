package proof

import (
	"bufio"
	"io"
	"strings"

	"github.com/starford/modalk/internal/formula"
)

const indentUnit = "    "

// Verdict is the final line of a trace.
func (p *Proof) Verdict() string {
	if p.valid {
		return "VALID"
	}
	return "INVALID"
}

// Trace writes the derivation, children indented one level below their
// parent, followed by the verdict.
func (p *Proof) Trace(w io.Writer, n formula.Notation) error {
	bw := bufio.NewWriter(w)
	p.writeLines(bw, n, 0)
	bw.WriteString(p.Verdict())
	bw.WriteByte('\n')
	return bw.Flush()
}

// TraceString is Trace into a string.
func (p *Proof) TraceString(n formula.Notation) string {
	var b strings.Builder
	_ = p.Trace(&b, n)
	return b.String()
}

// Lines returns the trace without the verdict, one entry per line.
func (p *Proof) Lines(n formula.Notation) []string {
	var b strings.Builder
	bw := bufio.NewWriter(&b)
	p.writeLines(bw, n, 0)
	_ = bw.Flush()
	return strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
}

func (p *Proof) writeLines(w *bufio.Writer, n formula.Notation, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	for _, s := range p.steps {
		w.WriteString(indent)
		w.WriteString(p.renderStep(s, n))
		w.WriteByte('\n')
	}
	for _, c := range p.children {
		c.writeLines(w, n, depth+1)
	}
}

func (p *Proof) renderStep(s Step, n formula.Notation) string {
	switch s.Kind {
	case StepStart:
		return "• prove : " + s.Sequent.Render(n)
	case StepRewrite:
		return "  rule " + s.Rule.String() + ": " + s.Sequent.Render(n)
	}
	status := "invalid"
	if p.valid {
		status = "valid"
	}
	switch p.outcome {
	case OutcomeAnyValid:
		return "  rule " + s.Rule.String() + ": valid if any... (" + status + ")"
	case OutcomeBothValid:
		return "  rule " + s.Rule.String() + ": valid if both... (" + status + ")"
	}
	return "  " + status + "!"
}
