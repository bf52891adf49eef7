package sequent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/modalk/internal/formula"
)

var (
	p = formula.Var('p')
	q = formula.Var('q')
	r = formula.Var('r')
	s = formula.Var('s')
)

func fs(xs ...formula.Formula) []formula.Formula { return xs }

func TestStep_Axiom(t *testing.T) {
	got := Step(New(fs(p, formula.And(q, r)), fs(p, s)))
	v, ok := got.(Valid)
	require.True(t, ok, "got %#v", got)
	assert.Equal(t, []formula.Atom{'p'}, v.Atoms)
}

func TestStep_AxiomTopAndBottom(t *testing.T) {
	assert.IsType(t, Valid{}, Step(New(nil, fs(q, formula.Top{}))))
	assert.IsType(t, Valid{}, Step(New(fs(formula.Bottom{}), nil)))
}

func TestStep_TopDroppedThenInvalid(t *testing.T) {
	first := Step(New(fs(formula.Top{}), fs(p)))
	ind, ok := first.(Indeterminate)
	require.True(t, ok, "got %#v", first)
	assert.Equal(t, RuleLTop, ind.Rule)
	assert.Empty(t, ind.Next.Left)
	assert.Equal(t, fs(p), ind.Next.Right)

	second := Step(ind.Next)
	inv, ok := second.(Invalid)
	require.True(t, ok, "got %#v", second)
	assert.Empty(t, inv.Atoms)
}

func TestStep_RuleOrder(t *testing.T) {
	tests := []struct {
		name string
		in   Sequent
		rule Rule
		next Sequent
	}{
		{"rbot", New(nil, fs(formula.Bottom{}, p)), RuleRBot, New(nil, fs(p))},
		{"lneg", New(fs(formula.And(p, q), formula.Not(r)), nil), RuleLNeg, New(fs(formula.And(p, q)), fs(r))},
		{"rneg", New(fs(formula.And(p, q)), fs(formula.Not(r))), RuleRNeg, New(fs(formula.And(p, q), r), nil)},
		{"land splices in place", New(fs(s, formula.And(p, q), r), nil), RuleLAnd, New(fs(s, p, q, r), nil)},
		{"r_or splices in place", New(nil, fs(s, formula.Or(p, q), r)), RuleROr, New(nil, fs(s, p, q, r))},
		{"land before r_or", New(fs(formula.And(p, q)), fs(formula.Or(r, s))), RuleLAnd, New(fs(p, q), fs(formula.Or(r, s)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Step(tt.in)
			ind, ok := got.(Indeterminate)
			require.True(t, ok, "got %#v", got)
			assert.Equal(t, tt.rule, ind.Rule)
			assert.Equal(t, tt.next.String(), ind.Next.String())
		})
	}
}

func TestStep_LeftDisjunctionSplits(t *testing.T) {
	got := Step(New(fs(s, formula.Or(p, q)), fs(r)))
	both, ok := got.(ValidIfBoth)
	require.True(t, ok, "got %#v", got)
	assert.Equal(t, RuleLOr, both.Rule)
	assert.Equal(t, "s,p  ⇒  r", both.Left.String())
	assert.Equal(t, "s,q  ⇒  r", both.Right.String())
	assert.Equal(t, []formula.Atom{'s'}, both.Atoms)
}

func TestStep_RightConjunctionSplits(t *testing.T) {
	got := Step(New(fs(s), fs(formula.And(p, q), r)))
	both, ok := got.(ValidIfBoth)
	require.True(t, ok, "got %#v", got)
	assert.Equal(t, RuleRAnd, both.Rule)
	assert.Equal(t, "s  ⇒  p,r", both.Left.String())
	assert.Equal(t, "s  ⇒  q,r", both.Right.String())
}

func TestStep_Diamond(t *testing.T) {
	in := New(
		fs(formula.Diamond(p), q, formula.Diamond(formula.And(q, r))),
		fs(formula.Diamond(s), formula.Diamond(formula.Not(p))),
	)
	got := Step(in)
	va, ok := got.(ValidIfAny)
	require.True(t, ok, "got %#v", got)
	assert.Equal(t, RuleDiamond, va.Rule)
	assert.Equal(t, []formula.Atom{'q'}, va.Atoms)
	require.Len(t, va.Branches, 2)
	assert.Equal(t, "p  ⇒  s,¬p", va.Branches[0].String())
	assert.Equal(t, "q∧r  ⇒  s,¬p", va.Branches[1].String())
}

// A left ◇ with no right ◇ still opens a branch whose right side is empty.
func TestStep_DiamondUngated(t *testing.T) {
	got := Step(New(fs(formula.Diamond(p)), fs(q)))
	va, ok := got.(ValidIfAny)
	require.True(t, ok, "got %#v", got)
	require.Len(t, va.Branches, 1)
	assert.Equal(t, fs(p), va.Branches[0].Left)
	assert.Empty(t, va.Branches[0].Right)
	assert.IsType(t, Invalid{}, Step(va.Branches[0]))
}

func TestStep_RightDiamondAloneIsInvalid(t *testing.T) {
	got := Step(New(fs(p), fs(formula.Diamond(p))))
	inv, ok := got.(Invalid)
	require.True(t, ok, "got %#v", got)
	assert.Equal(t, []formula.Atom{'p'}, inv.Atoms)
}

func TestStep_DoesNotMutateInput(t *testing.T) {
	left := fs(formula.Not(p), formula.And(q, r))
	right := fs(formula.Or(p, s))
	in := New(left, right)
	before := in.String()

	Step(in)
	Step(New(fs(formula.Or(p, q)), right))

	assert.Equal(t, before, in.String())
	assert.Equal(t, formula.Not(p), left[0])
	assert.Equal(t, formula.Or(p, s), right[0])
}

func TestSequent_RenderAndMeasures(t *testing.T) {
	sq := New(fs(p, formula.Diamond(q)), fs(formula.Box(formula.Diamond(r)), s))
	assert.Equal(t, "p,◇q  ⇒  □◇r,s", sq.String())
	assert.Equal(t, "p,<>q  =>  []<>r,s", sq.Render(formula.ASCII))
	assert.Equal(t, 7, sq.Size())
	assert.Equal(t, 2, sq.ModalDepth())
	assert.Equal(t, "  ⇒  p", Goal(p).String())
}

func TestRule_String(t *testing.T) {
	names := map[Rule]string{
		RuleLTop: "ltop", RuleRBot: "rbot", RuleLNeg: "lneg", RuleRNeg: "rneg",
		RuleLAnd: "land", RuleROr: "r_or", RuleLOr: "l_or", RuleRAnd: "rand", RuleDiamond: "diam",
	}
	for rule, want := range names {
		assert.Equal(t, want, rule.String())
	}
}
