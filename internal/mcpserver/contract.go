package mcpserver

// SyntaxContract describes the formula syntax and workspace file format
// that LLM consumers should follow when calling the prover.
const SyntaxContract = `# modalk Formula Syntax

Formulas of propositional modal logic K. Whitespace is ignored.

## Symbols

| Meaning        | Symbolic | ASCII            |
|----------------|----------|------------------|
| true           | ⊤        | ` + "`T`" + `              |
| false          | ⊥        | ` + "`F`" + `              |
| not            | ¬        | ` + "`-`" + ` or ` + "`~`" + `       |
| and            | ∧        | ` + "`&`" + ` or ` + "`/\\`" + `      |
| or             | ∨        | ` + "`V`" + ` or ` + "`\\/`" + `      |
| implies        | →        | ` + "`->`" + `             |
| possibly       | ◇        | ` + "`<>`" + `             |
| necessarily    | □        | ` + "`[]`" + `             |

Propositional letters are single lower-case letters ` + "`a`" + `–` + "`z`" + `.
Upper-case ` + "`T`" + `, ` + "`F`" + ` and ` + "`V`" + ` are reserved.

## Precedence

From tightest to loosest: ¬ ◇ □, then ∧ ∨, then →.
Binary operators of equal strength group to the right, so
` + "`p & q V r`" + ` is ` + "`p & (q V r)`" + ` and ` + "`p -> q -> r`" + ` is ` + "`p -> (q -> r)`" + `.
Use parentheses to group otherwise.

## Examples

- ` + "`[](p -> q) -> ([]p -> []q)`" + ` is valid (axiom K).
- ` + "`[]p -> p`" + ` is invalid in K; the counter-model is a single world with no successors.
- ` + "`<>p -> <>(p & q)`" + ` is invalid; the counter-model has an edge 1 → 2 with p true at 2.

## Workspace files

Files end with ` + "`.modal`" + `. An optional YAML frontmatter may declare a title and
the expected verdict of every formula in the file:

` + "```" + `
---
title: Distribution
expect: valid
---
# lines starting with # are comments
[](p -> q) -> ([]p -> []q)
<>(p V q) -> <>p V <>q
` + "```" + `

Each non-empty, non-comment line is one formula. Lines whose verdict
differs from ` + "`expect`" + ` are reported as mismatches.
`
