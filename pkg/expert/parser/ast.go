package parser

import (
	"fmt"
	"sort"
	"strings"
)

// Expr is a parsed logical expression. The set of implementations is
// closed: Fact, Not, And, Or and Xor. Consumers switch exhaustively
// over these types.
type Expr interface {
	fmt.Stringer
	isExpr()
}

// Fact is a reference to an atomic proposition (a single uppercase
// letter).
type Fact struct {
	Name string
}

// Not negates its operand.
type Not struct {
	X Expr
}

// And is a left-associative conjunction.
type And struct {
	L, R Expr
}

// Or is a left-associative disjunction.
type Or struct {
	L, R Expr
}

// Xor is a left-associative exclusive disjunction.
type Xor struct {
	L, R Expr
}

func (Fact) isExpr() {}
func (Not) isExpr()  {}
func (And) isExpr()  {}
func (Or) isExpr()   {}
func (Xor) isExpr()  {}

func (f Fact) String() string { return f.Name }
func (n Not) String() string  { return "!" + n.X.String() }
func (a And) String() string  { return binaryString(a.L, "+", a.R) }
func (o Or) String() string   { return binaryString(o.L, "|", o.R) }
func (x Xor) String() string  { return binaryString(x.L, "^", x.R) }

func binaryString(l Expr, op string, r Expr) string {
	return fmt.Sprintf("%s %s %s", operandString(l), op, operandString(r))
}

// operandString parenthesizes nested binary operands so the printed
// form is unambiguous regardless of precedence.
func operandString(e Expr) string {
	switch e.(type) {
	case And, Or, Xor:
		return "(" + e.String() + ")"
	}
	return e.String()
}

// WalkFacts calls fn for every fact leaf of e, in source order,
// including duplicates.
func WalkFacts(e Expr, fn func(name string)) {
	switch v := e.(type) {
	case Fact:
		fn(v.Name)
	case Not:
		WalkFacts(v.X, fn)
	case And:
		WalkFacts(v.L, fn)
		WalkFacts(v.R, fn)
	case Or:
		WalkFacts(v.L, fn)
		WalkFacts(v.R, fn)
	case Xor:
		WalkFacts(v.L, fn)
		WalkFacts(v.R, fn)
	}
}

// Facts returns the sorted set of fact names referenced by e.
func Facts(e Expr) []string {
	seen := make(map[string]struct{})
	var out []string
	WalkFacts(e, func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	})
	sort.Strings(out)
	return out
}

// Rule is one condition/conclusion pair. ID is the source line number
// and identifies the rule in diagnostics, fired-rule reports and cycle
// reports. A biconditional rule is evaluated in both directions by the
// engine; it stays a single Rule value.
type Rule struct {
	ID            int
	Condition     Expr
	Conclusion    Expr
	Biconditional bool
}

func (r *Rule) String() string {
	op := "=>"
	if r.Biconditional {
		op = "<=>"
	}
	return fmt.Sprintf("%s %s %s", r.Condition, op, r.Conclusion)
}

// Facts returns the sorted set of facts referenced anywhere in the
// rule.
func (r *Rule) Facts() []string {
	seen := make(map[string]struct{})
	var out []string
	collect := func(name string) {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	WalkFacts(r.Condition, collect)
	WalkFacts(r.Conclusion, collect)
	sort.Strings(out)
	return out
}

// ConcludedLeaves extracts the facts a conclusion-side tree asserts:
// positive fact references and !-wrapped fact references reachable
// through AND/OR/XOR nodes. Negated facts are returned with a leading
// "!". A negation wrapping anything but a plain fact asserts nothing.
func ConcludedLeaves(e Expr) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(name string) {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	var walk func(Expr)
	walk = func(e Expr) {
		switch v := e.(type) {
		case Fact:
			add(v.Name)
		case Not:
			if f, ok := v.X.(Fact); ok {
				add("!" + f.Name)
			}
		case And:
			walk(v.L)
			walk(v.R)
		case Or:
			walk(v.L)
			walk(v.R)
		case Xor:
			walk(v.L)
			walk(v.R)
		}
	}
	walk(e)
	return out
}

// FormatRuleList renders rules one per line with their IDs, for
// summaries and the REPL's rules command.
func FormatRuleList(rules []*Rule) string {
	var b strings.Builder
	for _, r := range rules {
		fmt.Fprintf(&b, "  %d. %s\n", r.ID, r)
	}
	return b.String()
}
