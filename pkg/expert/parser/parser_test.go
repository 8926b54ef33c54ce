package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/andrijajovanovic98/expert-system/pkg/expert/experr"
)

func parseCondition(t *testing.T, expr string) Expr {
	t.Helper()
	in, err := Parse(expr + " => Z")
	if err != nil {
		t.Fatalf("parse %q: %v", expr, err)
	}
	if len(in.Rules) != 1 {
		t.Fatalf("parse %q: got %d rules", expr, len(in.Rules))
	}
	return in.Rules[0].Condition
}

func TestPrecedence(t *testing.T) {
	// ! binds tightest, then +, then |, then ^.
	got := parseCondition(t, "A + B | C ^ !D")
	want := Xor{
		L: Or{L: And{L: Fact{"A"}, R: Fact{"B"}}, R: Fact{"C"}},
		R: Not{X: Fact{"D"}},
	}
	if diff := cmp.Diff(Expr(want), got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestLeftAssociativity(t *testing.T) {
	got := parseCondition(t, "A ^ B ^ C")
	want := Xor{L: Xor{L: Fact{"A"}, R: Fact{"B"}}, R: Fact{"C"}}
	if diff := cmp.Diff(Expr(want), got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	got := parseCondition(t, "A + (B | C)")
	want := And{L: Fact{"A"}, R: Or{L: Fact{"B"}, R: Fact{"C"}}}
	if diff := cmp.Diff(Expr(want), got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestDoubleNegation(t *testing.T) {
	got := parseCondition(t, "!!A")
	want := Not{X: Not{X: Fact{"A"}}}
	if diff := cmp.Diff(Expr(want), got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestNegatedGroup(t *testing.T) {
	got := parseCondition(t, "!(A + B)")
	want := Not{X: And{L: Fact{"A"}, R: Fact{"B"}}}
	if diff := cmp.Diff(Expr(want), got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRuleKindsAndIDs(t *testing.T) {
	in, err := Parse("A => B\n\nC <=> D\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(in.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(in.Rules))
	}
	if in.Rules[0].Biconditional || !in.Rules[1].Biconditional {
		t.Errorf("biconditional flags: %v, %v", in.Rules[0].Biconditional, in.Rules[1].Biconditional)
	}
	// IDs are the source line numbers, blank line included.
	if in.Rules[0].ID != 1 || in.Rules[1].ID != 3 {
		t.Errorf("rule IDs %d, %d, want 1, 3", in.Rules[0].ID, in.Rules[1].ID)
	}
}

func TestInitialFactsSortedDeduplicated(t *testing.T) {
	in, err := Parse("A => B\n=CBA\n=AC\n?B")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, in.InitialFacts); diff != "" {
		t.Errorf("initial facts mismatch (-want +got):\n%s", diff)
	}
}

func TestQueriesKeepSourceOrder(t *testing.T) {
	in, err := Parse("A => B\n=A\n?CAB\n?A")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"C", "A", "B"}, in.Queries); diff != "" {
		t.Errorf("queries mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyInitialFactsLine(t *testing.T) {
	in, err := Parse("A => B\n=\n?B")
	if err != nil {
		t.Fatal(err)
	}
	if len(in.InitialFacts) != 0 {
		t.Errorf("got initial facts %v, want none", in.InitialFacts)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"chained implication", "A => B => C"},
		{"two biconditionals", "A <=> B <=> C"},
		{"missing operand", "A + => B"},
		{"unmatched paren", "(A + B => C"},
		{"missing conclusion", "A =>"},
		{"connective inside parens", "(A => B) => C"},
		{"no connective", "A + B"},
		{"empty query", "A => B\n?"},
		{"operator in initial line", "=A+B"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.input)
			var syn *experr.SyntaxError
			if !errors.As(err, &syn) {
				t.Fatalf("got %v, want SyntaxError", err)
			}
		})
	}
}

func TestExprString(t *testing.T) {
	in, err := Parse("A + !B | C => D\n")
	if err != nil {
		t.Fatal(err)
	}
	if got := in.Rules[0].String(); got != "(A + !B) | C => D" {
		t.Errorf("String() = %q", got)
	}
}

func TestConcludedLeaves(t *testing.T) {
	tests := []struct {
		expr string
		want []string
	}{
		{"A", []string{"A"}},
		{"!A", []string{"!A"}},
		{"A + B", []string{"A", "B"}},
		{"A | !B", []string{"A", "!B"}},
		{"A ^ B", []string{"A", "B"}},
		{"!(A + B)", nil},
	}
	for _, tc := range tests {
		in, err := Parse("Z => " + tc.expr)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.expr, err)
		}
		got := ConcludedLeaves(in.Rules[0].Conclusion)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("ConcludedLeaves(%q) mismatch (-want +got):\n%s", tc.expr, diff)
		}
	}
}
