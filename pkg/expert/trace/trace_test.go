package trace

import (
	"strings"
	"testing"

	"github.com/andrijajovanovic98/expert-system/pkg/expert/engine"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/graph"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/parser"
)

func setup(t *testing.T, text string) (*graph.Graph, *engine.Engine) {
	t.Helper()
	in, err := parser.Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	g, err := graph.Build(in.Rules, in.InitialFacts)
	if err != nil {
		t.Fatal(err)
	}
	return g, engine.New(g, in.InitialFacts)
}

func TestMarker(t *testing.T) {
	tests := []struct {
		v    engine.TruthValue
		want string
	}{
		{engine.True, "✓"},
		{engine.False, "✗"},
		{engine.Undetermined, "?"},
	}
	for _, tc := range tests {
		if got := Marker(tc.v, false); got != tc.want {
			t.Errorf("Marker(%s) = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestFormal(t *testing.T) {
	in, err := parser.Parse("A + !B | C ^ D => E\nA <=> B\n")
	if err != nil {
		t.Fatal(err)
	}
	if got := Formal(in.Rules[0].Condition); got != "(((A ∧ ¬B) ∨ C) ⊕ D)" {
		t.Errorf("Formal = %q", got)
	}
	if got := FormalRule(in.Rules[0]); !strings.Contains(got, "⇒ E") {
		t.Errorf("FormalRule = %q", got)
	}
	if got := FormalRule(in.Rules[1]); got != "A ⇔ B" {
		t.Errorf("FormalRule = %q", got)
	}
}

func TestExplainChain(t *testing.T) {
	g, eng := setup(t, "A => B\nB => C\n=A\n?C")
	ex, err := New(g, eng).Explain("C")
	if err != nil {
		t.Fatal(err)
	}
	if ex.Value != engine.True {
		t.Fatalf("C = %s, want TRUE", ex.Value)
	}

	var b strings.Builder
	ex.Render(&b, false)
	out := b.String()
	for _, want := range []string{
		"Why C is TRUE",
		"rule 2 fires, concluding C",
		"rule 1 fires, concluding B",
		"A is an initial fact (axiom)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExplainClosedWorld(t *testing.T) {
	g, eng := setup(t, "A => B\n?B")
	ex, err := New(g, eng).Explain("B")
	if err != nil {
		t.Fatal(err)
	}
	if ex.Value != engine.False {
		t.Fatalf("B = %s, want FALSE", ex.Value)
	}

	var b strings.Builder
	ex.Render(&b, false)
	if !strings.Contains(b.String(), "defaults to FALSE (closed world)") {
		t.Errorf("output missing closed-world step:\n%s", b.String())
	}
}

func TestExplainNegatedConclusion(t *testing.T) {
	g, eng := setup(t, "A => !B\n=A\n?B")
	ex, err := New(g, eng).Explain("B")
	if err != nil {
		t.Fatal(err)
	}
	if ex.Value != engine.False {
		t.Fatalf("B = %s, want FALSE", ex.Value)
	}

	var b strings.Builder
	ex.Render(&b, false)
	if !strings.Contains(b.String(), "concluding ¬B") {
		t.Errorf("output missing negated conclusion step:\n%s", b.String())
	}
}

func TestExplainCycle(t *testing.T) {
	g, eng := setup(t, "A => B\nB => A\n?A")
	ex, err := New(g, eng).Explain("A")
	if err != nil {
		t.Fatal(err)
	}
	if ex.Value != engine.False {
		t.Fatalf("A = %s, want FALSE", ex.Value)
	}
	if len(ex.Cycles) == 0 {
		t.Error("no cycle attached to explanation")
	}
}

func TestExplainContradiction(t *testing.T) {
	g, eng := setup(t, "A => B\nA => !B\n=A\n?B")
	if _, err := New(g, eng).Explain("B"); err == nil {
		t.Error("contradiction not surfaced")
	}
}
