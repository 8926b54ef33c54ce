package expert

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/andrijajovanovic98/expert-system/pkg/expert/engine"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/experr"
)

const scenario = `# mixed rule base
C => E
A + B + C => D
A | B => C
A + !B => F
V ^ W => X
A + B => Y + Z
A + B <=> C

=ABG

?GVX
`

func TestScenario(t *testing.T) {
	sys, err := Load(scenario)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"A", "B", "G"}, sys.InitialFacts); diff != "" {
		t.Errorf("initial facts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"G", "V", "X"}, sys.Queries); diff != "" {
		t.Errorf("queries mismatch (-want +got):\n%s", diff)
	}

	results := sys.ResolveAll()
	want := map[string]engine.TruthValue{
		"G": engine.True,  // axiom
		"V": engine.False, // nothing concludes V
		"X": engine.False, // V ^ W is false ^ false
	}
	for fact, wantV := range want {
		res, ok := results[fact]
		if !ok {
			t.Errorf("%s missing from results", fact)
			continue
		}
		if res.Err != nil {
			t.Errorf("%s: %v", fact, res.Err)
			continue
		}
		if res.Value != wantV {
			t.Errorf("%s = %s, want %s", fact, res.Value, wantV)
		}
	}
}

func TestScenarioDerivedFacts(t *testing.T) {
	sys, err := Load(scenario)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]engine.TruthValue{
		"C": engine.True,  // A | B
		"D": engine.True,  // A + B + C
		"E": engine.True,  // C
		"F": engine.False, // A + !B fails, B is true
		"Y": engine.True,  // conjunctive conclusion of A + B
		"Z": engine.True,
	}
	for fact, wantV := range want {
		v, err := sys.Resolve(fact)
		if err != nil {
			t.Errorf("%s: %v", fact, err)
			continue
		}
		if v != wantV {
			t.Errorf("%s = %s, want %s", fact, v, wantV)
		}
	}
}

func TestContradictionSurfacesPerQuery(t *testing.T) {
	sys, err := Load("A => B\nA => !B\n=A\n?B")
	if err != nil {
		t.Fatal(err)
	}
	res := sys.ResolveAll()["B"]
	var contra *experr.ContradictionError
	if !errors.As(res.Err, &contra) {
		t.Fatalf("got %v, want ContradictionError", res.Err)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	if _, err := Load("A => B =>\n"); err == nil {
		t.Error("chained implication accepted")
	}
	if _, err := Load("A => !(B + C)\n=A\n?B"); err == nil {
		t.Error("empty conclusion accepted")
	}
}

func TestFactMutationAndReset(t *testing.T) {
	sys, err := Load("A => B\n=A\n?B")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := sys.Resolve("B"); v != engine.True {
		t.Fatalf("B = %s, want TRUE", v)
	}

	if err := sys.RemoveInitialFact("A"); err != nil {
		t.Fatal(err)
	}
	if v, _ := sys.Resolve("B"); v != engine.False {
		t.Errorf("B = %s after -A, want FALSE", v)
	}

	sys.ResetFacts()
	if v, _ := sys.Resolve("B"); v != engine.True {
		t.Errorf("B = %s after reset, want TRUE", v)
	}
	if diff := cmp.Diff([]string{"A"}, sys.CurrentFacts()); diff != "" {
		t.Errorf("current facts mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionIsIndependent(t *testing.T) {
	sys, err := Load("A => B\n?B")
	if err != nil {
		t.Fatal(err)
	}
	whatIf := sys.Session([]string{"A"})
	if v, _ := whatIf.Resolve("B"); v != engine.True {
		t.Errorf("what-if B = %s, want TRUE", v)
	}
	// The system's own session is untouched.
	if v, _ := sys.Resolve("B"); v != engine.False {
		t.Errorf("B = %s, want FALSE", v)
	}
}
