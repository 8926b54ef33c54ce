// Package trace explains why a fact resolved to its truth value,
// as an indented chain of reasoning steps in both natural language and
// formal notation.
package trace

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/andrijajovanovic98/expert-system/pkg/expert/engine"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/graph"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/parser"
)

var (
	trueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	falseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	undetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// Marker renders the result symbol for a truth value, optionally
// colored.
func Marker(v engine.TruthValue, color bool) string {
	var symbol string
	var style lipgloss.Style
	switch v {
	case engine.True:
		symbol, style = "✓", trueStyle
	case engine.False:
		symbol, style = "✗", falseStyle
	default:
		symbol, style = "?", undetStyle
	}
	if !color {
		return symbol
	}
	return style.Render(symbol)
}

// Formal renders an expression in formal logic notation.
func Formal(e parser.Expr) string {
	switch v := e.(type) {
	case parser.Fact:
		return v.Name
	case parser.Not:
		return "¬" + Formal(v.X)
	case parser.And:
		return fmt.Sprintf("(%s ∧ %s)", Formal(v.L), Formal(v.R))
	case parser.Or:
		return fmt.Sprintf("(%s ∨ %s)", Formal(v.L), Formal(v.R))
	case parser.Xor:
		return fmt.Sprintf("(%s ⊕ %s)", Formal(v.L), Formal(v.R))
	default:
		return "?"
	}
}

// FormalRule renders a rule in formal notation.
func FormalRule(r *parser.Rule) string {
	op := "⇒"
	if r.Biconditional {
		op = "⇔"
	}
	return fmt.Sprintf("%s %s %s", Formal(r.Condition), op, Formal(r.Conclusion))
}

// Step is one line of an explanation.
type Step struct {
	Depth int
	Text  string
}

// Explanation is the full reasoning chain for one query.
type Explanation struct {
	Fact   string
	Value  engine.TruthValue
	Steps  []Step
	Cycles []engine.Cycle
}

// Render writes the explanation, optionally with colored markers.
func (ex *Explanation) Render(w io.Writer, color bool) {
	fmt.Fprintf(w, "Why %s is %s %s\n", ex.Fact, ex.Value, Marker(ex.Value, color))
	for _, s := range ex.Steps {
		fmt.Fprintf(w, "%s• %s\n", strings.Repeat("  ", s.Depth), s.Text)
	}
	for _, c := range ex.Cycles {
		fmt.Fprintf(w, "  circular dependency: %s (broken, re-entered fact treated as unproven)\n", c)
	}
}

// Explainer traces the engine's reasoning for individual facts.
type Explainer struct {
	g   *graph.Graph
	eng *engine.Engine
}

// New creates an explainer bound to a graph and a live engine session.
func New(g *graph.Graph, eng *engine.Engine) *Explainer {
	return &Explainer{g: g, eng: eng}
}

// Explain resolves the fact and reconstructs the reasoning chain from
// the engine's memoized state. A contradiction is returned as the
// resolution error.
func (x *Explainer) Explain(fact string) (*Explanation, error) {
	before := len(x.eng.Cycles())
	value, err := x.eng.Resolve(fact)
	if err != nil {
		return nil, err
	}
	ex := &Explanation{Fact: fact, Value: value}
	x.explainFact(fact, 0, make(map[string]bool), ex)
	ex.Cycles = x.eng.Cycles()[before:]
	return ex, nil
}

func (x *Explainer) explainFact(fact string, depth int, visited map[string]bool, ex *Explanation) {
	add := func(text string) {
		ex.Steps = append(ex.Steps, Step{Depth: depth, Text: text})
	}
	if visited[fact] {
		add(fmt.Sprintf("%s: see above", fact))
		return
	}
	visited[fact] = true

	if x.eng.IsInitial(fact) {
		add(fmt.Sprintf("%s is an initial fact (axiom)", fact))
		return
	}

	positive := x.g.Concluding(fact)
	negative := x.g.Concluding("!" + fact)
	if len(positive) == 0 && len(negative) == 0 {
		add(fmt.Sprintf("no rule concludes %s, so it defaults to FALSE (closed world)", fact))
		return
	}

	x.explainEdges(fact, positive, "", depth, visited, ex)
	x.explainEdges(fact, negative, "¬", depth, visited, ex)
}

func (x *Explainer) explainEdges(fact string, edges []graph.Edge, neg string, depth int, visited map[string]bool, ex *Explanation) {
	add := func(text string) {
		ex.Steps = append(ex.Steps, Step{Depth: depth, Text: text})
	}
	for _, edge := range edges {
		cond, err := x.eng.EvalExpr(edge.Condition())
		if err != nil {
			add(fmt.Sprintf("rule %d (%s): condition could not be evaluated: %v", edge.Rule.ID, FormalRule(edge.Rule), err))
			continue
		}
		add(fmt.Sprintf("rule %d (%s): condition %s is %s", edge.Rule.ID, FormalRule(edge.Rule), Formal(edge.Condition()), cond))
		if cond == engine.True {
			if neg == "" {
				add(fmt.Sprintf("rule %d fires, concluding %s", edge.Rule.ID, fact))
			} else {
				add(fmt.Sprintf("rule %d fires, concluding ¬%s", edge.Rule.ID, fact))
			}
		}
		for _, dep := range parser.Facts(edge.Condition()) {
			x.explainFact(dep, depth+1, visited, ex)
		}
	}
}
