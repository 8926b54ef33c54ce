// Package export builds a justification graph for a set of queries and
// writes it in DOT (Graphviz) or JSON form.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/andrijajovanovic98/expert-system/pkg/expert/engine"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/graph"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/parser"
)

// Node is one fact in the justification graph.
type Node struct {
	Fact       string   `json:"id"`
	Value      string   `json:"value"`
	Type       string   `json:"type"` // initial, derived or query
	Supporting []string `json:"supporting_facts"`
	RulesUsed  []string `json:"rules_used"`
}

// Edge records that a supporting fact feeds a derived fact through a
// rule.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Rule string `json:"rule"`
}

// Meta describes the exported graph.
type Meta struct {
	TotalRules   int      `json:"total_rules"`
	InitialFacts []string `json:"initial_facts"`
	TotalNodes   int      `json:"total_nodes"`
}

// Justification is the provenance graph for a batch of queries.
type Justification struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	Meta  Meta   `json:"metadata"`
}

type builder struct {
	g        *graph.Graph
	eng      *engine.Engine
	nodes    map[string]*Node
	edges    []Edge
	edgeSeen map[Edge]bool
	seen     map[string]bool
}

// Build traces the queries through the engine and collects, for every
// reachable fact, the rules that fired and the facts that supported
// them.
func Build(g *graph.Graph, eng *engine.Engine, queries []string) *Justification {
	b := &builder{
		g:        g,
		eng:      eng,
		nodes:    make(map[string]*Node),
		edgeSeen: make(map[Edge]bool),
		seen:     make(map[string]bool),
	}

	for _, f := range eng.InitialFacts() {
		b.nodes[f] = &Node{Fact: f, Value: engine.True.String(), Type: "initial"}
	}
	for _, q := range queries {
		b.trace(q, true)
	}

	j := &Justification{
		Edges: b.edges,
		Meta: Meta{
			TotalRules:   len(g.Rules()),
			InitialFacts: eng.InitialFacts(),
			TotalNodes:   len(b.nodes),
		},
	}
	for _, n := range b.nodes {
		sort.Strings(n.Supporting)
		j.Nodes = append(j.Nodes, *n)
	}
	sort.Slice(j.Nodes, func(i, k int) bool { return j.Nodes[i].Fact < j.Nodes[k].Fact })
	return j
}

func (b *builder) trace(fact string, isQuery bool) {
	node, ok := b.nodes[fact]
	if !ok {
		value := engine.Undetermined
		if v, err := b.eng.Resolve(fact); err == nil {
			value = v
		}
		nodeType := "derived"
		if isQuery {
			nodeType = "query"
		}
		node = &Node{Fact: fact, Value: value.String(), Type: nodeType}
		b.nodes[fact] = node
	} else if isQuery {
		node.Type = "query"
	}

	if b.seen[fact] {
		return
	}
	b.seen[fact] = true

	if b.eng.IsInitial(fact) {
		return
	}

	var edges []graph.Edge
	edges = append(edges, b.g.Concluding(fact)...)
	edges = append(edges, b.g.Concluding("!"+fact)...)
	for _, e := range edges {
		cond, err := b.eng.EvalExpr(e.Condition())
		if err != nil || cond != engine.True {
			continue
		}
		ruleStr := e.Rule.String()
		node.RulesUsed = append(node.RulesUsed, ruleStr)
		for _, support := range parser.Facts(e.Condition()) {
			node.Supporting = appendUnique(node.Supporting, support)
			edge := Edge{From: support, To: fact, Rule: ruleStr}
			if !b.edgeSeen[edge] {
				b.edgeSeen[edge] = true
				b.edges = append(b.edges, edge)
			}
			b.trace(support, false)
		}
	}
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

// WriteJSON writes the graph as indented JSON.
func (j *Justification) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal justification graph: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// WriteDOT writes the graph in Graphviz DOT format. Initial facts are
// light blue boxes, query nodes double octagons colored by outcome.
func (j *Justification) WriteDOT(w io.Writer) error {
	var b strings.Builder
	b.WriteString("digraph JustificationGraph {\n")
	b.WriteString("  rankdir=BT;\n")
	b.WriteString("  node [shape=box, style=rounded];\n\n")

	for _, n := range j.Nodes {
		color, shape := "white", "box"
		switch n.Type {
		case "initial":
			color = "lightblue"
		case "query":
			shape = "doubleoctagon"
			switch n.Value {
			case engine.True.String():
				color = "lightgreen"
			case engine.False.String():
				color = "lightcoral"
			default:
				color = "lightyellow"
			}
		}
		fmt.Fprintf(&b, "  %q [label=\"%s\\n%s\", fillcolor=%s, style=filled, shape=%s];\n",
			n.Fact, n.Fact, n.Value, color, shape)
	}
	b.WriteString("\n")
	for _, e := range j.Edges {
		fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", e.From, e.To, e.Rule)
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}
