// Package graph holds the knowledge graph: the bidirectional index of
// which rules conclude which facts and which rules use which facts in
// their conditions. The graph is built once per input and is read-only
// during inference.
package graph

import (
	"sort"

	"github.com/andrijajovanovic98/expert-system/pkg/expert/experr"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/parser"
)

// Edge is one logical implication registered in the graph. A
// biconditional rule contributes two edges, forward and reversed, both
// pointing at the same Rule so diagnostics name a single source line.
type Edge struct {
	Rule     *parser.Rule
	Reversed bool
}

// Condition returns the condition side of the edge's direction.
func (e Edge) Condition() parser.Expr {
	if e.Reversed {
		return e.Rule.Conclusion
	}
	return e.Rule.Condition
}

// Conclusion returns the conclusion side of the edge's direction.
func (e Edge) Conclusion() parser.Expr {
	if e.Reversed {
		return e.Rule.Condition
	}
	return e.Rule.Conclusion
}

// Node is one fact in the graph. Initial records whether the fact was
// asserted true in the loaded input; the engine keeps its own mutable
// copy of the initial set, this flag is load-time state for display
// and export.
type Node struct {
	Name    string
	Initial bool
}

// Graph indexes facts and rules both ways. Concluding keys include
// negated forms ("!A") for rules that conclude a negation; nodes and
// using keys are always plain letters.
type Graph struct {
	nodes      map[string]*Node
	concluding map[string][]Edge
	using      map[string][]Edge
	rules      []*parser.Rule
}

// Build walks every rule's condition and conclusion trees and
// registers the edges. A rule direction whose conclusion yields no
// concluded fact leaves fails with a SemanticError.
func Build(rules []*parser.Rule, initialFacts []string) (*Graph, error) {
	g := &Graph{
		nodes:      make(map[string]*Node),
		concluding: make(map[string][]Edge),
		using:      make(map[string][]Edge),
		rules:      rules,
	}

	for _, f := range initialFacts {
		g.ensureNode(f)
		g.nodes[f].Initial = true
	}

	for _, rule := range rules {
		for _, f := range rule.Facts() {
			g.ensureNode(f)
		}
		if err := g.linkDirection(Edge{Rule: rule}); err != nil {
			return nil, err
		}
		if rule.Biconditional {
			if err := g.linkDirection(Edge{Rule: rule, Reversed: true}); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

func (g *Graph) ensureNode(fact string) {
	if _, ok := g.nodes[fact]; !ok {
		g.nodes[fact] = &Node{Name: fact}
	}
}

func (g *Graph) linkDirection(e Edge) error {
	leaves := parser.ConcludedLeaves(e.Conclusion())
	if len(leaves) == 0 {
		return &experr.SemanticError{
			RuleLine: e.Rule.ID,
			Msg:      "conclusion concludes no facts",
		}
	}
	for _, leaf := range leaves {
		g.concluding[leaf] = append(g.concluding[leaf], e)
	}
	for _, f := range parser.Facts(e.Condition()) {
		g.using[f] = append(g.using[f], e)
	}
	return nil
}

// Concluding returns the edges that can conclude fact, which may be a
// plain letter or a negated form like "!A".
func (g *Graph) Concluding(fact string) []Edge { return g.concluding[fact] }

// Using returns the edges whose condition references fact. Not needed
// by the solver; retained for the statistics and export collaborators.
func (g *Graph) Using(fact string) []Edge { return g.using[fact] }

// Node returns the node for a plain fact letter, or nil.
func (g *Graph) Node(fact string) *Node { return g.nodes[fact] }

// Has reports whether the fact exists in the graph.
func (g *Graph) Has(fact string) bool { return g.nodes[fact] != nil }

// Facts returns all fact letters in the graph, sorted.
func (g *Graph) Facts() []string {
	out := make([]string, 0, len(g.nodes))
	for f := range g.nodes {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Rules returns the rules the graph was built from, in source order.
func (g *Graph) Rules() []*parser.Rule { return g.rules }

// DependencyChain returns every fact the given fact transitively
// depends on through the conditions of its concluding rules, sorted.
func (g *Graph) DependencyChain(fact string) []string {
	visited := make(map[string]struct{})
	queue := []string{fact}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, ok := visited[current]; ok {
			continue
		}
		visited[current] = struct{}{}

		var edges []Edge
		edges = append(edges, g.concluding[current]...)
		edges = append(edges, g.concluding["!"+current]...)
		for _, e := range edges {
			for _, dep := range parser.Facts(e.Condition()) {
				if _, ok := visited[dep]; !ok {
					queue = append(queue, dep)
				}
			}
		}
	}
	delete(visited, fact)
	out := make([]string, 0, len(visited))
	for f := range visited {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
