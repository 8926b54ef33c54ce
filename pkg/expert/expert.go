// Package expert ties the lexer, parser, knowledge graph and
// inference engine into one loadable system.
package expert

import (
	"fmt"

	"github.com/andrijajovanovic98/expert-system/pkg/expert/engine"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/graph"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/parser"
)

// System is a loaded rule set with its knowledge graph and a live
// inference session.
type System struct {
	Rules        []*parser.Rule
	Graph        *graph.Graph
	InitialFacts []string // as loaded from the input
	Queries      []string

	eng *engine.Engine
}

// Load parses the input text, builds the knowledge graph and wires an
// inference engine. Parse-time errors abort before any inference runs.
func Load(text string) (*System, error) {
	in, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	g, err := graph.Build(in.Rules, in.InitialFacts)
	if err != nil {
		return nil, err
	}
	return &System{
		Rules:        in.Rules,
		Graph:        g,
		InitialFacts: in.InitialFacts,
		Queries:      in.Queries,
		eng:          engine.New(g, in.InitialFacts),
	}, nil
}

// Engine exposes the live inference session.
func (s *System) Engine() *engine.Engine { return s.eng }

// Resolve determines the truth value of one fact.
func (s *System) Resolve(fact string) (engine.TruthValue, error) {
	return s.eng.Resolve(fact)
}

// ResolveAll resolves every query target from the loaded input.
// Contradictions are reported per fact; other queries proceed.
func (s *System) ResolveAll() map[string]engine.Result {
	return s.eng.ResolveAll(s.Queries)
}

// AddInitialFact asserts a fact true for subsequent queries. All
// memoized results are invalidated.
func (s *System) AddInitialFact(fact string) error {
	return s.eng.AddInitialFact(fact)
}

// RemoveInitialFact retracts a fact. All memoized results are
// invalidated.
func (s *System) RemoveInitialFact(fact string) error {
	return s.eng.RemoveInitialFact(fact)
}

// CurrentFacts returns the engine's current initial set, sorted.
func (s *System) CurrentFacts() []string { return s.eng.InitialFacts() }

// ResetFacts restores the initial facts loaded from the input and
// discards the session state.
func (s *System) ResetFacts() {
	s.eng = engine.New(s.Graph, s.InitialFacts)
}

// Session creates an independent engine over the same graph with an
// arbitrary initial set. Used for what-if evaluation without touching
// the system's own session.
func (s *System) Session(initialFacts []string) *engine.Engine {
	return engine.New(s.Graph, initialFacts)
}

// Summary renders the loaded rule and fact counts for the CLI header.
func (s *System) Summary() string {
	facts := "None"
	if len(s.InitialFacts) > 0 {
		facts = ""
		for i, f := range s.InitialFacts {
			if i > 0 {
				facts += ", "
			}
			facts += f
		}
	}
	return fmt.Sprintf("Loaded %d rule(s)\nInitial facts: %s", len(s.Rules), facts)
}
