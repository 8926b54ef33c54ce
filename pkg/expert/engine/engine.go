// Package engine implements three-valued backward chaining over the
// knowledge graph.
//
// A query starts at the target fact and recursively proves the
// conditions of every rule that could conclude it. Initial facts are
// axioms. A fact with no concluding rule is FALSE (closed world).
// UNDETERMINED exists only while a cycle is being broken: a fact
// re-encountered on the active resolution stack yields UNDETERMINED to
// its caller, and a cycle-tainted result collapses to FALSE at the
// public Resolve boundary.
package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andrijajovanovic98/expert-system/pkg/expert/experr"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/graph"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/parser"
)

// TruthValue is the resolved state of a fact.
type TruthValue int

const (
	False TruthValue = iota
	True
	Undetermined
)

func (v TruthValue) String() string {
	switch v {
	case False:
		return "FALSE"
	case True:
		return "TRUE"
	default:
		return "UNDETERMINED"
	}
}

// Cycle records one detected circular dependency, from the first
// occurrence of the re-entered fact to its re-entry.
type Cycle struct {
	Path []string
}

func (c Cycle) String() string {
	return strings.Join(c.Path, " -> ")
}

// Result is the outcome of resolving one fact in a batch. Err carries
// a per-fact contradiction; the rest of the batch proceeds.
type Result struct {
	Value TruthValue
	Fired []*parser.Rule
	Err   error
}

// Engine resolves facts against an immutable graph. The memo cache and
// fired-rule records live for one session: any mutation of the initial
// set invalidates them.
type Engine struct {
	g       *graph.Graph
	initial map[string]bool

	memo       map[string]TruthValue
	inProgress map[string]bool
	stack      []string
	fired      map[string][]*parser.Rule
	cycles     []Cycle
	cycleSeen  map[string]bool
}

// New creates an engine over the graph with the given initial facts.
func New(g *graph.Graph, initialFacts []string) *Engine {
	e := &Engine{
		g:       g,
		initial: make(map[string]bool, len(initialFacts)),
	}
	for _, f := range initialFacts {
		e.initial[f] = true
	}
	e.invalidate()
	return e
}

// Resolve determines the truth value of one fact. A contradiction is
// returned as a *experr.ContradictionError; the engine stays usable
// for other facts.
func (e *Engine) Resolve(fact string) (TruthValue, error) {
	if !validFact(fact) {
		return Undetermined, fmt.Errorf("resolve %q: %w", fact, experr.ErrInvalidFact)
	}
	v, err := e.resolve(fact)
	if err != nil {
		return Undetermined, err
	}
	if v == Undetermined {
		// The fact was caught in a cycle and never proven: the
		// default-unproven policy applies. Memoized so the answer is
		// stable for the rest of the session.
		v = False
		e.memo[fact] = False
	}
	return v, nil
}

// ResolveAll resolves a batch of facts. Contradictions are reported
// per fact so unrelated queries still resolve.
func (e *Engine) ResolveAll(facts []string) map[string]Result {
	out := make(map[string]Result, len(facts))
	for _, f := range facts {
		v, err := e.Resolve(f)
		out[f] = Result{Value: v, Fired: e.Fired(f), Err: err}
	}
	return out
}

// AddInitialFact asserts a fact true and invalidates all memoized
// results.
func (e *Engine) AddInitialFact(fact string) error {
	if !validFact(fact) {
		return fmt.Errorf("add %q: %w", fact, experr.ErrInvalidFact)
	}
	e.initial[fact] = true
	e.invalidate()
	return nil
}

// RemoveInitialFact retracts a fact and invalidates all memoized
// results.
func (e *Engine) RemoveInitialFact(fact string) error {
	if !validFact(fact) {
		return fmt.Errorf("remove %q: %w", fact, experr.ErrInvalidFact)
	}
	delete(e.initial, fact)
	e.invalidate()
	return nil
}

// Reset clears the memo cache and all recorded diagnostics, keeping
// the current initial facts.
func (e *Engine) Reset() { e.invalidate() }

// InitialFacts returns the current initial set, sorted.
func (e *Engine) InitialFacts() []string {
	out := make([]string, 0, len(e.initial))
	for f := range e.initial {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// IsInitial reports whether the fact is currently asserted as an
// axiom.
func (e *Engine) IsInitial(fact string) bool { return e.initial[fact] }

// Fired returns the rules whose firing determined the fact's value
// during this session, in evaluation order.
func (e *Engine) Fired(fact string) []*parser.Rule { return e.fired[fact] }

// Cycles returns the circular dependencies detected this session.
func (e *Engine) Cycles() []Cycle { return e.cycles }

func (e *Engine) invalidate() {
	e.memo = make(map[string]TruthValue)
	e.inProgress = make(map[string]bool)
	e.stack = e.stack[:0]
	e.fired = make(map[string][]*parser.Rule)
	e.cycles = nil
	e.cycleSeen = make(map[string]bool)
}

func (e *Engine) resolve(fact string) (TruthValue, error) {
	if e.initial[fact] {
		return True, nil
	}
	if e.inProgress[fact] {
		e.recordCycle(fact)
		return Undetermined, nil
	}
	if v, ok := e.memo[fact]; ok {
		return v, nil
	}

	e.inProgress[fact] = true
	e.stack = append(e.stack, fact)
	defer func() {
		delete(e.inProgress, fact)
		e.stack = e.stack[:len(e.stack)-1]
	}()

	positive := e.g.Concluding(fact)
	negative := e.g.Concluding("!" + fact)
	if len(positive) == 0 && len(negative) == 0 {
		e.memo[fact] = False
		return False, nil
	}

	var (
		firedRules []*parser.Rule
		negRules   []*parser.Rule
		tainted    bool
	)
	for _, edge := range positive {
		v, err := e.eval(edge.Condition())
		if err != nil {
			return Undetermined, err
		}
		switch v {
		case True:
			firedRules = append(firedRules, edge.Rule)
		case Undetermined:
			tainted = true
		}
	}
	for _, edge := range negative {
		v, err := e.eval(edge.Condition())
		if err != nil {
			return Undetermined, err
		}
		switch v {
		case True:
			negRules = append(negRules, edge.Rule)
		case Undetermined:
			tainted = true
		}
	}

	if len(firedRules) > 0 && len(negRules) > 0 {
		return Undetermined, &experr.ContradictionError{
			Fact:      fact,
			TrueRules: ruleLines(firedRules),
			NegRules:  ruleLines(negRules),
		}
	}
	if len(firedRules) > 0 {
		e.fired[fact] = firedRules
		e.memo[fact] = True
		return True, nil
	}
	if len(negRules) > 0 {
		// Explicitly concluded false.
		e.fired[fact] = negRules
		e.memo[fact] = False
		return False, nil
	}
	if tainted {
		// Unproven so far, but a condition depended on an active
		// cycle; not memoized, the caller decides at its boundary.
		return Undetermined, nil
	}
	e.memo[fact] = False
	return False, nil
}

// eval evaluates a condition tree under three-valued semantics,
// resolving fact leaves recursively.
func (e *Engine) eval(expr parser.Expr) (TruthValue, error) {
	switch v := expr.(type) {
	case parser.Fact:
		return e.resolve(v.Name)
	case parser.Not:
		x, err := e.eval(v.X)
		if err != nil {
			return Undetermined, err
		}
		return evalNot(x), nil
	case parser.And:
		l, r, err := e.evalPair(v.L, v.R)
		if err != nil {
			return Undetermined, err
		}
		return evalAnd(l, r), nil
	case parser.Or:
		l, r, err := e.evalPair(v.L, v.R)
		if err != nil {
			return Undetermined, err
		}
		return evalOr(l, r), nil
	case parser.Xor:
		l, r, err := e.evalPair(v.L, v.R)
		if err != nil {
			return Undetermined, err
		}
		return evalXor(l, r), nil
	default:
		return Undetermined, fmt.Errorf("unknown expression node %T", expr)
	}
}

func (e *Engine) evalPair(l, r parser.Expr) (TruthValue, TruthValue, error) {
	lv, err := e.eval(l)
	if err != nil {
		return Undetermined, Undetermined, err
	}
	rv, err := e.eval(r)
	if err != nil {
		return Undetermined, Undetermined, err
	}
	return lv, rv, nil
}

func evalNot(v TruthValue) TruthValue {
	switch v {
	case True:
		return False
	case False:
		return True
	default:
		return Undetermined
	}
}

func evalAnd(l, r TruthValue) TruthValue {
	if l == False || r == False {
		return False
	}
	if l == True && r == True {
		return True
	}
	return Undetermined
}

func evalOr(l, r TruthValue) TruthValue {
	if l == True || r == True {
		return True
	}
	if l == False && r == False {
		return False
	}
	return Undetermined
}

func evalXor(l, r TruthValue) TruthValue {
	if l == Undetermined || r == Undetermined {
		return Undetermined
	}
	if l != r {
		return True
	}
	return False
}

func (e *Engine) recordCycle(fact string) {
	start := 0
	for i, f := range e.stack {
		if f == fact {
			start = i
			break
		}
	}
	path := make([]string, 0, len(e.stack)-start+1)
	path = append(path, e.stack[start:]...)
	path = append(path, fact)
	c := Cycle{Path: path}
	if key := c.String(); !e.cycleSeen[key] {
		e.cycleSeen[key] = true
		e.cycles = append(e.cycles, c)
	}
}

func ruleLines(rules []*parser.Rule) []int {
	out := make([]int, len(rules))
	for i, r := range rules {
		out[i] = r.ID
	}
	return out
}

func validFact(fact string) bool {
	return len(fact) == 1 && fact[0] >= 'A' && fact[0] <= 'Z'
}

// EvalExpr evaluates an arbitrary condition expression against the
// engine's current state, resolving leaves through the engine. Used by
// the trace and export collaborators.
func (e *Engine) EvalExpr(expr parser.Expr) (TruthValue, error) {
	return e.eval(expr)
}
