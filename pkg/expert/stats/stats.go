// Package stats computes rule-set metrics: operator usage, per-rule
// complexity, nesting depth and fact dependencies.
package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/andrijajovanovic98/expert-system/pkg/expert/graph"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/parser"
)

// RuleScore pairs a rule with its complexity (total operator count).
type RuleScore struct {
	Line  int    `json:"line"`
	Rule  string `json:"rule"`
	Score int    `json:"score"`
}

// Report holds the computed metrics for one rule set.
type Report struct {
	TotalRules     int                 `json:"total_rules"`
	Biconditional  int                 `json:"biconditional_rules"`
	Operators      map[string]int      `json:"operators"`
	AvgComplexity  float64             `json:"avg_complexity"`
	MaxComplexity  int                 `json:"max_complexity"`
	MinComplexity  int                 `json:"min_complexity"`
	MaxDepth       int                 `json:"max_depth"`
	InitialFacts   []string            `json:"initial_facts"`
	FactsUsed      []string            `json:"facts_used"`
	FactsConcluded []string            `json:"facts_concluded"`
	Dependencies   map[string][]string `json:"dependencies"`
	MostComplex    []RuleScore         `json:"most_complex"`
}

// Analyzer computes metrics over a parsed rule set and its graph.
type Analyzer struct {
	rules   []*parser.Rule
	g       *graph.Graph
	initial []string
}

// New creates an analyzer.
func New(rules []*parser.Rule, g *graph.Graph, initialFacts []string) *Analyzer {
	return &Analyzer{rules: rules, g: g, initial: initialFacts}
}

// Analyze computes the full report.
func (a *Analyzer) Analyze() Report {
	r := Report{
		TotalRules:   len(a.rules),
		Operators:    make(map[string]int),
		InitialFacts: append([]string(nil), a.initial...),
		Dependencies: make(map[string][]string),
	}

	used := make(map[string]struct{})
	concluded := make(map[string]struct{})
	var scores []RuleScore
	total := 0

	for _, rule := range a.rules {
		if rule.Biconditional {
			r.Biconditional++
		}
		ops := countOperators(rule.Condition)
		addCounts(r.Operators, ops)
		conclOps := countOperators(rule.Conclusion)
		addCounts(r.Operators, conclOps)
		if rule.Biconditional {
			r.Operators["IFF (<=>)"]++
		} else {
			r.Operators["IMPLIES (=>)"]++
		}

		score := sumCounts(ops) + sumCounts(conclOps)
		scores = append(scores, RuleScore{Line: rule.ID, Rule: rule.String(), Score: score})
		total += score

		if d := depth(rule.Condition); d > r.MaxDepth {
			r.MaxDepth = d
		}
		if d := depth(rule.Conclusion); d > r.MaxDepth {
			r.MaxDepth = d
		}

		for _, f := range parser.Facts(rule.Condition) {
			used[f] = struct{}{}
		}
		for _, f := range parser.Facts(rule.Conclusion) {
			concluded[f] = struct{}{}
		}
	}

	if len(scores) > 0 {
		r.AvgComplexity = float64(total) / float64(len(scores))
		r.MinComplexity = scores[0].Score
		for _, s := range scores {
			if s.Score > r.MaxComplexity {
				r.MaxComplexity = s.Score
			}
			if s.Score < r.MinComplexity {
				r.MinComplexity = s.Score
			}
		}
		sorted := append([]RuleScore(nil), scores...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
		if len(sorted) > 5 {
			sorted = sorted[:5]
		}
		r.MostComplex = sorted
	}

	r.FactsUsed = sortedKeys(used)
	r.FactsConcluded = sortedKeys(concluded)

	for _, f := range a.g.Facts() {
		if deps := a.g.DependencyChain(f); len(deps) > 0 {
			r.Dependencies[f] = deps
		}
	}
	return r
}

// WriteText renders the report as the human-readable statistics block.
func (r Report) WriteText(w io.Writer) {
	line := strings.Repeat("-", 70)
	fmt.Fprintf(w, "RULE SET STATISTICS\n%s\n", line)
	fmt.Fprintf(w, "Total rules:            %d\n", r.TotalRules)
	fmt.Fprintf(w, "Biconditional rules:    %d\n", r.Biconditional)
	fmt.Fprintf(w, "Regular rules:          %d\n\n", r.TotalRules-r.Biconditional)

	fmt.Fprintf(w, "Initial facts:          %s\n", orNone(r.InitialFacts))
	fmt.Fprintf(w, "Facts used:             %d (%s)\n", len(r.FactsUsed), orNone(r.FactsUsed))
	fmt.Fprintf(w, "Facts concluded:        %d (%s)\n\n", len(r.FactsConcluded), orNone(r.FactsConcluded))

	fmt.Fprintf(w, "OPERATORS USED\n%s\n", line)
	for _, op := range sortedByCount(r.Operators) {
		fmt.Fprintf(w, "  %-20s %3d times\n", op, r.Operators[op])
	}
	fmt.Fprintln(w)

	if r.TotalRules > 0 {
		fmt.Fprintf(w, "COMPLEXITY\n%s\n", line)
		fmt.Fprintf(w, "Average complexity:     %.2f\n", r.AvgComplexity)
		fmt.Fprintf(w, "Maximum complexity:     %d\n", r.MaxComplexity)
		fmt.Fprintf(w, "Minimum complexity:     %d\n", r.MinComplexity)
		fmt.Fprintf(w, "Maximum nesting depth:  %d\n\n", r.MaxDepth)

		fmt.Fprintf(w, "MOST COMPLEX RULES\n%s\n", line)
		for i, s := range r.MostComplex {
			fmt.Fprintf(w, "  %d. [%d] %s\n", i+1, s.Score, s.Rule)
		}
		fmt.Fprintln(w)
	}

	if len(r.Dependencies) > 0 {
		fmt.Fprintf(w, "FACT DEPENDENCIES\n%s\n", line)
		facts := sortedKeysOf(r.Dependencies)
		for _, f := range facts {
			fmt.Fprintf(w, "  %s depends on: %s\n", f, strings.Join(r.Dependencies[f], ", "))
		}
	}
}

var operatorNames = map[string]string{
	"!": "NOT (!)",
	"+": "AND (+)",
	"|": "OR (|)",
	"^": "XOR (^)",
}

func countOperators(e parser.Expr) map[string]int {
	counts := make(map[string]int)
	var walk func(parser.Expr)
	walk = func(e parser.Expr) {
		switch v := e.(type) {
		case parser.Fact:
		case parser.Not:
			counts[operatorNames["!"]]++
			walk(v.X)
		case parser.And:
			counts[operatorNames["+"]]++
			walk(v.L)
			walk(v.R)
		case parser.Or:
			counts[operatorNames["|"]]++
			walk(v.L)
			walk(v.R)
		case parser.Xor:
			counts[operatorNames["^"]]++
			walk(v.L)
			walk(v.R)
		}
	}
	walk(e)
	return counts
}

func depth(e parser.Expr) int {
	switch v := e.(type) {
	case parser.Fact:
		return 0
	case parser.Not:
		return 1 + depth(v.X)
	case parser.And:
		return 1 + max(depth(v.L), depth(v.R))
	case parser.Or:
		return 1 + max(depth(v.L), depth(v.R))
	case parser.Xor:
		return 1 + max(depth(v.L), depth(v.R))
	default:
		return 0
	}
}

func addCounts(dst, src map[string]int) {
	for k, v := range src {
		dst[k] += v
	}
}

func sumCounts(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeysOf(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedByCount(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if m[out[i]] != m[out[j]] {
			return m[out[i]] > m[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

func orNone(list []string) string {
	if len(list) == 0 {
		return "None"
	}
	return strings.Join(list, ", ")
}
