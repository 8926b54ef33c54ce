// Package experr defines the error taxonomy shared by the lexer,
// parser, knowledge graph and inference engine.
package experr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	ErrInvalidFact = errors.New("facts must be single uppercase letters (A-Z)")
	ErrNoQueries   = errors.New("no queries specified; use ?<FACTS> to specify queries")
)

// SyntaxError reports a malformed token or grammar violation with its
// source position. Any syntax error aborts the whole load.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// SemanticError reports input that parses but is meaningless, such as
// a rule whose conclusion concludes no facts.
type SemanticError struct {
	RuleLine int
	Msg      string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("semantic error in rule at line %d: %s", e.RuleLine, e.Msg)
}

// ContradictionError is raised during inference when satisfied rules
// force a fact to both TRUE and FALSE. It names the rule lines on both
// sides so the caller can report them.
type ContradictionError struct {
	Fact      string
	TrueRules []int // lines of rules concluding the fact
	NegRules  []int // lines of rules concluding its negation
}

func (e *ContradictionError) Error() string {
	return fmt.Sprintf("contradiction: fact %s is concluded TRUE by rule(s) at line(s) %s and FALSE by rule(s) at line(s) %s",
		e.Fact, joinLines(e.TrueRules), joinLines(e.NegRules))
}

func joinLines(lines []int) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = fmt.Sprint(l)
	}
	return strings.Join(parts, ", ")
}
