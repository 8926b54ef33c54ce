// Package parser builds rules, initial facts and query targets from
// the token stream.
//
// Expression precedence, highest to lowest: parentheses, !, +, |, ^.
// All binary operators are left-associative. => and <=> bind looser
// than everything else and exactly one of them may appear per rule
// line.
package parser

import (
	"fmt"
	"sort"

	"github.com/andrijajovanovic98/expert-system/pkg/expert/experr"
	"github.com/andrijajovanovic98/expert-system/pkg/expert/lexer"
)

// Input is the parsed form of one rule file.
type Input struct {
	Rules        []*Rule
	InitialFacts []string // sorted, deduplicated
	Queries      []string // source order, deduplicated
}

// Parse tokenizes and parses a whole input text. Any lexical or
// grammatical error aborts the load.
func Parse(text string) (*Input, error) {
	tokens, err := lexer.Tokenize(text)
	if err != nil {
		return nil, err
	}
	return ParseTokens(tokens)
}

// ParseTokens parses an already-tokenized input.
func ParseTokens(tokens []lexer.Token) (*Input, error) {
	in := &Input{}
	initials := make(map[string]struct{})
	queried := make(map[string]struct{})

	start := 0
	for i, tok := range tokens {
		if tok.Kind != lexer.EOL {
			continue
		}
		line := tokens[start:i]
		start = i + 1
		if len(line) == 0 {
			continue
		}
		switch line[0].Kind {
		case lexer.Initial:
			facts, err := identRun(line[1:], "initial facts")
			if err != nil {
				return nil, err
			}
			for _, f := range facts {
				initials[f] = struct{}{}
			}
		case lexer.Query:
			facts, err := identRun(line[1:], "query")
			if err != nil {
				return nil, err
			}
			if len(facts) == 0 {
				return nil, &experr.SyntaxError{
					Line:   line[0].Line,
					Column: line[0].Column,
					Msg:    "query line needs at least one fact",
				}
			}
			for _, f := range facts {
				if _, ok := queried[f]; !ok {
					queried[f] = struct{}{}
					in.Queries = append(in.Queries, f)
				}
			}
		default:
			rule, err := parseRule(line)
			if err != nil {
				return nil, err
			}
			in.Rules = append(in.Rules, rule)
		}
	}

	for f := range initials {
		in.InitialFacts = append(in.InitialFacts, f)
	}
	sort.Strings(in.InitialFacts)
	return in, nil
}

// identRun consumes a run of IDENT tokens making up the body of an
// initial-facts or query line.
func identRun(tokens []lexer.Token, what string) ([]string, error) {
	var out []string
	for _, tok := range tokens {
		if tok.Kind != lexer.Ident {
			return nil, &experr.SyntaxError{
				Line:   tok.Line,
				Column: tok.Column,
				Msg:    fmt.Sprintf("expected fact letter in %s line, got %s", what, tok.Kind),
			}
		}
		out = append(out, tok.Text)
	}
	return out, nil
}

// parseRule parses `expr (=> | <=>) expr` from one line's tokens.
// Connectives cannot nest: parenthesized groups recurse into the
// connective-free expression grammar, and a second connective fails as
// an unexpected token.
func parseRule(tokens []lexer.Token) (*Rule, error) {
	p := &exprParser{tokens: tokens}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	tok := p.peek()
	if tok.Kind != lexer.Implies && tok.Kind != lexer.Iff {
		return nil, &experr.SyntaxError{
			Line:   tok.Line,
			Column: tok.Column,
			Msg:    fmt.Sprintf("expected => or <=>, got %s", tok.Kind),
		}
	}
	p.next()

	concl, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if rest := p.peek(); rest.Kind != lexer.EOL {
		return nil, &experr.SyntaxError{
			Line:   rest.Line,
			Column: rest.Column,
			Msg:    fmt.Sprintf("unexpected %s after rule conclusion", rest.Kind),
		}
	}

	return &Rule{
		ID:            tokens[0].Line,
		Condition:     cond,
		Conclusion:    concl,
		Biconditional: tok.Kind == lexer.Iff,
	}, nil
}

type exprParser struct {
	tokens []lexer.Token
	pos    int
}

// peek returns the current token, or a synthetic EOL positioned just
// past the last real token when the line is exhausted.
func (p *exprParser) peek() lexer.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	if len(p.tokens) == 0 {
		return lexer.Token{Kind: lexer.EOL, Line: 1, Column: 1}
	}
	last := p.tokens[len(p.tokens)-1]
	return lexer.Token{Kind: lexer.EOL, Line: last.Line, Column: last.Column + len(last.Text)}
}

func (p *exprParser) next() lexer.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *exprParser) parseExpr() (Expr, error) { return p.parseXor() }

func (p *exprParser) parseXor() (Expr, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == lexer.Xor {
		p.next()
		right, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		left = Xor{L: left, R: right}
	}
	return left, nil
}

func (p *exprParser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == lexer.Or {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{L: left, R: right}
	}
	return left, nil
}

func (p *exprParser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().Kind == lexer.And {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = And{L: left, R: right}
	}
	return left, nil
}

func (p *exprParser) parseUnary() (Expr, error) {
	if p.peek().Kind == lexer.Not {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not{X: operand}, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.LParen:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.peek(); closing.Kind != lexer.RParen {
			return nil, &experr.SyntaxError{
				Line:   closing.Line,
				Column: closing.Column,
				Msg:    fmt.Sprintf("expected ), got %s", closing.Kind),
			}
		}
		p.next()
		return inner, nil
	case lexer.Ident:
		p.next()
		return Fact{Name: tok.Text}, nil
	default:
		return nil, &experr.SyntaxError{
			Line:   tok.Line,
			Column: tok.Column,
			Msg:    fmt.Sprintf("expected fact or (, got %s", tok.Kind),
		}
	}
}
