// Package lexer turns raw rule-file text into a flat token stream.
//
// Comments (# to end of line) and whitespace are stripped here, so the
// file loader hands the text over untouched. Every token carries its
// source line and column for error reporting.
package lexer

import (
	"fmt"

	"github.com/andrijajovanovic98/expert-system/pkg/expert/experr"
)

// Kind identifies a token type.
type Kind int

const (
	Ident   Kind = iota // single uppercase letter
	Not                 // !
	And                 // +
	Or                  // |
	Xor                 // ^
	Implies             // =>
	Iff                 // <=>
	LParen              // (
	RParen              // )
	Initial             // = at start of an initial-facts line
	Query               // ?
	EOL
)

var kindNames = map[Kind]string{
	Ident:   "IDENT",
	Not:     "NOT",
	And:     "AND",
	Or:      "OR",
	Xor:     "XOR",
	Implies: "IMPLIES",
	Iff:     "IFF",
	LParen:  "LPAREN",
	RParen:  "RPAREN",
	Initial: "INITIAL",
	Query:   "QUERY",
	EOL:     "EOL",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is one lexical unit with its source position.
type Token struct {
	Kind   Kind
	Text   string
	Line   int
	Column int
}

// Tokenize scans the whole input. Logical lines are separated by EOL
// tokens; blank and comment-only lines produce no tokens at all.
func Tokenize(text string) ([]Token, error) {
	var (
		tokens    []Token
		line      = 1
		col       = 1
		lineStart = len(tokens)
	)

	emit := func(k Kind, text string, c int) {
		tokens = append(tokens, Token{Kind: k, Text: text, Line: line, Column: c})
	}
	endLine := func() {
		// Suppress EOL for lines that produced no tokens.
		if len(tokens) > lineStart {
			emit(EOL, "", col)
			lineStart = len(tokens)
		}
		line++
		col = 1
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == '\n':
			endLine()
			continue
		case ch == ' ' || ch == '\t' || ch == '\r':
			col++
			continue
		case ch == '#':
			for i < len(text) && text[i] != '\n' {
				i++
				col++
			}
			if i < len(text) {
				endLine()
			}
			continue
		case ch == '(':
			emit(LParen, "(", col)
		case ch == ')':
			emit(RParen, ")", col)
		case ch == '!':
			emit(Not, "!", col)
		case ch == '+':
			emit(And, "+", col)
		case ch == '|':
			emit(Or, "|", col)
		case ch == '^':
			emit(Xor, "^", col)
		case ch == '?':
			emit(Query, "?", col)
		case ch == '<':
			if i+2 < len(text) && text[i+1] == '=' && text[i+2] == '>' {
				emit(Iff, "<=>", col)
				i += 2
				col += 2
				break
			}
			return nil, &experr.SyntaxError{Line: line, Column: col, Msg: "invalid character '<'"}
		case ch == '=':
			if i+1 < len(text) && text[i+1] == '>' {
				emit(Implies, "=>", col)
				i++
				col++
				break
			}
			emit(Initial, "=", col)
		case ch >= 'A' && ch <= 'Z':
			emit(Ident, string(ch), col)
		default:
			return nil, &experr.SyntaxError{
				Line:   line,
				Column: col,
				Msg:    fmt.Sprintf("invalid character %q", ch),
			}
		}
		col++
	}
	if len(tokens) > lineStart {
		tokens = append(tokens, Token{Kind: EOL, Line: line, Column: col})
	}
	return tokens, nil
}
