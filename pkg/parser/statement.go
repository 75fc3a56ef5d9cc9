package parser

import (
	"strings"

	"github.com/leapstack-labs/leapgrade/pkg/token"
)

// Statement is one command of a submission: the tokens between two top-level
// semicolons, excluding the semicolons themselves.
type Statement struct {
	Tokens []token.Token
}

// Text rebuilds the statement source from its tokens.
func (s Statement) Text() string {
	var b strings.Builder
	for _, tok := range s.Tokens {
		b.WriteString(tok.Text)
	}
	return b.String()
}

// IsEmpty reports whether the statement holds nothing but whitespace and
// comments.
func (s Statement) IsEmpty() bool {
	for _, tok := range s.Tokens {
		if !tok.IsTrivia() {
			return false
		}
	}
	return true
}

// NextSignificant returns the index of the first non-trivia token after i,
// or -1 if there is none.
func (s Statement) NextSignificant(i int) int {
	for j := i + 1; j < len(s.Tokens); j++ {
		if !s.Tokens[j].IsTrivia() {
			return j
		}
	}
	return -1
}

// PrevSignificant returns the index of the last non-trivia token before i,
// or -1 if there is none.
func (s Statement) PrevSignificant(i int) int {
	for j := i - 1; j >= 0; j-- {
		if !s.Tokens[j].IsTrivia() {
			return j
		}
	}
	return -1
}

// WithToken returns a copy of the statement with the token at i replaced.
func (s Statement) WithToken(i int, tok token.Token) Statement {
	tokens := make([]token.Token, len(s.Tokens))
	copy(tokens, s.Tokens)
	tokens[i] = tok
	return Statement{Tokens: tokens}
}

// Split tokenizes input with MySQL rules and splits it into statements on
// top-level semicolons. Semicolons inside strings, quoted identifiers and
// comments are part of those tokens and never split. A submission ending in ';' yields a
// trailing empty statement, so Join(Split(q)) == q for every q.
func Split(input string) []Statement {
	return MySQL.Split(input)
}

// Join rebuilds a submission from its statements, separating them with ';'.
func Join(stmts []Statement) string {
	parts := make([]string, len(stmts))
	for i, stmt := range stmts {
		parts[i] = stmt.Text()
	}
	return strings.Join(parts, ";")
}
