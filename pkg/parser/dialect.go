package parser

import (
	"strings"

	"github.com/leapstack-labs/leapgrade/pkg/token"
)

// Dialect holds the lexical rules that decide where strings, quoted
// identifiers and comments begin and end. The filter only edits what the
// lexer calls code, so the rules must match the database that runs the SQL.
type Dialect struct {
	Name string

	// HashComments makes # start a line comment.
	HashComments bool
	// BackslashEscapes lets a backslash escape the next character inside
	// '...' and "..." strings.
	BackslashEscapes bool
	// DoubleQuotedStrings makes "..." a string literal. Otherwise it is a
	// quoted identifier.
	DoubleQuotedStrings bool
	// SessionVariables makes @name and @@name single identifiers.
	SessionVariables bool

	// EscapeStrings enables E'...' literals, which take backslash escapes.
	EscapeStrings bool
	// DollarQuotes enables $$...$$ and $tag$...$tag$ literals.
	DollarQuotes bool
	// NestedComments makes /* */ comments nest.
	NestedComments bool
	// BracketIdentifiers makes [name] a quoted identifier.
	BracketIdentifiers bool
}

// Built-in dialects.
var (
	MySQL = Dialect{
		Name:                "mysql",
		HashComments:        true,
		BackslashEscapes:    true,
		DoubleQuotedStrings: true,
		SessionVariables:    true,
	}
	Postgres = Dialect{
		Name:           "postgres",
		EscapeStrings:  true,
		DollarQuotes:   true,
		NestedComments: true,
	}
	DuckDB = Dialect{
		Name:           "duckdb",
		EscapeStrings:  true,
		DollarQuotes:   true,
		NestedComments: true,
	}
	SQLite = Dialect{
		Name:               "sqlite",
		BracketIdentifiers: true,
	}
)

var dialects = map[string]Dialect{
	"mysql":      MySQL,
	"postgres":   Postgres,
	"postgresql": Postgres,
	"duckdb":     DuckDB,
	"sqlite":     SQLite,
	"sqlite3":    SQLite,
}

// LookupDialect returns the dialect registered under name, ignoring case.
func LookupDialect(name string) (Dialect, bool) {
	d, ok := dialects[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// DialectFor returns the dialect registered under name, or MySQL when name
// is empty or unknown.
func DialectFor(name string) Dialect {
	if d, ok := LookupDialect(name); ok {
		return d
	}
	return MySQL
}

// NewLexer creates a Lexer that follows d.
func (d Dialect) NewLexer(input string) *Lexer {
	l := &Lexer{
		input:   input,
		dialect: d,
		line:    1,
	}
	l.readChar()
	return l
}

// Tokenize returns all tokens of input under d.
func (d Dialect) Tokenize(input string) []token.Token {
	l := d.NewLexer(input)
	var tokens []token.Token
	for {
		tok, ok := l.Next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// Split tokenizes input under d and splits it into statements on top-level
// semicolons. See the package-level Split.
func (d Dialect) Split(input string) []Statement {
	var (
		stmts   []Statement
		current []token.Token
	)
	for _, tok := range d.Tokenize(input) {
		if tok.IsPunct(";") {
			stmts = append(stmts, Statement{Tokens: current})
			current = nil
			continue
		}
		current = append(current, tok)
	}
	return append(stmts, Statement{Tokens: current})
}
