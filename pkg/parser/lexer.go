package parser

import (
	"strings"

	"github.com/leapstack-labs/leapgrade/pkg/token"
)

// Lexer splits SQL input into lossless tokens.
type Lexer struct {
	input   string
	dialect Dialect
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)
}

// NewLexer creates a new Lexer for the given input using MySQL rules.
func NewLexer(input string) *Lexer {
	return MySQL.NewLexer(input)
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// Next returns the next token. The second result is false once the input is
// exhausted.
func (l *Lexer) Next() (token.Token, bool) {
	if l.atEOF() {
		return token.Token{}, false
	}

	pos := l.currentPos()
	start := l.pos
	var kind token.Kind

	switch {
	case isSpace(l.ch):
		kind = token.Whitespace
		for !l.atEOF() && isSpace(l.ch) {
			l.readChar()
		}
	case l.ch == '#' && l.dialect.HashComments, l.ch == '-' && l.peekChar() == '-':
		kind = token.Comment
		l.skipLineComment()
	case l.ch == '/' && l.peekChar() == '*':
		kind = token.Comment
		l.skipBlockComment()
	case l.ch == '\'':
		kind = token.String
		l.skipQuoted('\'', l.dialect.BackslashEscapes)
	case l.ch == '"' && l.dialect.DoubleQuotedStrings:
		kind = token.String
		l.skipQuoted('"', l.dialect.BackslashEscapes)
	case l.ch == '"', l.ch == '`':
		kind = token.Identifier
		l.skipQuoted(l.ch, false)
	case l.ch == '[' && l.dialect.BracketIdentifiers:
		kind = token.Identifier
		l.skipBracketed()
	case (l.ch == 'e' || l.ch == 'E') && l.peekChar() == '\'' && l.dialect.EscapeStrings:
		kind = token.String
		l.readChar() // skip prefix
		l.skipQuoted('\'', true)
	case l.ch == '$' && l.dialect.DollarQuotes && l.dollarTag() != "":
		kind = token.String
		l.skipDollarQuoted(l.dollarTag())
	case isDigit(l.ch), l.ch == '.' && isDigit(l.peekChar()):
		kind = l.readNumber()
	case isWordStart(l.ch):
		l.readWord()
		kind = lookupWord(l.input[start:l.pos])
	case l.ch == '@' && l.dialect.SessionVariables:
		// @var and @@system_var
		kind = token.Identifier
		for l.ch == '@' {
			l.readChar()
		}
		l.readWord()
	default:
		kind = token.Punctuation
		l.readOperator()
	}

	return token.Token{Kind: kind, Text: l.input[start:l.pos], Pos: pos}, true
}

// skipLineComment consumes a line comment up to, not including, the newline.
func (l *Lexer) skipLineComment() {
	for !l.atEOF() && l.ch != '\n' {
		l.readChar()
	}
}

// skipBlockComment consumes a /* */ comment, counting nested openers when
// the dialect allows them. An unterminated comment runs to the end of input.
func (l *Lexer) skipBlockComment() {
	l.readChar() // skip '/'
	l.readChar() // skip '*'
	depth := 1
	for !l.atEOF() {
		switch {
		case l.ch == '*' && l.peekChar() == '/':
			l.readChar()
			l.readChar()
			depth--
			if depth == 0 || !l.dialect.NestedComments {
				return
			}
		case l.ch == '/' && l.peekChar() == '*' && l.dialect.NestedComments:
			l.readChar()
			l.readChar()
			depth++
		default:
			l.readChar()
		}
	}
}

// skipBracketed consumes a [name] identifier. Brackets do not nest or
// escape.
func (l *Lexer) skipBracketed() {
	for !l.atEOF() && l.ch != ']' {
		l.readChar()
	}
	if !l.atEOF() {
		l.readChar()
	}
}

// dollarTag returns the $tag$ or $$ opening a dollar-quoted string at the
// cursor, or "" if there is none.
func (l *Lexer) dollarTag() string {
	rest := l.input[l.pos:]
	for i := 1; i < len(rest); i++ {
		c := rest[i]
		switch {
		case c == '$':
			return rest[:i+1]
		case isWordStart(c) || i > 1 && isDigit(c):
		default:
			return ""
		}
	}
	return ""
}

// skipDollarQuoted consumes a dollar-quoted string opened by tag. Nothing
// inside is an escape. An unterminated string runs to the end of input.
func (l *Lexer) skipDollarQuoted(tag string) {
	l.advance(len(tag))
	end := strings.Index(l.input[l.pos:], tag)
	if end < 0 {
		l.advance(len(l.input) - l.pos)
		return
	}
	l.advance(end + len(tag))
}

func (l *Lexer) advance(n int) {
	for range n {
		l.readChar()
	}
}

// skipQuoted consumes a quoted run. Doubled quotes are escapes; backslash
// escapes apply to string literals only. An unterminated run ends at EOF.
func (l *Lexer) skipQuoted(quote byte, backslash bool) {
	l.readChar() // skip opening quote
	for !l.atEOF() {
		switch {
		case backslash && l.ch == '\\':
			l.readChar()
			if !l.atEOF() {
				l.readChar()
			}
		case l.ch == quote:
			if l.peekChar() == quote {
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar()
			return
		default:
			l.readChar()
		}
	}
}

// readNumber reads a numeric literal (integer, decimal, or scientific). A
// number running straight into letters is an identifier, as MySQL allows
// names such as 1st_place.
func (l *Lexer) readNumber() token.Kind {
	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if (l.ch == 'e' || l.ch == 'E') && l.exponentFollows() {
		l.readChar() // skip 'e' or 'E'
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if isWordStart(l.ch) {
		l.readWord()
		return token.Identifier
	}
	return token.Number
}

// exponentFollows reports whether the 'e' under the cursor starts an exponent.
func (l *Lexer) exponentFollows() bool {
	next := l.peekChar()
	if isDigit(next) {
		return true
	}
	if (next == '+' || next == '-') && l.readPos+1 < len(l.input) {
		return isDigit(l.input[l.readPos+1])
	}
	return false
}

// readWord reads an unquoted identifier or keyword.
func (l *Lexer) readWord() {
	for !l.atEOF() && (isWordStart(l.ch) || isDigit(l.ch)) {
		l.readChar()
	}
}

// operators lists multi-character operators, longest first.
var operators = []string{"<=>", "<=", ">=", "<>", "!=", "||", "&&", "::", ":=", "<<", ">>"}

// readOperator reads one punctuation token, preferring multi-character
// operators.
func (l *Lexer) readOperator() {
	rest := l.input[l.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			l.advance(len(op))
			return
		}
	}
	l.readChar()
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// isWordStart accepts ASCII letters, '_', '$' and any non-ASCII byte so that
// UTF-8 identifiers stay in one token.
func isWordStart(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_' || ch == '$' || ch >= 0x80
}

// Tokenize returns all tokens of the input using MySQL rules.
func Tokenize(input string) []token.Token {
	return MySQL.Tokenize(input)
}
