// Package token defines the lexical tokens produced by the SQL lexer.
//
// Tokens are lossless: concatenating the Text of every token of an input
// reproduces the input byte for byte, including whitespace and comments.
package token

import (
	"fmt"
	"strings"
)

// Kind classifies a token.
type Kind int

// Token kinds.
const (
	Whitespace Kind = iota
	Comment
	Keyword
	Identifier
	Number
	String
	Punctuation
)

var kindNames = map[Kind]string{
	Whitespace:  "Whitespace",
	Comment:     "Comment",
	Keyword:     "Keyword",
	Identifier:  "Identifier",
	Number:      "Number",
	String:      "String",
	Punctuation: "Punctuation",
}

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexical unit with its original text.
type Token struct {
	Kind Kind
	Text string
	Pos  Position
}

// IsTrivia reports whether the token carries no syntax (whitespace or comment).
func (t Token) IsTrivia() bool {
	return t.Kind == Whitespace || t.Kind == Comment
}

// IsPunct reports whether the token is the given punctuation.
func (t Token) IsPunct(s string) bool {
	return t.Kind == Punctuation && t.Text == s
}

// IsQuoted reports whether a word token was written with quote delimiters
// (backticks, double quotes or brackets).
func (t Token) IsQuoted() bool {
	if t.Text == "" {
		return false
	}
	c := t.Text[0]
	return c == '`' || c == '"' || c == '\'' || c == '['
}

// Unquoted returns the name a quoted identifier spells, with its delimiters
// removed and doubled quotes collapsed. Other tokens return their text.
func (t Token) Unquoted() string {
	if !t.IsQuoted() || len(t.Text) < 2 {
		return t.Text
	}
	open, closing := t.Text[0], t.Text[0]
	if open == '[' {
		closing = ']'
	}
	if t.Text[len(t.Text)-1] != closing {
		return t.Text
	}
	inner := t.Text[1 : len(t.Text)-1]
	if open == '[' {
		return inner
	}
	q := string(open)
	return strings.ReplaceAll(inner, q+q, q)
}

// IsInteger reports whether the token is a plain unsigned integer literal.
func (t Token) IsInteger() bool {
	if t.Kind != Number || t.Text == "" {
		return false
	}
	for i := 0; i < len(t.Text); i++ {
		if t.Text[i] < '0' || t.Text[i] > '9' {
			return false
		}
	}
	return true
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Text, t.Pos.Offset)
}
