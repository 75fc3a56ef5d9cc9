package token

import "fmt"

// Position locates a token in the submitted text.
type Position struct {
	Line   int // 1-based
	Column int // 1-based, counted in bytes
	Offset int // 0-based byte offset
}

// IsValid reports whether the lexer set p.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// String formats p as line:column, or "-" when it is unset.
func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
