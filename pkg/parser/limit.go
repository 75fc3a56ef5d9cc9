package parser

import (
	"strings"

	"github.com/leapstack-labs/leapgrade/pkg/token"
)

// LimitClause locates a LIMIT keyword and its arguments within a Statement.
// Indexes refer to Statement.Tokens.
type LimitClause struct {
	Keyword int // index of the LIMIT token
	Offset  int // index of the offset literal in LIMIT offset,count; -1 otherwise
	Count   int // index of the count literal; -1 when the clause is not a plain integer form

	// Value is the first token following LIMIT that could not be read as a
	// plain integer clause. Zero when the clause is well formed or LIMIT is
	// the last token.
	Value token.Token
}

// Literal reports whether the clause is LIMIT n or LIMIT offset,count with
// plain integer literals.
func (c LimitClause) Literal() bool {
	return c.Count >= 0
}

// FindLimits returns every LIMIT clause of the statement in source order.
// Only significant tokens count, so LIMIT inside comments or strings is never
// seen.
func FindLimits(stmt Statement) []LimitClause {
	var clauses []LimitClause
	for i, tok := range stmt.Tokens {
		if tok.Kind != token.Keyword || !strings.EqualFold(tok.Text, "LIMIT") {
			continue
		}
		clauses = append(clauses, readLimit(stmt, i))
	}
	return clauses
}

func readLimit(stmt Statement, kw int) LimitClause {
	clause := LimitClause{Keyword: kw, Offset: -1, Count: -1}

	first := stmt.NextSignificant(kw)
	if first < 0 {
		return clause
	}
	if !stmt.Tokens[first].IsInteger() {
		clause.Value = stmt.Tokens[first]
		return clause
	}

	comma := stmt.NextSignificant(first)
	if comma < 0 || !stmt.Tokens[comma].IsPunct(",") {
		clause.Count = first
		return clause
	}

	second := stmt.NextSignificant(comma)
	if second < 0 {
		clause.Value = stmt.Tokens[comma]
		return clause
	}
	if !stmt.Tokens[second].IsInteger() {
		clause.Value = stmt.Tokens[second]
		return clause
	}
	clause.Offset = first
	clause.Count = second
	return clause
}
