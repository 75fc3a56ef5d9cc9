package parser

import (
	"strings"

	"github.com/leapstack-labs/leapgrade/pkg/token"
)

// keywords holds the reserved words recognized as token.Keyword. Anything
// else spelled as a word is an identifier (including function names).
var keywords = map[string]struct{}{
	"ALL": {}, "ALTER": {}, "AND": {}, "ANY": {}, "AS": {}, "ASC": {},
	"BETWEEN": {}, "BY": {},
	"CALL": {}, "CASE": {}, "CAST": {}, "CREATE": {}, "CROSS": {},
	"DELETE": {}, "DESC": {}, "DISTINCT": {}, "DIV": {}, "DO": {}, "DROP": {},
	"ELSE": {}, "END": {}, "EXCEPT": {}, "EXISTS": {}, "EXPLAIN": {},
	"FALSE": {}, "FETCH": {}, "FOR": {}, "FROM": {}, "FULL": {},
	"GRANT": {}, "GROUP": {},
	"HANDLER": {}, "HAVING": {},
	"IN": {}, "INNER": {}, "INSERT": {}, "INTERSECT": {}, "INTO": {}, "IS": {},
	"JOIN": {},
	"KILL": {},
	"LEFT": {}, "LIKE": {}, "LIMIT": {}, "LOAD": {}, "LOCK": {},
	"MOD": {},
	"NATURAL": {}, "NOT": {}, "NULL": {},
	"OFFSET": {}, "ON": {}, "OR": {}, "ORDER": {}, "OUTER": {}, "OVER": {},
	"PARTITION": {}, "PROCEDURE": {},
	"REGEXP": {}, "RENAME": {}, "REPLACE": {}, "REVOKE": {}, "RIGHT": {}, "RLIKE": {},
	"SELECT": {}, "SET": {}, "SHOW": {}, "STRAIGHT_JOIN": {},
	"TABLE": {}, "THEN": {}, "TRUE": {}, "TRUNCATE": {},
	"UNION": {}, "UNLOCK": {}, "UPDATE": {}, "USE": {}, "USING": {},
	"VALUES": {},
	"WHEN": {}, "WHERE": {}, "WINDOW": {}, "WITH": {},
	"XOR": {},
}

// lookupWord classifies an unquoted word.
func lookupWord(word string) token.Kind {
	if IsKeyword(word) {
		return token.Keyword
	}
	return token.Identifier
}

// IsKeyword reports whether word is a reserved keyword (case-insensitive).
func IsKeyword(word string) bool {
	_, ok := keywords[strings.ToUpper(word)]
	return ok
}
