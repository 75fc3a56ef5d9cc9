package parser

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/leapstack-labs/leapgrade/pkg/token"
)

// Words returns the significant tokens of sql as upper-cased, NFC-normalized
// text, in source order. Comments and whitespace are dropped; strings and
// quoted identifiers are kept verbatim so they never match a keyword.
func Words(sql string) []string {
	upper := cases.Upper(language.Und)
	var words []string
	for _, tok := range Tokenize(sql) {
		switch {
		case tok.IsTrivia():
			continue
		case tok.Kind == token.Keyword, tok.Kind == token.Identifier && !tok.IsQuoted():
			words = append(words, upper.String(norm.NFC.String(tok.Text)))
		default:
			words = append(words, tok.Text)
		}
	}
	return words
}

// ContainsPhrase reports whether words holds the space-separated phrase as
// consecutive entries (e.g. "ORDER BY"). The phrase is matched
// case-insensitively.
func ContainsPhrase(words []string, phrase string) bool {
	parts := strings.Fields(strings.ToUpper(phrase))
	if len(parts) == 0 {
		return false
	}
	for i := 0; i+len(parts) <= len(words); i++ {
		match := true
		for j, p := range parts {
			if words[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
