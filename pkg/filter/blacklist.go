package filter

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapgrade/pkg/parser"
	"github.com/leapstack-labs/leapgrade/pkg/token"
)

var defaultBlacklist = []string{
	"SLEEP",
	"AES_DECRYPT",
	"AES_ENCRYPT",
	"BENCHMARK",
	"DES_DECRYPT",
	"DES_ENCRYPT",
	"ENCRYPT",
	"ExtractValue",
	"FROM_BASE64",
	"GET_LOCK",
	"IS_FREE_LOCK",
	"IS_USED_LOCK",
	"LOAD_FILE",
	"MASTER_POS_WAIT",
	"OLD_PASSWORD",
	"PASSWORD",
	"PROCEDURE_ANALYSE",
	"RANDOM_BYTES",
	"USER",
	"SESSION_USER",
	"SQL_THREAD_WAIT_AFTER_GTIDS",
	"WAIT_UNTIL_SQL_THREAD_AFTER_GTIDS",
	"SYSTEM_USER",
	"UpdateXML",
	"VALIDATE_PASSWORD_STRENGTH",
	"SET",

	// PostgreSQL and DuckDB
	"PG_SLEEP",
	"PG_SLEEP_FOR",
	"PG_SLEEP_UNTIL",
	"PG_ADVISORY_LOCK",
	"PG_ADVISORY_LOCK_SHARED",
	"PG_ADVISORY_XACT_LOCK",
	"PG_ADVISORY_XACT_LOCK_SHARED",
	"PG_TRY_ADVISORY_LOCK",
	"PG_TRY_ADVISORY_LOCK_SHARED",
	"PG_TRY_ADVISORY_XACT_LOCK",
	"PG_TRY_ADVISORY_XACT_LOCK_SHARED",
	"PG_ADVISORY_UNLOCK",
	"PG_ADVISORY_UNLOCK_SHARED",
	"PG_ADVISORY_UNLOCK_ALL",
	"SET_CONFIG",
	"PG_READ_FILE",
	"PG_READ_BINARY_FILE",
	"PG_LS_DIR",
	"PG_STAT_FILE",
	"LO_IMPORT",
	"LO_EXPORT",
	"PG_TERMINATE_BACKEND",
	"PG_CANCEL_BACKEND",
	"PG_RELOAD_CONF",

	// SQLite
	"LOAD_EXTENSION",
}

// DefaultBlacklist returns the built-in list of disallowed names: sleeps,
// locks and replication waits, crypto and credential functions, file and
// backend access, BENCHMARK and SET, for every supported dialect. The
// returned slice is a copy.
func DefaultBlacklist() []string {
	out := make([]string, len(defaultBlacklist))
	copy(out, defaultBlacklist)
	return out
}

// stripBlacklist removes every blacklisted word from stmt. A single space
// replaces a removed word that sat between two non-whitespace tokens, so its
// neighbours never fuse into a new token.
func (f *Filter) stripBlacklist(index int, stmt parser.Statement) (parser.Statement, []string) {
	if len(f.blacklist) == 0 {
		return stmt, nil
	}

	var (
		out   []token.Token
		notes []string
	)
	for i, tok := range stmt.Tokens {
		if !f.isBlacklisted(stmt, i) {
			out = append(out, tok)
			continue
		}

		notes = append(notes, fmt.Sprintf("Removed disallowed keyword %s.", strings.ToUpper(tok.Text)))

		if len(out) > 0 && out[len(out)-1].Kind != token.Whitespace &&
			i+1 < len(stmt.Tokens) && stmt.Tokens[i+1].Kind != token.Whitespace {
			out = append(out, token.Token{Kind: token.Whitespace, Text: " ", Pos: tok.Pos})
		}
	}

	if len(notes) == 0 {
		return stmt, nil
	}

	stripped := parser.Statement{Tokens: out}
	f.logger.Warn("removed disallowed keywords",
		slog.Int("statement", index),
		slog.Int("count", len(notes)),
		slog.String("before", stmt.Text()),
		slog.String("after", stripped.Text()))
	return stripped, notes
}

// isBlacklisted reports whether the token at i is a blacklisted keyword or
// identifier. Qualified and quoted names such as t.user are columns and are
// left alone unless they are called, as in pg_catalog.pg_sleep(1).
func (f *Filter) isBlacklisted(stmt parser.Statement, i int) bool {
	tok := stmt.Tokens[i]
	if tok.Kind != token.Keyword && tok.Kind != token.Identifier {
		return false
	}

	if _, ok := f.blacklist[strings.ToUpper(tok.Unquoted())]; !ok {
		return false
	}

	prev := stmt.PrevSignificant(i)
	next := stmt.NextSignificant(i)
	qualified := prev >= 0 && stmt.Tokens[prev].IsPunct(".") ||
		next >= 0 && stmt.Tokens[next].IsPunct(".")
	if tok.IsQuoted() || qualified {
		return next >= 0 && stmt.Tokens[next].IsPunct("(")
	}
	return true
}
