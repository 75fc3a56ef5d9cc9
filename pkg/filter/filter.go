// Package filter defangs student SQL before it is sent to a database.
//
// Two transforms run over the statements of a submission: disallowed
// keywords are stripped, then every literal LIMIT count is capped at a
// ceiling. Both only edit what the tokenizer proves is code, so comments,
// strings and quoted identifiers pass through untouched. Neither transform
// ever rejects a query; every edit is reported as a warning instead.
package filter

import (
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapgrade/pkg/parser"
)

// Options configures a Filter.
type Options struct {
	// Ceiling is the largest LIMIT count allowed through. Zero or negative
	// disables LIMIT rewriting.
	Ceiling int

	// Blacklist holds the function and keyword names to strip, matched
	// case-insensitively.
	Blacklist []string

	// Dialect names the SQL dialect of the database the output runs on
	// (mysql, postgres, sqlite, duckdb). Empty or unknown means mysql.
	Dialect string

	Logger *slog.Logger
}

// Result is the outcome of sanitizing one submission.
type Result struct {
	SQL      string
	Modified bool
	Warnings []string
}

// Filter sanitizes submissions. It holds no mutable state and is safe for
// concurrent use.
type Filter struct {
	ceiling   int
	blacklist map[string]struct{}
	dialect   parser.Dialect
	logger    *slog.Logger
}

// New creates a Filter from opts.
func New(opts Options) *Filter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	blacklist := make(map[string]struct{}, len(opts.Blacklist))
	for _, word := range opts.Blacklist {
		word = strings.ToUpper(strings.TrimSpace(word))
		if word != "" {
			blacklist[word] = struct{}{}
		}
	}

	return &Filter{
		ceiling:   opts.Ceiling,
		blacklist: blacklist,
		dialect:   parser.DialectFor(opts.Dialect),
		logger:    logger,
	}
}

// Dialect returns the name of the dialect f tokenizes with.
func (f *Filter) Dialect() string {
	return f.dialect.Name
}

// ForDialect returns a copy of f that tokenizes with the named dialect.
func (f *Filter) ForDialect(name string) *Filter {
	d := parser.DialectFor(name)
	if d.Name == f.dialect.Name {
		return f
	}
	c := *f
	c.dialect = d
	return &c
}

// Sanitize strips blacklisted keywords from sql and caps its LIMIT clauses.
// When nothing was edited the input is returned byte for byte.
func (f *Filter) Sanitize(sql string) Result {
	var (
		warnings []string
		modified bool
	)

	stmts := f.dialect.Split(sql)
	for i, stmt := range stmts {
		if stmt.IsEmpty() {
			continue
		}
		edited, notes := f.stripBlacklist(i, stmt)
		if len(notes) > 0 {
			stmts[i] = edited
			modified = true
			warnings = append(warnings, notes...)
		}
	}

	// Removing a token can leave a LIMIT count right behind its keyword, so
	// the ceiling is applied to the stripped text.
	if modified {
		stmts = f.dialect.Split(parser.Join(stmts))
	}

	for i, stmt := range stmts {
		if stmt.IsEmpty() {
			continue
		}
		capped, changed, notes := f.capLimits(i, stmt)
		warnings = append(warnings, notes...)
		if changed {
			stmts[i] = capped
			modified = true
		}
	}

	if !modified {
		return Result{SQL: sql, Warnings: warnings}
	}
	return Result{SQL: parser.Join(stmts), Modified: true, Warnings: warnings}
}

// Sanitize runs a one-off Filter over sql with the given ceiling and
// blacklist.
func Sanitize(sql string, ceiling int, blacklist []string) (string, bool, []string) {
	res := New(Options{Ceiling: ceiling, Blacklist: blacklist}).Sanitize(sql)
	return res.SQL, res.Modified, res.Warnings
}
