package filter

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/leapstack-labs/leapgrade/pkg/parser"
	"github.com/leapstack-labs/leapgrade/pkg/token"
)

// capLimits rewrites every literal LIMIT count above the ceiling to the
// ceiling. In LIMIT offset,count only the count is touched. Clauses whose
// value is not a plain integer are reported and left as they are.
func (f *Filter) capLimits(index int, stmt parser.Statement) (parser.Statement, bool, []string) {
	var (
		notes   []string
		changed bool
	)

	for _, clause := range parser.FindLimits(stmt) {
		if !clause.Literal() {
			note := "LIMIT without a value was left unchanged."
			if clause.Value.Text != "" {
				note = fmt.Sprintf("LIMIT %s is not an integer literal and was left unchanged.", clause.Value.Text)
			}
			notes = append(notes, note)
			f.logger.Warn("ambiguous LIMIT clause left unchanged",
				slog.Int("statement", index),
				slog.String("value", clause.Value.Text),
				slog.String("at", clause.Value.Pos.String()),
				slog.String("sql", stmt.Text()))
			continue
		}

		if f.ceiling <= 0 {
			continue
		}

		count := stmt.Tokens[clause.Count]
		if !f.exceedsCeiling(count.Text) {
			continue
		}

		before := stmt.Text()
		stmt = stmt.WithToken(clause.Count, token.Token{
			Kind: token.Number,
			Text: strconv.Itoa(f.ceiling),
			Pos:  count.Pos,
		})
		changed = true
		notes = append(notes, fmt.Sprintf("LIMIT %s exceeds the maximum of %d and was lowered.", count.Text, f.ceiling))
		f.logger.Warn("lowered LIMIT to ceiling",
			slog.Int("statement", index),
			slog.Int("ceiling", f.ceiling),
			slog.String("before", before),
			slog.String("after", stmt.Text()))
	}

	return stmt, changed, notes
}

// exceedsCeiling reports whether the integer literal text is above the
// ceiling. Literals too large for int64 always are.
func (f *Filter) exceedsCeiling(text string) bool {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return true
	}
	return n > int64(f.ceiling)
}
