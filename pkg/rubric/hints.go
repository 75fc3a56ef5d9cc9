package rubric

import (
	"fmt"
	"strings"
)

// Hint texts shown to students.
const (
	HintTooManyRows    = "Too many rows."
	HintTooFewRows     = "Too few rows."
	HintTooManyColumns = "Too many columns."
	HintTooFewColumns  = "Too few columns."
	HintColumnNames    = "Columns are named incorrectly."
	HintColumnOrder    = "Columns are out of order."
	HintCompareRows    = "Row count and column names are correct. Compare your rows against the expected results."
	HintRowOrder       = "Rows are out of order."
)

// MissingKeywordsHint formats the hint listing keywords the student left out.
func MissingKeywordsHint(missing []string) string {
	return fmt.Sprintf("Missing keywords: %s", strings.Join(missing, ", "))
}

// hints derives student-facing hints from the outcomes. Keywords, row
// counts, and columns-then-rows are separate categories; within a category
// only the first applicable hint fires.
func (c *comparison) hints(o Outcomes) []string {
	var hints []string

	if !o[KeywordsMatch] {
		hints = append(hints, MissingKeywordsHint(c.missing))
	}

	if !o[RowCountsMatch] {
		if c.student.RowCount() > c.grader.RowCount() {
			hints = append(hints, HintTooManyRows)
		} else {
			hints = append(hints, HintTooFewRows)
		}
	}

	switch {
	case !o[ColCountsMatch]:
		if c.student.ColumnCount() > c.grader.ColumnCount() {
			hints = append(hints, HintTooManyColumns)
		} else {
			hints = append(hints, HintTooFewColumns)
		}
	case !o[ColsMatchUnsorted]:
		hints = append(hints, HintColumnNames)
	case !o[ColsMatch]:
		hints = append(hints, HintColumnOrder)
	case o[RowCountsMatch] && !o[RowsMatchUnsorted]:
		hints = append(hints, HintCompareRows)
	case o[RowsMatchUnsorted] && !o[RowsMatch]:
		hints = append(hints, HintRowOrder)
	}

	return hints
}
