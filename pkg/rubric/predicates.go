package rubric

import (
	"math"
	"slices"

	"github.com/leapstack-labs/leapgrade/pkg/parser"
	"github.com/leapstack-labs/leapgrade/pkg/result"
)

// Check names one comparison dimension.
type Check string

// The fixed battery of checks run for every submission.
const (
	RowsMatch         Check = "rows_match"
	RowsMatchUnsorted Check = "rows_match_unsorted"
	RowCountsMatch    Check = "row_counts_match"
	RowCountsClose    Check = "row_counts_close"
	ColsMatch         Check = "cols_match"
	ColsMatchUnsorted Check = "cols_match_unsorted"
	ColCountsMatch    Check = "col_counts_match"
	ColCountsClose    Check = "col_counts_close"
	KeywordsMatch     Check = "keywords_match"
)

// Outcomes holds the result of every check.
type Outcomes map[Check]bool

// comparison is one student/grader pair under evaluation.
type comparison struct {
	student   *result.ResultSet
	grader    *result.ResultSet
	tolerance float64

	// missing lists the keywords of the grader query absent from the
	// student query, in keyword table order.
	missing []string
}

func newComparison(studentQuery string, student *result.ResultSet, graderQuery string, grader *result.ResultSet, keywords []string, tolerance float64) *comparison {
	if student == nil {
		student = &result.ResultSet{}
	}
	if grader == nil {
		grader = &result.ResultSet{}
	}

	studentWords := parser.Words(studentQuery)
	graderWords := parser.Words(graderQuery)

	var missing []string
	for _, kw := range keywords {
		if parser.ContainsPhrase(graderWords, kw) && !parser.ContainsPhrase(studentWords, kw) {
			missing = append(missing, kw)
		}
	}

	return &comparison{
		student:   student,
		grader:    grader,
		tolerance: tolerance,
		missing:   missing,
	}
}

type predicate struct {
	check Check
	eval  func(c *comparison) bool
}

// predicates is evaluated in full for every submission; hints need every
// outcome, not only the ones that decide the bucket.
var predicates = []predicate{
	{RowsMatch, rowsMatch},
	{RowsMatchUnsorted, rowsMatchUnsorted},
	{RowCountsMatch, rowCountsMatch},
	{RowCountsClose, rowCountsClose},
	{ColsMatch, colsMatch},
	{ColsMatchUnsorted, colsMatchUnsorted},
	{ColCountsMatch, colCountsMatch},
	{ColCountsClose, colCountsClose},
	{KeywordsMatch, keywordsMatch},
}

func (c *comparison) evaluate() Outcomes {
	out := make(Outcomes, len(predicates))
	for _, p := range predicates {
		out[p.check] = p.eval(c)
	}
	return out
}

func rowsMatch(c *comparison) bool {
	if c.student.RowCount() != c.grader.RowCount() {
		return false
	}
	for i, row := range c.student.Rows {
		if result.RowKey(row) != result.RowKey(c.grader.Rows[i]) {
			return false
		}
	}
	return true
}

// rowsMatchUnsorted compares the rows as multisets, each row's values
// sorted first. Rows holding the same values in different columns compare
// equal, so it can pass answers that are not quite right.
func rowsMatchUnsorted(c *comparison) bool {
	if c.student.RowCount() != c.grader.RowCount() {
		return false
	}
	counts := make(map[string]int, len(c.grader.Rows))
	for _, row := range c.grader.Rows {
		counts[result.SortedRowKey(row)]++
	}
	for _, row := range c.student.Rows {
		key := result.SortedRowKey(row)
		if counts[key] == 0 {
			return false
		}
		counts[key]--
	}
	return true
}

func rowCountsMatch(c *comparison) bool {
	return c.student.RowCount() == c.grader.RowCount()
}

func rowCountsClose(c *comparison) bool {
	return within(c.student.RowCount(), c.grader.RowCount(), c.tolerance)
}

func colsMatch(c *comparison) bool {
	return slices.Equal(c.student.Columns, c.grader.Columns)
}

func colsMatchUnsorted(c *comparison) bool {
	a := slices.Clone(c.student.Columns)
	b := slices.Clone(c.grader.Columns)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

func colCountsMatch(c *comparison) bool {
	return c.student.ColumnCount() == c.grader.ColumnCount()
}

func colCountsClose(c *comparison) bool {
	return within(c.student.ColumnCount(), c.grader.ColumnCount(), c.tolerance)
}

func keywordsMatch(c *comparison) bool {
	return len(c.missing) == 0
}

// within reports whether got is within the relative tolerance of want.
// Against an empty expectation only an exact zero is close.
func within(got, want int, tolerance float64) bool {
	if want == 0 {
		return got == 0
	}
	return math.Abs(float64(got-want))/float64(want) <= tolerance
}
