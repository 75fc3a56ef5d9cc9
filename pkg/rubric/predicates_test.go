package rubric

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/leapgrade/pkg/result"
)

func compare(student, grader *result.ResultSet) *comparison {
	return newComparison("", student, "", grader, DefaultKeywords(), DefaultTolerance)
}

func TestPredicates(t *testing.T) {
	ab := []string{"col1", "col2"}

	tests := []struct {
		name    string
		check   func(*comparison) bool
		student *result.ResultSet
		grader  *result.ResultSet
		want    bool
	}{
		{"rows match", rowsMatch,
			rs(ab, result.Row{"a", "b"}, result.Row{"c", "d"}),
			rs(ab, result.Row{"a", "b"}, result.Row{"c", "d"}), true},
		{"rows match incorrect", rowsMatch,
			rs(ab, result.Row{"a", "b"}, result.Row{"c", "d"}),
			rs(ab, result.Row{"a", "b"}, result.Row{"d", "c"}), false},
		{"rows match unsorted", rowsMatchUnsorted,
			rs(ab, result.Row{"a", "b"}, result.Row{"c", "d"}),
			rs(ab, result.Row{"c", "d"}, result.Row{"a", "b"}), true},
		{"rows match unsorted within row", rowsMatchUnsorted,
			rs(ab, result.Row{"b", "a"}),
			rs(ab, result.Row{"a", "b"}), true},
		{"rows match unsorted incorrect", rowsMatchUnsorted,
			rs(ab, result.Row{"a", "b"}, result.Row{"c", "d"}),
			rs(ab, result.Row{"a", "c"}, result.Row{"d", "c"}), false},
		{"rows match unsorted duplicates", rowsMatchUnsorted,
			rs(ab, result.Row{"a", "b"}, result.Row{"a", "b"}),
			rs(ab, result.Row{"a", "b"}, result.Row{"c", "d"}), false},
		{"row counts match", rowCountsMatch,
			rs(ab, result.Row{"a", "b"}, result.Row{"c", "d"}),
			rs(ab, result.Row{"a", "b"}, result.Row{"c", "d"}), true},
		{"row counts match incorrect", rowCountsMatch,
			rs(ab, result.Row{"a", "b"}, result.Row{"c", "d"}),
			rs(ab, result.Row{"a", "b"}), false},
		{"row counts close", rowCountsClose,
			rs([]string{"col1"}, result.Row{"a"}, result.Row{"b"}),
			rs([]string{"col1"}, result.Row{"a"}, result.Row{"b"}, result.Row{"c"}, result.Row{"d"}), true},
		{"row counts close incorrect", rowCountsClose,
			rs([]string{"col1"}, result.Row{"a"}),
			rs([]string{"col1"}, result.Row{"a"}, result.Row{"b"}, result.Row{"c"}, result.Row{"d"}), false},
		{"row counts close empty expectation", rowCountsClose,
			rs(ab, result.Row{"a", "b"}),
			rs(ab), false},
		{"row counts close both empty", rowCountsClose,
			rs(ab), rs(ab), true},
		{"cols match", colsMatch, rs(ab), rs(ab), true},
		{"cols match incorrect", colsMatch,
			rs([]string{"col2", "col1"}), rs(ab), false},
		{"cols match case sensitive", colsMatch,
			rs([]string{"COL1", "col2"}), rs(ab), false},
		{"cols match unsorted", colsMatchUnsorted,
			rs(ab), rs([]string{"col2", "col1"}), true},
		{"cols match unsorted incorrect", colsMatchUnsorted,
			rs([]string{"col1", "col3"}), rs(ab), false},
		{"col counts match", colCountsMatch, rs(ab), rs(ab), true},
		{"col counts match incorrect", colCountsMatch,
			rs([]string{"col1"}), rs(ab), false},
		{"col counts close", colCountsClose,
			rs(ab), rs([]string{"col1", "col2", "col3", "col4"}), true},
		{"col counts close incorrect", colCountsClose,
			rs([]string{"col1"}), rs([]string{"col1", "col2", "col3", "col4"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(compare(tt.student, tt.grader)))
		})
	}
}

func TestKeywordsMatch(t *testing.T) {
	tests := []struct {
		name    string
		student string
		grader  string
		missing []string
	}{
		{
			name:    "all present",
			student: "select a from t where b = 1 order by a desc",
			grader:  "SELECT a FROM t WHERE b = 1 ORDER BY a DESC",
		},
		{
			name:    "missing order by",
			student: "SELECT a FROM t",
			grader:  "SELECT a FROM t ORDER BY a",
			missing: []string{"ORDER BY"},
		},
		{
			name:    "phrase split by comment",
			student: "SELECT a FROM t ORDER /* sort */ BY a",
			grader:  "SELECT a FROM t ORDER BY a",
		},
		{
			name:    "keyword only in student string",
			student: "SELECT 'ORDER BY' FROM t",
			grader:  "SELECT a FROM t ORDER BY a",
			missing: []string{"ORDER BY"},
		},
		{
			name:    "left join counts as join",
			student: "SELECT a FROM t LEFT JOIN u ON t.id = u.id",
			grader:  "SELECT a FROM t JOIN u ON t.id = u.id",
		},
		{
			name:    "no substring matches",
			student: "SELECT a FROM t",
			grader:  "SELECT CASE WHEN a THEN 1 END AS descr FROM t",
		},
		{
			name:    "extra student keywords are fine",
			student: "SELECT a FROM t GROUP BY a LIMIT 5",
			grader:  "SELECT a FROM t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newComparison(tt.student, nil, tt.grader, nil, DefaultKeywords(), DefaultTolerance)
			assert.Equal(t, tt.missing, c.missing)
			assert.Equal(t, len(tt.missing) == 0, keywordsMatch(c))
		})
	}
}

func TestWithin(t *testing.T) {
	assert.True(t, within(2, 4, 0.5))
	assert.True(t, within(6, 4, 0.5))
	assert.False(t, within(7, 4, 0.5))
	assert.True(t, within(0, 0, 0.5))
	assert.False(t, within(1, 0, 0.5))
}
