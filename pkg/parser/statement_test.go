package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single statement",
			input: "SELECT * FROM foo",
			want:  []string{"SELECT * FROM foo"},
		},
		{
			name:  "two statements",
			input: "SELECT 1; SELECT 2",
			want:  []string{"SELECT 1", " SELECT 2"},
		},
		{
			name:  "trailing semicolon",
			input: "SELECT 1;",
			want:  []string{"SELECT 1", ""},
		},
		{
			name:  "semicolon in string",
			input: "SELECT ';' FROM foo",
			want:  []string{"SELECT ';' FROM foo"},
		},
		{
			name:  "semicolon in comments",
			input: "SELECT 1 -- a; b\n/* c; d */; SELECT 2",
			want:  []string{"SELECT 1 -- a; b\n/* c; d */", " SELECT 2"},
		},
		{
			name:  "empty input",
			input: "",
			want:  []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := Split(tt.input)
			require.Len(t, stmts, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want, stmts[i].Text())
			}
			assert.Equal(t, tt.input, Join(stmts))
		})
	}
}

func TestStatement_IsEmpty(t *testing.T) {
	stmts := Split("SELECT 1; -- nothing here\n")
	require.Len(t, stmts, 2)
	assert.False(t, stmts[0].IsEmpty())
	assert.True(t, stmts[1].IsEmpty())
}

func TestStatement_WithTokenDoesNotMutate(t *testing.T) {
	stmt := Split("SELECT 1")[0]
	last := len(stmt.Tokens) - 1

	replaced := stmt.WithToken(last, stmt.Tokens[last])
	replaced.Tokens[last].Text = "2"

	assert.Equal(t, "SELECT 1", stmt.Text())
	assert.Equal(t, "SELECT 2", replaced.Text())
}

func TestStatement_Significant(t *testing.T) {
	stmt := Split("SELECT /* x */ 1")[0]
	// SELECT, ws, comment, ws, 1
	require.Len(t, stmt.Tokens, 5)
	assert.Equal(t, 4, stmt.NextSignificant(0))
	assert.Equal(t, 0, stmt.PrevSignificant(4))
	assert.Equal(t, -1, stmt.NextSignificant(4))
	assert.Equal(t, -1, stmt.PrevSignificant(0))
}
