// Package result models the tabular output of an executed query.
//
// A ResultSet is produced once per query and never modified afterwards.
// Cells hold normalized scalars (see Normalize), and NULL is always nil,
// which keeps it distinct from the empty string and from zero.
package result

// Row is one result row, in column order.
type Row []any

// ResultSet is the ordered columns and rows returned by a query. Column
// names need not be unique.
type ResultSet struct {
	Columns []string `json:"columns" yaml:"columns"`
	Rows    []Row    `json:"rows" yaml:"rows"`
}

// New builds a ResultSet, normalizing every cell.
func New(columns []string, rows ...Row) *ResultSet {
	rs := &ResultSet{Columns: columns, Rows: make([]Row, 0, len(rows))}
	for _, row := range rows {
		norm := make(Row, len(row))
		for i, v := range row {
			norm[i] = Normalize(v)
		}
		rs.Rows = append(rs.Rows, norm)
	}
	return rs
}

// RowCount returns the number of rows. A nil ResultSet has none.
func (rs *ResultSet) RowCount() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// ColumnCount returns the number of columns. A nil ResultSet has none.
func (rs *ResultSet) ColumnCount() int {
	if rs == nil {
		return 0
	}
	return len(rs.Columns)
}

// Head returns a ResultSet holding at most the first n rows. n < 1 means
// all rows. The receiver is not modified.
func (rs *ResultSet) Head(n int) *ResultSet {
	if rs == nil {
		return &ResultSet{}
	}
	if n < 1 || n >= len(rs.Rows) {
		return rs
	}
	return &ResultSet{Columns: rs.Columns, Rows: rs.Rows[:n]}
}
