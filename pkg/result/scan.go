package result

import (
	"database/sql"
	"fmt"
)

// Scan reads rows into a ResultSet, stopping after maxRows rows when
// maxRows > 0. The caller still owns rows and must close it.
func Scan(rows *sql.Rows, maxRows int) (*ResultSet, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	rs := &ResultSet{Columns: columns, Rows: []Row{}}
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(rs.Rows)+1, err)
		}
		row := make(Row, len(values))
		for i, v := range values {
			row[i] = Normalize(v)
		}
		rs.Rows = append(rs.Rows, row)

		if maxRows > 0 && len(rs.Rows) >= maxRows {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return rs, nil
}
