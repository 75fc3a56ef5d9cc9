package render

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/leapstack-labs/leapgrade/pkg/result"
)

// CSV encodes every row of rs, header first. NULL becomes an empty field.
func CSV(rs *result.ResultSet) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if rs.ColumnCount() > 0 {
		if err := w.Write(rs.Columns); err != nil {
			return nil, fmt.Errorf("failed to write csv header: %w", err)
		}
	}

	if rs != nil {
		record := make([]string, 0, len(rs.Columns))
		for _, row := range rs.Rows {
			record = record[:0]
			for _, v := range row {
				if v == nil {
					record = append(record, "")
					continue
				}
				record = append(record, result.Format(v))
			}
			if err := w.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}
