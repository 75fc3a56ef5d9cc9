// Package render turns grading outcomes into the HTML message shown to
// students, the CSV offered for download, and the text tables printed by
// the CLI. Every function here is pure.
package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/leapstack-labs/leapgrade/pkg/result"
)

const noRowsHTML = "<pre><code>No rows found.</code></pre>"

// HTMLTable renders rs as an HTML table showing at most rowLimit rows. When
// rows are hidden a "Showing X of Y rows." line follows the table. rowLimit
// < 1 shows every row.
// Cell text is escaped and NULL prints as NULL.
func HTMLTable(rs *result.ResultSet, rowLimit int) template.HTML {
	total := rs.RowCount()
	if total < 1 {
		return template.HTML(noRowsHTML)
	}

	shown := rs.Head(rowLimit)

	t := newWriter(shown)
	t.Style().HTML.CSSClass = "results"
	t.Style().HTML.EscapeText = true

	html := "<pre><code>" + t.RenderHTML() + "</code></pre>"
	if shown.RowCount() < total {
		html += Stats(shown.RowCount(), total)
	}
	return template.HTML(html) //nolint:gosec // cell text escaped by go-pretty
}

// Stats renders the row count line under a results table.
func Stats(displayed, total int) string {
	plural := "s"
	if total == 1 {
		plural = ""
	}
	return fmt.Sprintf("<p><small>Showing %d of %d row%s.</small></p>", displayed, total, plural)
}

// TextTable writes rs to w as a box-drawn table for terminals, limited to
// rowLimit rows when rowLimit >= 1.
func TextTable(w io.Writer, rs *result.ResultSet, rowLimit int) {
	total := rs.RowCount()
	if total == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	shown := rs.Head(rowLimit)
	t := newWriter(shown)
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.Render()

	if shown.RowCount() < total {
		_, _ = fmt.Fprintf(w, "(%d of %d rows)\n", shown.RowCount(), total)
		return
	}
	_, _ = fmt.Fprintf(w, "(%d rows)\n", total)
}

func newWriter(rs *result.ResultSet) table.Writer {
	t := table.NewWriter()
	t.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(rs.Columns))
	for i, col := range rs.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range rs.Rows {
		cells := make(table.Row, len(row))
		for i, v := range row {
			cells[i] = result.Format(v)
		}
		t.AppendRow(cells)
	}
	return t
}
