package server

import (
	"fmt"
	"strings"

	"github.com/supertime1/MCP-demo/internal/clickstore"
)

// formatTable renders a query result as an aligned text table, capping the
// rendered rows at displayRows with a truncation note.
func formatTable(res *clickstore.Result, displayRows int) string {
	if res.RowCount() == 0 {
		return fmt.Sprintf("Query returned no rows (%.2fms).", res.ElapsedMs)
	}

	widths := make([]int, len(res.Columns))
	for i, col := range res.Columns {
		widths[i] = len(col)
	}
	shown := res.RowCount()
	if displayRows > 0 && shown > displayRows {
		shown = displayRows
	}
	cells := make([][]string, shown)
	for i := 0; i < shown; i++ {
		cells[i] = make([]string, len(res.Columns))
		for j, v := range res.Rows[i] {
			cells[i][j] = cellString(v)
			if len(cells[i][j]) > widths[j] {
				widths[j] = len(cells[i][j])
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Query Results (%d rows, %.2fms):\n", res.RowCount(), res.ElapsedMs)

	header := make([]string, len(res.Columns))
	for i, col := range res.Columns {
		header[i] = pad(col, widths[i])
	}
	headerLine := strings.Join(header, " | ")
	b.WriteString(headerLine + "\n")
	b.WriteString(strings.Repeat("-", len(headerLine)) + "\n")

	for _, row := range cells {
		for i := range row {
			row[i] = pad(row[i], widths[i])
		}
		b.WriteString(strings.Join(row, " | ") + "\n")
	}

	if res.RowCount() > shown {
		fmt.Fprintf(&b, "... (%d more rows)\n", res.RowCount()-shown)
	}
	if res.Truncated {
		b.WriteString("Results truncated at the row cap.\n")
	}
	return b.String()
}

// formatRecords renders rows vertically with column names, the way sample
// data reads best.
func formatRecords(table string, res *clickstore.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sample data from %q (%d rows):\n", table, res.RowCount())
	for i, row := range res.Rows {
		fmt.Fprintf(&b, "\nRow %d:\n", i+1)
		for j, col := range res.Columns {
			fmt.Fprintf(&b, "  %s: %s\n", col, cellString(row[j]))
		}
	}
	return b.String()
}

func cellString(v interface{}) string {
	switch n := v.(type) {
	case nil:
		return "NULL"
	case float64:
		return fmt.Sprintf("%.2f", n)
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(n))
	default:
		return fmt.Sprint(v)
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
