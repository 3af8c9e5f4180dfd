package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"assetimport/internal/domain"
	"assetimport/internal/report"
)

// Output formats for commands that print a report.
const (
	formatTable = "table"
	formatJSON  = "json"
)

func renderTable(w io.Writer, view report.View) {
	if len(view.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Row", "Status", "Message"})
	for _, r := range view.Rows {
		t.AppendRow(table.Row{r.RowNumber, r.Status, r.Message})
	}
	t.Render()

	_, _ = fmt.Fprintln(w, view.Headline)
	for _, code := range domain.ErrorCodes {
		if n := view.Summary.Breakdown[code]; n > 0 {
			_, _ = fmt.Fprintf(w, "  %s %s: %d\n", code.Marker(), code.Label(), n)
		}
	}
}
