package formatting

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func writeTable(w io.Writer, opts Options, t Table) error {
	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No items found")
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	if t.Title != "" {
		tw.SetTitle(t.Title)
	}

	header := make(table.Row, len(t.Header))
	for i, h := range t.Header {
		if opts.Color {
			header[i] = text.FgHiCyan.Sprint(h)
		} else {
			header[i] = h
		}
	}
	tw.AppendHeader(header)

	for _, row := range t.Rows {
		r := make(table.Row, len(row))
		for i, v := range row {
			r[i] = v
		}
		tw.AppendRow(r)
	}
	tw.Render()
	return nil
}
