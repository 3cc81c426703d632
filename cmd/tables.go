package cmd

import (
	"io"

	pkgstrings "conductor/pkg/strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// createTable creates a new table with standard styling writing to out.
func createTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	return t
}

// header colors column titles the same way across all commands.
func header(titles ...string) table.Row {
	row := make(table.Row, 0, len(titles))
	for _, title := range titles {
		row = append(row, text.FgHiCyan.Sprint(title))
	}
	return row
}

// truncate shortens long cell values so tables stay readable.
func truncate(s string, max int) string {
	return pkgstrings.TruncateDescription(s, max)
}
