package cli

import (
	"os"
	"strings"
	"text/tabwriter"
)

// Table provides a simple table formatter.
type Table struct {
	w       *tabwriter.Writer
	headers []string
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	t := &Table{
		w:       tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0),
		headers: headers,
	}
	if len(headers) > 0 {
		_, _ = t.w.Write([]byte(strings.Join(headers, "\t") + "\n"))
	}
	return t
}

// Row adds a row to the table.
func (t *Table) Row(values ...string) {
	_, _ = t.w.Write([]byte(strings.Join(values, "\t") + "\n"))
}

// Flush writes the table output.
func (t *Table) Flush() {
	_ = t.w.Flush()
}
