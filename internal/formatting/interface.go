// Package formatting renders command output as a table, JSON or YAML.
package formatting

import (
	"fmt"
	"io"
	"strings"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// Formats lists the accepted values of an --output flag.
func Formats() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatYAML)}
}

// ParseFormat validates an --output flag value. Empty means table.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use one of: %s)", s, strings.Join(Formats(), ", "))
	}
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Color  bool // Enable colored table headers
}

// Table is tabular output. Data is what JSON and YAML encode; when nil the
// rows are encoded as a list of header-keyed objects.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
	Data   interface{}
}

// Render writes t to w in the configured format.
func Render(w io.Writer, opts Options, t Table) error {
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, t.structured())
	case FormatYAML:
		return writeYAML(w, t.structured())
	case FormatTable, "":
		return writeTable(w, opts, t)
	default:
		return fmt.Errorf("unsupported output format %q", opts.Format)
	}
}

func (t Table) structured() interface{} {
	if t.Data != nil {
		return t.Data
	}
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		item := make(map[string]string, len(t.Header))
		for i, h := range t.Header {
			if i < len(row) {
				item[strings.ToLower(h)] = row[i]
			}
		}
		out = append(out, item)
	}
	return out
}
