// Package render turns a schema-less result set into a grid of display
// strings and writes it out as JSON, text, HTML, CSV or Markdown.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/melkeydev/logistics-admin/types"
)

// Placeholder is shown instead of a table when there are no rows.
const Placeholder = "No data available in this table"

var ErrUnsupportedFormat = errors.New("unsupported format")

type Format string

const (
	FormatJSON     Format = "json"
	FormatText     Format = "text"
	FormatHTML     Format = "html"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts the usual aliases; an empty string means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "table":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "html":
		return FormatHTML, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnsupportedFormat, s)
	}
}

// Grid is a rendered table: one cell per header in every row.
type Grid struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	Message string     `json:"message,omitempty"`
}

func (g Grid) Empty() bool {
	return len(g.Rows) == 0
}

// Headers returns the union of keys over all rows. Columns reported by the
// backend come first in their order, then any other keys in the order they
// are first seen (sorted within a row, since a row has no key order).
func Headers(rs *types.ResultSet) []string {
	if rs == nil {
		return nil
	}
	present := make(map[string]bool)
	for _, row := range rs.Rows {
		for k := range row {
			present[k] = true
		}
	}

	headers := make([]string, 0, len(present))
	seen := make(map[string]bool, len(present))
	for _, c := range rs.Columns {
		if present[c] && !seen[c] {
			headers = append(headers, c)
			seen[c] = true
		}
	}
	for _, row := range rs.Rows {
		extra := make([]string, 0)
		for k := range row {
			if !seen[k] {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		for _, k := range extra {
			headers = append(headers, k)
			seen[k] = true
		}
	}
	return headers
}

// Build renders every row against the header union.
func Build(rs *types.ResultSet) Grid {
	headers := Headers(rs)
	if rs == nil || len(rs.Rows) == 0 {
		return Grid{Headers: []string{}, Rows: [][]string{}, Message: Placeholder}
	}

	grid := Grid{Headers: headers, Rows: make([][]string, len(rs.Rows))}
	for i, row := range rs.Rows {
		cells := make([]string, len(headers))
		for j, h := range headers {
			v, ok := row[h]
			cells[j] = FormatCell(v, ok)
		}
		grid.Rows[i] = cells
	}
	return grid
}

// FormatCell converts one value for display. A key missing from the row
// renders empty, a present nil renders "null", nested values become JSON.
func FormatCell(v any, present bool) string {
	if !present {
		return ""
	}
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}

// Write renders rs to w in the requested format.
func Write(w io.Writer, rs *types.ResultSet, format Format) error {
	grid := Build(rs)

	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(grid)
	}

	if grid.Empty() {
		if format == FormatHTML {
			_, err := fmt.Fprintf(w, "<p class=\"empty\">%s</p>\n", Placeholder)
			return err
		}
		_, err := fmt.Fprintln(w, Placeholder)
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().HTML.CSSClass = "data-table"

	header := make(table.Row, len(grid.Headers))
	for i, h := range grid.Headers {
		header[i] = h
	}
	t.AppendHeader(header)
	for _, cells := range grid.Rows {
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		t.AppendRow(row)
	}

	switch format {
	case FormatHTML:
		t.RenderHTML()
	case FormatCSV:
		t.RenderCSV()
	case FormatMarkdown:
		t.RenderMarkdown()
	default:
		t.Render()
		_, _ = fmt.Fprintf(w, "(%d rows)\n", len(grid.Rows))
	}
	return nil
}
