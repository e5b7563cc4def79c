// Package output renders command results as tables, markdown or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// Report is a tabular command result. JSON output encodes the report value
// itself, so implementations carry json tags.
type Report interface {
	Title() string
	Header() table.Row
	Rows() []table.Row
	// Footer may return nil.
	Footer() table.Row
}

// Render writes r to w in the requested format.
func Render(w io.Writer, format Format, r Report) error {
	if format == FormatJSON {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	if title := r.Title(); title != "" {
		t.SetTitle(title)
	}
	t.AppendHeader(r.Header())
	for _, row := range r.Rows() {
		t.AppendRow(row)
	}
	if footer := r.Footer(); footer != nil {
		t.AppendFooter(footer)
	}

	var rendered string
	if format == FormatMarkdown {
		rendered = t.RenderMarkdown()
	} else {
		rendered = t.Render()
	}
	_, err := fmt.Fprintln(w, rendered)
	return err
}
