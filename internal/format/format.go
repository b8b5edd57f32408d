// Package format renders calculation reports as markdown, JSON or YAML and
// exports calculation history to spreadsheets.
package format

import (
	"fmt"
	"strings"
)

// DefaultPrecision is the number of decimals kept for factors and days
const DefaultPrecision = 2

// Output formats
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
)

// Formatter renders a report
type Formatter interface {
	Format(report *Report) (string, error)
}

// New returns the formatter for the given format name. An empty name
// selects markdown.
func New(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", FormatMarkdown, "md":
		return NewMarkdownFormatter(), nil
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatYAML, "yml":
		return NewYAMLFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown format '%s', expected markdown, json or yaml", name)
	}
}
