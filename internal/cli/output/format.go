// Package output renders command results as tables, JSON, or YAML.
package output

import (
	"fmt"
	"strings"
)

// Format selects how command results are rendered.
type Format string

const (
	// FormatTable renders results as an aligned text table.
	FormatTable Format = "table"
	// FormatJSON renders results as indented JSON.
	FormatJSON Format = "json"
	// FormatYAML renders results as YAML.
	FormatYAML Format = "yaml"
)

// formats maps accepted --output values to their canonical Format.
// The empty string keeps table as the default.
var formats = map[string]Format{
	"":      FormatTable,
	"table": FormatTable,
	"json":  FormatJSON,
	"yaml":  FormatYAML,
	"yml":   FormatYAML,
}

// ParseFormat resolves a --output flag value to a Format.
func ParseFormat(s string) (Format, error) {
	f, ok := formats[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown output format %q (want table, json, or yaml)", s)
	}
	return f, nil
}

// String returns the flag spelling of the format.
func (f Format) String() string {
	return string(f)
}
