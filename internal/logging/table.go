// Package logging sets up the structured logger and formats property bag
// comparison tables (Module → Capture → Playback).

package logging

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/linuxmatters/ladspa-source/internal/graph"
	"github.com/linuxmatters/ladspa-source/internal/props"
)

// PropRow represents a single key in a comparison table.
type PropRow struct {
	Key    string   // Property key, e.g., "node.name"
	Values []string // One value per column (Module, Capture, Playback); "" when unset
	Kind   string   // Optional rendering kind (only shown if non-empty)
}

// PropTable formats aligned columns for property bag comparison.
// Handles variable column widths, missing values, and optional kind column.
type PropTable struct {
	Headers []string  // Column headers, e.g., ["Module", "Capture", "Playback"]
	Rows    []PropRow // Data rows
}

// MaxValueWidth is the widest value shown before truncation
const MaxValueWidth = 40

// MissingValue is the placeholder for keys absent from a bag
const MissingValue = "-"

// String renders the table with aligned columns.
// - Keys and values are left-aligned
// - Values wider than MaxValueWidth are truncated
// - Kind column only shown if any row has one
func (t *PropTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	hasKind := false
	for _, row := range t.Rows {
		if row.Kind != "" {
			hasKind = true
			break
		}
	}

	keyWidth := len("Key")
	for _, row := range t.Rows {
		if w := utf8.RuneCountInString(row.Key); w > keyWidth {
			keyWidth = w
		}
	}

	valueWidths := make([]int, len(t.Headers))
	for i, header := range t.Headers {
		valueWidths[i] = len(header)
	}
	for _, row := range t.Rows {
		for i := range valueWidths {
			if w := utf8.RuneCountInString(cell(row, i)); w > valueWidths[i] {
				valueWidths[i] = w
			}
		}
	}

	var sb strings.Builder

	// Header row
	header := fmt.Sprintf("%-*s  ", keyWidth, "Key")
	for i, h := range t.Headers {
		header += fmt.Sprintf("%-*s  ", valueWidths[i], h)
	}
	if hasKind {
		header += "Kind"
	}
	sb.WriteString(strings.TrimRight(header, " "))
	sb.WriteString("\n")

	for _, row := range t.Rows {
		line := fmt.Sprintf("%-*s  ", keyWidth, row.Key)
		for i := range t.Headers {
			line += fmt.Sprintf("%-*s  ", valueWidths[i], cell(row, i))
		}
		if hasKind {
			line += row.Kind
		}
		sb.WriteString(strings.TrimRight(line, " "))
		sb.WriteString("\n")
	}

	return sb.String()
}

func cell(row PropRow, i int) string {
	if i >= len(row.Values) || row.Values[i] == "" {
		return MissingValue
	}
	return truncate(row.Values[i], MaxValueWidth)
}

// truncate shortens s to width runes, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// =============================================================================
// Table Builder Helpers
// =============================================================================

// NewPropTable creates a new PropTable with standard Module/Capture/Playback headers.
func NewPropTable() *PropTable {
	return &PropTable{
		Headers: []string{"Module", "Capture", "Playback"},
		Rows:    make([]PropRow, 0),
	}
}

// AddRow adds a row to the table with pre-formatted values.
func (t *PropTable) AddRow(key string, values []string, kind string) {
	t.Rows = append(t.Rows, PropRow{
		Key:    key,
		Values: values,
		Kind:   kind,
	})
}

// AddBags adds one row per key found in any of the bags, in order of first
// appearance. The kind column shows how the first value is rendered into the
// filter-chain document.
func (t *PropTable) AddBags(bags ...*props.Props) {
	var keys []string
	seen := map[string]bool{}
	for _, b := range bags {
		if b == nil {
			continue
		}
		for _, k := range b.Keys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}

	for _, k := range keys {
		values := make([]string, len(bags))
		kind := ""
		for i, b := range bags {
			if b == nil {
				continue
			}
			if v, ok := b.Get(k); ok {
				values[i] = v
				if kind == "" {
					kind = graph.ClassifyString(v).Kind.String()
				}
			}
		}
		t.AddRow(k, values, kind)
	}
}
