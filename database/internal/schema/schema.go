// Package schema compares a live table definition against the columns a
// backend expects to find after migration.
package schema

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Column describes one column as reported by the database catalog.
type Column struct {
	Type     string
	Nullable bool
}

// Columns maps column names to their definitions.
type Columns map[string]Column

// MismatchError lists every difference found in a single table.
type MismatchError struct {
	Table    string
	Missing  []string
	Mismatch []string
}

func (e *MismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table %s does not match the expected schema", e.Table)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "; missing columns: %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Mismatch) > 0 {
		fmt.Fprintf(&b, "; mismatched columns: %s", strings.Join(e.Mismatch, "; "))
	}
	return b.String()
}

// Compare reports the columns of want that are absent from got or differ in
// type or nullability. Types are compared case-insensitively. Extra columns
// in got are ignored. It returns nil when the table matches.
func Compare(table string, want, got Columns) error {
	e := &MismatchError{Table: table}

	for _, name := range slices.Sorted(maps.Keys(want)) {
		w := want[name]
		g, ok := got[name]
		if !ok {
			e.Missing = append(e.Missing, name)
			continue
		}
		if !strings.EqualFold(g.Type, w.Type) {
			e.Mismatch = append(e.Mismatch, fmt.Sprintf("%s: expected %s, got %s", name, w.Type, strings.ToLower(g.Type)))
		}
		if g.Nullable != w.Nullable {
			e.Mismatch = append(e.Mismatch, fmt.Sprintf("%s: expected nullable=%t, got nullable=%t", name, w.Nullable, g.Nullable))
		}
	}

	if len(e.Missing) == 0 && len(e.Mismatch) == 0 {
		return nil
	}
	return e
}
