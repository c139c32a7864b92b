// Package formatutil renders runtime values as cell text for display.
package formatutil

import (
	"fmt"
	"unicode/utf8"

	"pyviz/internal/object"
)

// MaxCellRunes caps how much of a value a single cell shows.
const MaxCellRunes = 60

// CellText is the display form of a value: its repr, truncated with an
// ellipsis when it would not fit a cell.
func CellText(o object.Object) string {
	return Truncate(o.Inspect(), MaxCellRunes)
}

// Truncate cuts s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	if n <= 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}

// Args renders a call argument list for a scope header: "n=5, depth=0".
func Args(names []string, values []object.Object) string {
	out := ""
	for i, name := range names {
		if i > 0 {
			out += ", "
		}
		if i < len(values) {
			out += fmt.Sprintf("%s=%s", name, values[i].Inspect())
		} else {
			out += name
		}
	}
	return out
}

// ScopeLabel is the header text for a scope box.
func ScopeLabel(name string) string {
	return "Scope: " + name + "()"
}
