// Package diag is the diagnostic currency shared by the parser, the
// linter, and the language server. Codes carry a PV prefix: PV0xxx for
// parse-time problems, PV1xxx for lint findings.
package diag

import "fmt"

// Severity orders error > warning > info; the LSP server maps these onto
// protocol severities one to one.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Range locates a diagnostic in source. Line and Col are 1-based; Length
// is the offending token's length when known, 1 otherwise.
type Range struct {
	Line   int
	Col    int
	Length int
}

type Diagnostic struct {
	Code     string // "PV0001" etc; empty for untagged messages
	Message  string
	Severity Severity
	Range    Range
}

// Format renders the one-line path:line:col form the CLI prints.
func (d Diagnostic) Format(path string) string {
	loc := fmt.Sprintf("%s:%d:%d", path, d.Range.Line, d.Range.Col)
	if d.Code == "" {
		return fmt.Sprintf("%s: %s: %s", loc, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s %s: %s", loc, d.Severity, d.Code, d.Message)
}
