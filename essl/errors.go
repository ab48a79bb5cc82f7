package essl

import (
	"fmt"
	"strings"

	"github.com/gogpu/translator/ir"
)

// Severity of a diagnostic.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

// SourceError represents a diagnostic with source location information.
type SourceError struct {
	Severity Severity
	Message  string
	Pos      ir.Pos
	Source   string // Joined shader source (for context display)
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Pos.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// InfoLogLine returns the diagnostic as one info log line, e.g.
// "ERROR: 0:3: 'x' : undeclared identifier".
func (e *SourceError) InfoLogLine() string {
	prefix := "ERROR"
	if e.Severity == SeverityWarning {
		prefix = "WARNING"
	}
	return fmt.Sprintf("%s: 0:%d: %s", prefix, e.Pos.Line, e.Message)
}

// FormatWithContext returns the error message with source context.
// Shows the problematic line with a caret pointing to the error location.
func (e *SourceError) FormatWithContext() string {
	if e.Source == "" || e.Pos.Line == 0 {
		return e.Error()
	}

	lines := strings.Split(e.Source, "\n")
	lineNum := e.Pos.Line
	if lineNum < 1 || lineNum > len(lines) {
		return e.Error()
	}

	line := lines[lineNum-1]
	col := e.Pos.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}

	label := "error"
	if e.Severity == SeverityWarning {
		label = "warning"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", label, e.Message)
	fmt.Fprintf(&sb, "  --> line %d:%d\n", lineNum, col)
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", lineNum, line)
	fmt.Fprintf(&sb, "   | %s^\n", strings.Repeat(" ", col-1))

	return sb.String()
}

// SourceErrors represents a list of diagnostics.
type SourceErrors []*SourceError

// Error implements the error interface.
func (el SourceErrors) Error() string {
	if len(el) == 0 {
		return "no errors"
	}
	if len(el) == 1 {
		return el[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", el[0].Error(), len(el)-1)
}

// FormatAll returns all diagnostics formatted with context.
func (el SourceErrors) FormatAll() string {
	var sb strings.Builder
	for i, e := range el {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(e.FormatWithContext())
	}
	return sb.String()
}

// Add adds a diagnostic to the list.
func (el *SourceErrors) Add(err *SourceError) {
	*el = append(*el, err)
}

// Len returns the number of diagnostics.
func (el SourceErrors) Len() int {
	return len(el)
}

// HasErrors reports whether any diagnostic is an error rather than a
// warning.
func (el SourceErrors) HasErrors() bool {
	for _, e := range el {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}
