// Package diag provides diagnostic (error/warning) types for the interpreter.
package diag

import (
	"fmt"
	"lox-lang/internal/span"
	"strings"
)

// Severity indicates the severity of a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity by name in JSON output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Diagnostic represents a diagnostic message tied to a source span.
type Diagnostic struct {
	Code     string    `json:"code"`           // stable error code, e.g. "E1001"
	Severity Severity  `json:"severity"`       // error or warning
	Message  string    `json:"message"`        // human-readable description
	Span     span.Span `json:"span"`           // source location
	Hint     string    `json:"hint,omitempty"` // optional hint
}

// String returns a human-readable representation of the diagnostic.
func (d Diagnostic) String() string {
	prefix := d.Severity.String()
	loc := fmt.Sprintf("%d:%d", d.Span.Start.Line, d.Span.Start.Column)
	msg := fmt.Sprintf("[%s] %s at %s: %s", d.Code, prefix, loc, d.Message)
	if d.Hint != "" {
		msg += " (hint: " + d.Hint + ")"
	}
	return msg
}

// Errorf creates an error diagnostic at the given span.
func Errorf(code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}

// Warningf creates a warning diagnostic at the given span.
func Warningf(code string, s span.Span, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		Span:     s,
	}
}

// HasErrors reports whether any diagnostic in diags is an error.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Snippet renders the source line holding d with a caret marker under the
// offending span, prefixed by filename:line:column.
//
//	main.lox:3:7
//	 3 | print x + 1;
//	   |       ^
func Snippet(source, filename string, d Diagnostic) string {
	start := d.Span.Start
	if start.Line < 1 || start.Offset > len(source) {
		return fmt.Sprintf("%s:%s", filename, start)
	}

	lineStart := strings.LastIndexByte(source[:start.Offset], '\n') + 1
	lineEnd := strings.IndexByte(source[start.Offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(source)
	} else {
		lineEnd += start.Offset
	}
	line := source[lineStart:lineEnd]

	width := d.Span.Len()
	if width < 1 || start.Offset+width > lineEnd {
		width = 1
	}

	gutter := fmt.Sprintf("%d", start.Line)
	pad := strings.Repeat(" ", len(gutter))

	var b strings.Builder
	fmt.Fprintf(&b, "%s:%s\n", filename, start)
	fmt.Fprintf(&b, " %s | %s\n", gutter, line)
	fmt.Fprintf(&b, " %s | %s%s", pad, strings.Repeat(" ", start.Offset-lineStart), strings.Repeat("^", width))
	return b.String()
}
