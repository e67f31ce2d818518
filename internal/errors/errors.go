// Package errors formats lexer and parser diagnostics with source
// context — a line/column header, the offending source line, and a
// caret pointing at the column — independent of the structured
// runtime error taxonomy in internal/stgerr.
package errors

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-stg/internal/lexer"
)

// SourceError represents a single lex or parse error with position
// and source context, ready for pretty printing.
type SourceError struct {
	Message string
	Source  string
	File    string
	Pos     lexer.Position
}

// NewSourceError creates a SourceError.
func NewSourceError(pos lexer.Position, message, source, file string) *SourceError {
	return &SourceError{Pos: pos, Message: message, Source: source, File: file}
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return e.Format(false)
}

// Format renders the error with source context. If color is true,
// ANSI escapes highlight the caret and message.
func (e *SourceError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "Error in %s:%d:%d\n", e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "Error at line %d:%d\n", e.Pos.Line, e.Pos.Column)
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")

		sb.WriteString(strings.Repeat(" ", len(prefix)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}

	return sb.String()
}

func (e *SourceError) sourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FromStrings wraps plain parser-error strings (each already carrying
// a "(line N, column M)" suffix, see internal/parser's addErrorf) into
// SourceErrors positioned at the file start, since the string form
// does not retain a structured Position. Callers that have one should
// build a SourceError with NewSourceError directly instead.
func FromStrings(messages []string, source, file string) []*SourceError {
	out := make([]*SourceError, len(messages))
	for i, m := range messages {
		out[i] = NewSourceError(lexer.Position{Line: 1, Column: 1}, m, source, file)
	}
	return out
}

// FormatAll formats a slice of SourceErrors, separated by blank lines.
func FormatAll(errs []*SourceError, color bool) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Format(color)
	}
	return strings.Join(parts, "\n\n")
}
