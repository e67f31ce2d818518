// Package ast defines the abstract syntax tree for STG source programs.
//
// The data model is a small closed set of tagged unions (Atom,
// Expression, CaseAlternative) rather than an open class hierarchy:
// every concrete node exposes a Pos and a String for diagnostics, and
// the handful of variants are meant to be exhaustively switched over
// by the compiler and evaluator.
package ast

import (
	"strings"

	"github.com/cwbudde/go-stg/internal/lexer"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	// Pos returns the position of the node in the source for error reporting.
	Pos() lexer.Position
	// String renders the node back to STG surface syntax, for debugging.
	String() string
}

// UpdateFlag distinguishes updatable thunks (\u) from non-updatable
// closures (\n): data constructors and partial applications are \n,
// thunks are \u.
type UpdateFlag int

const (
	NoUpdate UpdateFlag = iota
	Update
)

func (u UpdateFlag) String() string {
	if u == Update {
		return "\\u"
	}
	return "\\n"
}

// LambdaForm is `{freeVars} (\u|\n) {boundVars} -> body`.
type LambdaForm struct {
	Position   lexer.Position
	FreeVars   []string
	UpdateFlag UpdateFlag
	BoundVars  []string
	Body       Expression
}

func (l *LambdaForm) Pos() lexer.Position { return l.Position }

func (l *LambdaForm) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	sb.WriteString(strings.Join(l.FreeVars, ", "))
	sb.WriteString("} ")
	sb.WriteString(l.UpdateFlag.String())
	sb.WriteString(" {")
	sb.WriteString(strings.Join(l.BoundVars, ", "))
	sb.WriteString("} -> ")
	sb.WriteString(l.Body.String())
	return sb.String()
}

// Binding is `name = lambda-form`.
type Binding struct {
	Position lexer.Position
	Name     string
	Lambda   *LambdaForm
}

func (b *Binding) Pos() lexer.Position { return b.Position }

func (b *Binding) String() string {
	return b.Name + " = " + b.Lambda.String()
}

// Program is an ordered list of top-level bindings.
type Program struct {
	Bindings []*Binding
}

func (p *Program) Pos() lexer.Position {
	if len(p.Bindings) > 0 {
		return p.Bindings[0].Pos()
	}
	return lexer.Position{Line: 1, Column: 1}
}

func (p *Program) String() string {
	parts := make([]string, len(p.Bindings))
	for i, b := range p.Bindings {
		parts[i] = "define " + b.String() + ";"
	}
	return strings.Join(parts, "\n")
}
