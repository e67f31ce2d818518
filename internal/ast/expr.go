package ast

import (
	"strconv"
	"strings"

	"github.com/cwbudde/go-stg/internal/lexer"
)

// Expression is the sum of all evaluable STG expression forms:
// FnApplication, Let, Case, Constructor, Int. There is
// deliberately no Binop variant — arithmetic written with `+ - * /` in
// source is desugared by the parser into FnApplication of the
// corresponding intrinsic (plus#/minus#/times#/divide#) so the
// evaluator never needs a sixth case.
type Expression interface {
	Node
	expressionNode()
}

// FnApplication applies a variable (bound to a closure address, or an
// intrinsic name) to a list of atomic arguments.
type FnApplication struct {
	Position lexer.Position
	Fn       string
	Args     []Atom
}

func (e *FnApplication) expressionNode()      {}
func (e *FnApplication) Pos() lexer.Position  { return e.Position }
func (e *FnApplication) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return e.Fn + " {" + strings.Join(parts, ", ") + "}"
}

// LetExpr allocates a group of bindings as closures, then evaluates
// Body under the extended environment. Recursive lets (letrec) let
// the bindings see one another (and themselves) when resolving free
// variables; non-recursive lets resolve bindings' free variables only
// against the outer environment.
type LetExpr struct {
	Position    lexer.Position
	IsRecursive bool
	Bindings    []*Binding
	Body        Expression
}

func (e *LetExpr) expressionNode()     {}
func (e *LetExpr) Pos() lexer.Position { return e.Position }
func (e *LetExpr) String() string {
	kw := "let"
	if e.IsRecursive {
		kw = "letrec"
	}
	parts := make([]string, len(e.Bindings))
	for i, b := range e.Bindings {
		parts[i] = b.String()
	}
	return kw + " " + strings.Join(parts, "; ") + " in " + e.Body.String()
}

// CaseExpr evaluates Scrutinee with a continuation built from Alts.
type CaseExpr struct {
	Position  lexer.Position
	Scrutinee Expression
	Alts      []CaseAlternative
}

func (e *CaseExpr) expressionNode()     {}
func (e *CaseExpr) Pos() lexer.Position { return e.Position }
func (e *CaseExpr) String() string {
	parts := make([]string, len(e.Alts))
	for i, a := range e.Alts {
		parts[i] = a.String()
	}
	return "case " + e.Scrutinee.String() + " of {" + strings.Join(parts, "; ") + "}"
}

// ConstructorExpr builds a saturated data constructor.
type ConstructorExpr struct {
	Position lexer.Position
	Name     string
	Args     []Atom
}

func (e *ConstructorExpr) expressionNode()     {}
func (e *ConstructorExpr) Pos() lexer.Position { return e.Position }
func (e *ConstructorExpr) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return e.Name + " {" + strings.Join(parts, ", ") + "}"
}

// IntExpr is a primitive integer literal in expression position.
type IntExpr struct {
	Position lexer.Position
	Value    int64
}

func (e *IntExpr) expressionNode()     {}
func (e *IntExpr) Pos() lexer.Position { return e.Position }
func (e *IntExpr) String() string      { return strconv.FormatInt(e.Value, 10) }
