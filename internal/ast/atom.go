package ast

import (
	"strconv"

	"github.com/cwbudde/go-stg/internal/lexer"
)

// Atom is either a literal integer or a variable name. Atoms appear as
// the arguments of applications and constructors; they are never
// themselves reducible, so the evaluator resolves them in place
// (lookupAtom) rather than scheduling further evaluation.
type Atom interface {
	Node
	atomNode()
}

// IntAtom is a literal integer atom.
type IntAtom struct {
	Position lexer.Position
	Value    int64
}

func (a *IntAtom) atomNode()           {}
func (a *IntAtom) Pos() lexer.Position { return a.Position }
func (a *IntAtom) String() string      { return strconv.FormatInt(a.Value, 10) }

// VarAtom is a variable-name atom, resolved against the local then
// global environment at evaluation time.
type VarAtom struct {
	Position lexer.Position
	Name     string
}

func (a *VarAtom) atomNode()           {}
func (a *VarAtom) Pos() lexer.Position { return a.Position }
func (a *VarAtom) String() string      { return a.Name }
