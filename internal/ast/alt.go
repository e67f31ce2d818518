package ast

import (
	"strconv"
	"strings"

	"github.com/cwbudde/go-stg/internal/lexer"
)

// CaseAlternative is one arm of a case expression: a constructor
// pattern, an integer pattern, or a variable default. Earlier
// alternatives in the slice take precedence.
type CaseAlternative interface {
	Node
	caseAltNode()
}

// ConstructorAlt matches `Con v1 ... vk -> body`.
type ConstructorAlt struct {
	Position lexer.Position
	Con      string
	Vars     []string
	Body     Expression
}

func (a *ConstructorAlt) caseAltNode()        {}
func (a *ConstructorAlt) Pos() lexer.Position { return a.Position }
func (a *ConstructorAlt) String() string {
	return a.Con + " {" + strings.Join(a.Vars, ", ") + "} -> " + a.Body.String()
}

// IntAlt matches `N -> body`.
type IntAlt struct {
	Position lexer.Position
	Value    int64
	Body     Expression
}

func (a *IntAlt) caseAltNode()        {}
func (a *IntAlt) Pos() lexer.Position { return a.Position }
func (a *IntAlt) String() string {
	return strconv.FormatInt(a.Value, 10) + " -> " + a.Body.String()
}

// DefaultAlt matches `x -> body` unconditionally, binding the
// scrutinee's value to x. There must be at most one per case
// expression (CaseAltsHasMoreThanOneVariable otherwise).
type DefaultAlt struct {
	Position lexer.Position
	Var      string
	Body     Expression
}

func (a *DefaultAlt) caseAltNode()        {}
func (a *DefaultAlt) Pos() lexer.Position { return a.Position }
func (a *DefaultAlt) String() string {
	return a.Var + " -> " + a.Body.String()
}
