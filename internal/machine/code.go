package machine

import "github.com/cwbudde/go-stg/internal/ast"

// Code is the machine's current control mode: Eval, Enter,
// ReturnInt, ReturnConstructor, or a not-yet-started marker.
type Code interface {
	isCode()
	String() string
}

// CodeEval evaluates expr under env.
type CodeEval struct {
	Expr ast.Expression
	Env  LocalEnv
}

func (CodeEval) isCode()        {}
func (CodeEval) String() string { return "Eval" }

// CodeEnter enters the closure at Addr.
type CodeEnter struct {
	Addr Addr
}

func (CodeEnter) isCode()        {}
func (CodeEnter) String() string { return "Enter" }

// CodeReturnInt returns a primitive integer to the return stack's top
// continuation.
type CodeReturnInt struct {
	Value int64
}

func (CodeReturnInt) isCode()        {}
func (CodeReturnInt) String() string { return "ReturnInt" }

// CodeReturnConstructor returns a saturated constructor application.
type CodeReturnConstructor struct {
	Con    string
	Values []Value
}

func (CodeReturnConstructor) isCode()        {}
func (CodeReturnConstructor) String() string { return "ReturnConstructor" }

// CodeUninitialized marks a machine state with no instruction set up
// yet. Compile never produces it (it seeds Enter on main directly),
// and Step panics if handed a state holding it.
type CodeUninitialized struct{}

func (CodeUninitialized) isCode()        {}
func (CodeUninitialized) String() string { return "Uninitialized" }
