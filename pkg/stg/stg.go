// Package stg is the embeddable public API of the STG interpreter.
//
// An Engine wraps the lexer, parser, compiler, and abstract machine
// behind three calls: Compile turns source text into a runnable
// Program, Run drives it to its final machine state, and Trace
// retains every intermediate state. Go programs that want to embed
// the interpreter import only this package.
//
//	engine, err := stg.New(stg.WithMaxSteps(10_000))
//	if err != nil { ... }
//	result, err := engine.Run(source)
//	if n, ok := result.Int(); ok { ... }
package stg

import (
	"fmt"

	"github.com/cwbudde/go-stg/internal/ast"
	"github.com/cwbudde/go-stg/internal/driver"
	stgerrors "github.com/cwbudde/go-stg/internal/errors"
	"github.com/cwbudde/go-stg/internal/lexer"
	"github.com/cwbudde/go-stg/internal/machine"
	"github.com/cwbudde/go-stg/internal/parser"
)

// Engine holds the configuration shared by every Compile/Run/Trace
// call made through it. It is stateless between calls: each Run
// compiles a fresh machine, so one Engine can be reused for any
// number of programs.
type Engine struct {
	maxSteps int
}

// Option configures an Engine at construction time.
type Option func(*Engine) error

// WithMaxSteps bounds each Run or Trace to n machine transitions,
// guarding against non-terminating programs. The default is
// driver.MaxSteps.
func WithMaxSteps(n int) Option {
	return func(e *Engine) error {
		if n <= 0 {
			return fmt.Errorf("stg: max steps must be positive, got %d", n)
		}
		e.maxSteps = n
		return nil
	}
}

// New creates an Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{maxSteps: driver.MaxSteps}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// CompileError aggregates the lex and parse diagnostics of a failed
// Compile, each formatted with source context.
type CompileError struct {
	Errors []*stgerrors.SourceError
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("stg: compilation failed with %d error(s):\n%s",
		len(e.Errors), stgerrors.FormatAll(e.Errors, false))
}

// Program is a compiled STG program: its AST plus the initial machine
// state, ready to run. A Program is immutable; Run and Trace operate
// on copies of the initial state, so the same Program can be run
// repeatedly.
type Program struct {
	ast     *ast.Program
	initial machine.State
}

// AST returns the parsed program.
func (p *Program) AST() *ast.Program { return p.ast }

// InitialState returns the compiled machine state primed to enter
// main, for callers that want to drive internal/driver themselves.
func (p *Program) InitialState() machine.State { return p.initial }

// Compile lexes, parses, and loads source into a Program. The file
// name is used only in error formatting; pass "" for inline source.
func (e *Engine) Compile(source, file string) (*Program, error) {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()

	if lexErrs := l.Errors(); len(lexErrs) > 0 {
		srcErrs := make([]*stgerrors.SourceError, len(lexErrs))
		for i, le := range lexErrs {
			srcErrs[i] = stgerrors.NewSourceError(le.Pos, le.Message, source, file)
		}
		return nil, &CompileError{Errors: srcErrs}
	}
	if parseErrs := p.Errors(); len(parseErrs) > 0 {
		return nil, &CompileError{Errors: stgerrors.FromStrings(parseErrs, source, file)}
	}

	initial, err := machine.Compile(program)
	if err != nil {
		return nil, err
	}
	return &Program{ast: program, initial: initial}, nil
}

// Result is the final machine state of a completed run.
type Result struct {
	State machine.State
}

// Int returns the final primitive integer, if the program halted on
// ReturnInt.
func (r *Result) Int() (int64, bool) {
	if code, ok := r.State.Code.(machine.CodeReturnInt); ok {
		return code.Value, true
	}
	return 0, false
}

// Constructor returns the final constructor name and its values, if
// the program halted on ReturnConstructor.
func (r *Result) Constructor() (string, []machine.Value, bool) {
	if code, ok := r.State.Code.(machine.CodeReturnConstructor); ok {
		return code.Con, code.Values, true
	}
	return "", nil, false
}

// Run compiles and runs source to its final state.
func (e *Engine) Run(source string) (*Result, error) {
	program, err := e.Compile(source, "")
	if err != nil {
		return nil, err
	}
	return e.RunProgram(program)
}

// RunProgram runs an already-compiled Program to its final state.
func (e *Engine) RunProgram(program *Program) (*Result, error) {
	final, err := driver.RunToFinalLimit(program.initial, e.maxSteps)
	if err != nil {
		return nil, err
	}
	return &Result{State: final}, nil
}

// Trace compiles and runs source, returning every machine state
// visited in order, including the initial one.
func (e *Engine) Trace(source string) ([]machine.State, error) {
	program, err := e.Compile(source, "")
	if err != nil {
		return nil, err
	}
	return driver.TraceLimit(program.initial, e.maxSteps)
}
