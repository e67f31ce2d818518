package machine

import (
	"github.com/cwbudde/go-stg/internal/ast"
	"github.com/cwbudde/go-stg/internal/stgerr"
)

// Compile loads a parsed Program into an initial machine State, ready
// for Step. Top-level bindings can refer to one another regardless of
// declaration order, including cyclically — they behave as one big
// mutually-recursive letrec — so compilation runs in two passes:
// first every binding is allocated with a placeholder closure (no
// free values resolved yet) to fix its address, then each placeholder
// is overwritten with its real closure once every name in the program
// is resolvable.
//
// Top-level lambda forms never have free variables of their own in a
// well-formed program (free variables name bindings introduced by an
// enclosing let/letrec or lambda bound-vars), but a
// front end that hands the compiler a malformed AST with nonempty
// FreeVars on a top-level binding still resolves them against the
// (by-then-complete) global environment rather than panicking.
func Compile(program *ast.Program) (State, error) {
	heap := NewHeap()
	globals := make(GlobalEnv, len(program.Bindings))

	for _, b := range program.Bindings {
		var addr Addr
		heap, addr = heap.Allocate(Closure{Lambda: b.Lambda})
		globals[b.Name] = addr
	}

	for _, b := range program.Bindings {
		freeValues, err := resolveFreeVars(nil, globals, b.Lambda.FreeVars)
		if err != nil {
			return State{}, err
		}
		addr := globals[b.Name]
		heap, err = heap.Update(addr, Closure{Lambda: b.Lambda, FreeValues: freeValues})
		if err != nil {
			return State{}, err
		}
	}

	mainAddr, ok := globals["main"]
	if !ok {
		return State{}, &stgerr.UnableToFindMainError{}
	}

	return State{
		Code:    CodeEnter{Addr: mainAddr},
		Heap:    heap,
		Globals: globals,
	}, nil
}
