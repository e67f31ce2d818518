package machine

import "github.com/cwbudde/go-stg/internal/ast"

// ArgStack holds resolved Values awaiting consumption by the closure
// about to be entered. It is a LIFO stack represented bottom-to-top;
// the last element is the top.
type ArgStack []Value

func pushArg(stack ArgStack, v Value) ArgStack {
	next := make(ArgStack, len(stack)+1)
	copy(next, stack)
	next[len(stack)] = v
	return next
}

// pushArgs pushes values so that args[0] ends up on top: the first
// atom of an application is the first one a callee pops.
func pushArgs(stack ArgStack, args []Value) ArgStack {
	for i := len(args) - 1; i >= 0; i-- {
		stack = pushArg(stack, args[i])
	}
	return stack
}

// popArgsN pops n values off the top, returning them with index 0 as
// the former top of stack (so they align positionally with a
// lambda's BoundVars). Returns ok=false if fewer than n are present.
func popArgsN(stack ArgStack, n int) ([]Value, ArgStack, bool) {
	if len(stack) < n {
		return nil, stack, false
	}
	vals := make([]Value, n)
	for i := 0; i < n; i++ {
		vals[i] = stack[len(stack)-1-i]
	}
	return vals, stack[:len(stack)-n], true
}

// Continuation is a case expression's pending alternatives plus the
// local environment to evaluate a chosen alternative in.
type Continuation struct {
	Alts []ast.CaseAlternative
	Env  LocalEnv
}

// ReturnStack holds Continuations, most recent on top.
type ReturnStack []Continuation

func pushCont(stack ReturnStack, c Continuation) ReturnStack {
	next := make(ReturnStack, len(stack)+1)
	copy(next, stack)
	next[len(stack)] = c
	return next
}

func popCont(stack ReturnStack) (Continuation, ReturnStack, bool) {
	if len(stack) == 0 {
		return Continuation{}, stack, false
	}
	return stack[len(stack)-1], stack[:len(stack)-1], true
}

// UpdateFrame snapshots the argument and return stacks at the moment
// an updatable closure was entered, plus the address to update once
// its evaluation produces a value.
type UpdateFrame struct {
	SavedArgs   ArgStack
	SavedReturn ReturnStack
	Addr        Addr
}

// UpdateStack holds UpdateFrames, most recently pushed on top.
type UpdateStack []UpdateFrame

func pushUpdate(stack UpdateStack, f UpdateFrame) UpdateStack {
	next := make(UpdateStack, len(stack)+1)
	copy(next, stack)
	next[len(stack)] = f
	return next
}

func popUpdate(stack UpdateStack) (UpdateFrame, UpdateStack, bool) {
	if len(stack) == 0 {
		return UpdateFrame{}, stack, false
	}
	return stack[len(stack)-1], stack[:len(stack)-1], true
}
