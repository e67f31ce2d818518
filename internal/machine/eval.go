package machine

import (
	"fmt"

	"github.com/cwbudde/go-stg/internal/ast"
	"github.com/cwbudde/go-stg/internal/stgerr"
)

// Step advances s by exactly one transition of the STG machine.
// It never mutates s's fields in place (State, Heap, ArgStack,
// ReturnStack and UpdateStack are all persistent value types), so the
// caller's original s remains valid after the call.
func Step(s State) (State, StepStatus, error) {
	if s.IsFinal() {
		return s, StepFinal, nil
	}

	switch code := s.Code.(type) {
	case CodeEval:
		return evalExpr(s, code)
	case CodeEnter:
		return evalEnter(s, code.Addr)
	case CodeReturnInt:
		return evalReturnInt(s, code)
	case CodeReturnConstructor:
		return evalReturnConstructor(s, code)
	default:
		panic("machine: Step called on an uninitialized state")
	}
}

func evalExpr(s State, code CodeEval) (State, StepStatus, error) {
	switch expr := code.Expr.(type) {
	case *ast.FnApplication:
		return evalFnApplication(s, code.Env, expr)
	case *ast.LetExpr:
		return evalLet(s, code.Env, expr)
	case *ast.CaseExpr:
		return evalCase(s, code.Env, expr)
	case *ast.ConstructorExpr:
		return evalConstructorExpr(s, code.Env, expr)
	case *ast.IntExpr:
		s.Code = CodeReturnInt{Value: expr.Value}
		s.Steps++
		return s, StepContinue, nil
	default:
		panic("machine: unreachable expression variant")
	}
}

func evalFnApplication(s State, env LocalEnv, expr *ast.FnApplication) (State, StepStatus, error) {
	if isIntrinsicName(expr.Fn) {
		if !isIntrinsic(expr.Fn) {
			return s, StepContinue, &stgerr.UnknownIntrinsicError{Name: expr.Fn}
		}
		return evalIntrinsic(s, env, expr)
	}

	argVals := make([]Value, len(expr.Args))
	for i, a := range expr.Args {
		v, err := LookupAtom(env, s.Globals, a)
		if err != nil {
			return s, StepContinue, err
		}
		argVals[i] = v
	}

	fnVal, err := LookupVariable(env, s.Globals, expr.Fn)
	if err != nil {
		return s, StepContinue, err
	}

	s.Args = pushArgs(s.Args, argVals)

	switch v := fnVal.(type) {
	case ValueAddr:
		s.Code = CodeEnter{Addr: v.Addr}
	case ValuePrimInt:
		// a primitive int referenced with no atoms (x {}) returns its
		// value; applying it to atoms is an error
		if len(expr.Args) != 0 {
			return s, StepContinue, &stgerr.NonFunctionAppliedError{Name: expr.Fn, Value: v.Int}
		}
		s.Code = CodeReturnInt{Value: v.Int}
	default:
		panic("machine: unreachable value variant")
	}

	s.Steps++
	return s, StepContinue, nil
}

func evalIntrinsic(s State, env LocalEnv, expr *ast.FnApplication) (State, StepStatus, error) {
	if len(expr.Args) != 2 {
		return s, StepContinue, &stgerr.IntrinsicArityError{Name: expr.Fn, Got: len(expr.Args)}
	}

	left, err := LookupAtom(env, s.Globals, expr.Args[0])
	if err != nil {
		return s, StepContinue, err
	}
	right, err := LookupAtom(env, s.Globals, expr.Args[1])
	if err != nil {
		return s, StepContinue, err
	}

	leftInt, ok := left.(ValuePrimInt)
	if !ok {
		return s, StepContinue, &stgerr.IntrinsicArgNotIntError{Name: expr.Fn}
	}
	rightInt, ok := right.(ValuePrimInt)
	if !ok {
		return s, StepContinue, &stgerr.IntrinsicArgNotIntError{Name: expr.Fn}
	}

	result, err := intrinsics[expr.Fn](leftInt.Int, rightInt.Int)
	if err != nil {
		return s, StepContinue, err
	}

	s.Code = CodeReturnInt{Value: result}
	s.Steps++
	return s, StepContinue, nil
}

// evalLet allocates a closure per binding and evaluates Body under the
// extended environment. Recursive lets resolve each binding's free
// variables against the fully-extended environment (so bindings can
// see one another and themselves); non-recursive lets resolve only
// against the outer environment.
func evalLet(s State, env LocalEnv, expr *ast.LetExpr) (State, StepStatus, error) {
	newEnv := copyEnv(env)
	heap := s.Heap

	if expr.IsRecursive {
		addrs := make([]Addr, len(expr.Bindings))
		for i, b := range expr.Bindings {
			var addr Addr
			heap, addr = heap.Allocate(Closure{Lambda: b.Lambda})
			addrs[i] = addr
			newEnv[b.Name] = ValueAddr{Addr: addr}
		}
		for i, b := range expr.Bindings {
			freeValues, err := resolveFreeVars(newEnv, s.Globals, b.Lambda.FreeVars)
			if err != nil {
				return s, StepContinue, err
			}
			var uerr error
			heap, uerr = heap.Update(addrs[i], Closure{Lambda: b.Lambda, FreeValues: freeValues})
			if uerr != nil {
				return s, StepContinue, uerr
			}
		}
	} else {
		for _, b := range expr.Bindings {
			freeValues, err := resolveFreeVars(env, s.Globals, b.Lambda.FreeVars)
			if err != nil {
				return s, StepContinue, err
			}
			var addr Addr
			heap, addr = heap.Allocate(Closure{Lambda: b.Lambda, FreeValues: freeValues})
			newEnv[b.Name] = ValueAddr{Addr: addr}
		}
	}

	s.Heap = heap
	s.Code = CodeEval{Expr: expr.Body, Env: newEnv}
	s.Steps++
	return s, StepContinue, nil
}

func evalCase(s State, env LocalEnv, expr *ast.CaseExpr) (State, StepStatus, error) {
	if err := validateAlts(expr.Alts); err != nil {
		return s, StepContinue, err
	}
	s.Return = pushCont(s.Return, Continuation{Alts: expr.Alts, Env: env})
	s.Code = CodeEval{Expr: expr.Scrutinee, Env: env}
	s.Steps++
	return s, StepContinue, nil
}

func validateAlts(alts []ast.CaseAlternative) error {
	seenInt := map[int64]bool{}
	seenCon := map[string]bool{}
	defaults := 0
	for _, alt := range alts {
		switch a := alt.(type) {
		case *ast.IntAlt:
			if seenInt[a.Value] {
				return &stgerr.CaseAltsOverlappingPatternsError{Pattern: fmt.Sprintf("%d", a.Value)}
			}
			seenInt[a.Value] = true
		case *ast.ConstructorAlt:
			if seenCon[a.Con] {
				return &stgerr.CaseAltsOverlappingPatternsError{Pattern: a.Con}
			}
			seenCon[a.Con] = true
		case *ast.DefaultAlt:
			defaults++
		}
	}
	if defaults > 1 {
		return &stgerr.CaseAltsHasMoreThanOneVariableError{Count: defaults}
	}
	return nil
}

func evalConstructorExpr(s State, env LocalEnv, expr *ast.ConstructorExpr) (State, StepStatus, error) {
	values := make([]Value, len(expr.Args))
	for i, a := range expr.Args {
		v, err := LookupAtom(env, s.Globals, a)
		if err != nil {
			return s, StepContinue, err
		}
		values[i] = v
	}
	s.Code = CodeReturnConstructor{Con: expr.Name, Values: values}
	s.Steps++
	return s, StepContinue, nil
}

// evalEnter dispatches on the closure's update flag. Updatable
// closures (thunks) take no arguments: entering one pushes an
// update frame and evaluates its body. Non-updatable closures apply
// their bound variables against the argument stack; if fewer arguments
// are available than the closure's arity, this is a partial
// application mid-force, handled by rewriting the enclosing thunk into
// a partial-application value (the STG paper's rule 17) and
// re-entering with the combined argument stack.
func evalEnter(s State, addr Addr) (State, StepStatus, error) {
	closure, err := s.Heap.Lookup(addr)
	if err != nil {
		return s, StepContinue, err
	}
	lambda := closure.Lambda

	if lambda.UpdateFlag == ast.Update {
		if len(lambda.BoundVars) != 0 {
			return s, StepContinue, &stgerr.UpdatableClosureHasBoundVarsError{Count: len(lambda.BoundVars)}
		}
		s.Update = pushUpdate(s.Update, UpdateFrame{
			SavedArgs:   s.Args,
			SavedReturn: s.Return,
			Addr:        addr,
		})
		s.Args = nil
		s.Return = nil
		env := bindFreeVars(lambda.FreeVars, closure.FreeValues)
		s.Code = CodeEval{Expr: lambda.Body, Env: env}
		s.Steps++
		return s, StepContinue, nil
	}

	arity := len(lambda.BoundVars)
	if len(s.Args) >= arity {
		argVals, newArgs, ok := popArgsN(s.Args, arity)
		if !ok {
			return s, StepContinue, &stgerr.NotEnoughArgsOnStackError{Requested: arity, Available: len(s.Args)}
		}
		env := bindFreeVars(lambda.FreeVars, closure.FreeValues)
		for i, name := range lambda.BoundVars {
			env[name] = argVals[i]
		}
		s.Args = newArgs
		s.Code = CodeEval{Expr: lambda.Body, Env: env}
		s.Steps++
		return s, StepContinue, nil
	}

	return evalPartialApplication(s, addr, closure)
}

// evalPartialApplication implements rule 17: addr's closure needs more
// arguments than are currently on the stack, which can only happen
// mid-force of a thunk (entering a thunk empties both stacks, so every
// argument present was collected since the top update frame was
// pushed). The thunk being forced is rewritten in place into a
// partially-applied copy of addr's closure: its first m bound
// variables become free variables, bound to the m argument values
// collected so far, with the remaining bound variables still bound.
// Later entries of the thunk's address then resume from the partial
// application instead of redoing it. Evaluation continues by
// re-entering addr itself with the frame's saved argument stack
// restored beneath the arguments already collected.
func evalPartialApplication(s State, addr Addr, closure Closure) (State, StepStatus, error) {
	frame, newUpdateStack, ok := popUpdate(s.Update)
	if !ok {
		return s, StepContinue, &stgerr.UpdateStackEmptyError{}
	}

	lambda := closure.Lambda
	m := len(s.Args)
	// top of stack pairs with BoundVars[0], matching the env layout a
	// saturated entry would build
	argVals, _, ok := popArgsN(s.Args, m)
	if !ok {
		return s, StepContinue, &stgerr.NotEnoughArgsOnStackError{Requested: m, Available: len(s.Args)}
	}

	freeVars := make([]string, 0, len(lambda.FreeVars)+m)
	freeVars = append(freeVars, lambda.FreeVars...)
	freeVars = append(freeVars, lambda.BoundVars[:m]...)

	freeValues := make([]Value, 0, len(closure.FreeValues)+m)
	freeValues = append(freeValues, closure.FreeValues...)
	freeValues = append(freeValues, argVals...)

	rewritten := Closure{
		Lambda: &ast.LambdaForm{
			Position:   lambda.Position,
			FreeVars:   freeVars,
			UpdateFlag: ast.NoUpdate,
			BoundVars:  lambda.BoundVars[m:],
			Body:       lambda.Body,
		},
		FreeValues: freeValues,
	}

	newHeap, err := s.Heap.Update(frame.Addr, rewritten)
	if err != nil {
		return s, StepContinue, err
	}

	combined := make(ArgStack, 0, len(frame.SavedArgs)+m)
	combined = append(combined, frame.SavedArgs...)
	combined = append(combined, s.Args...)

	s.Heap = newHeap
	s.Update = newUpdateStack
	s.Args = combined
	s.Return = frame.SavedReturn
	s.Code = CodeEnter{Addr: addr}
	s.Steps++
	return s, StepContinue, nil
}

// resolvePendingUpdate fires when a return finds the argument and
// return stacks empty while the update stack is not: the value just
// produced belongs to the thunk of the top update frame (entering a
// thunk empties both stacks, so nothing else can be pending). The
// frame is popped, its heap slot overwritten with closure, and its
// saved stacks restored; the Code is left unchanged so the same
// return re-dispatches on the next step, resolving chained frames one
// transition at a time.
func resolvePendingUpdate(s State, closure Closure) (State, StepStatus, error) {
	frame, rest, _ := popUpdate(s.Update)
	newHeap, err := s.Heap.Update(frame.Addr, closure)
	if err != nil {
		return s, StepContinue, err
	}
	s.Heap = newHeap
	s.Update = rest
	s.Args = frame.SavedArgs
	s.Return = frame.SavedReturn
	s.Steps++
	return s, StepContinue, nil
}

func pendingUpdateApplies(s State) bool {
	return len(s.Update) > 0 && len(s.Args) == 0 && len(s.Return) == 0
}

func buildIntClosure(n int64) Closure {
	return Closure{Lambda: &ast.LambdaForm{UpdateFlag: ast.NoUpdate, Body: &ast.IntExpr{Value: n}}}
}

func buildConstructorClosure(con string, values []Value) Closure {
	freeVars := make([]string, len(values))
	atoms := make([]ast.Atom, len(values))
	for i := range values {
		name := fmt.Sprintf("__v%d", i)
		freeVars[i] = name
		atoms[i] = &ast.VarAtom{Name: name}
	}
	return Closure{
		Lambda: &ast.LambdaForm{
			FreeVars:   freeVars,
			UpdateFlag: ast.NoUpdate,
			Body:       &ast.ConstructorExpr{Name: con, Args: atoms},
		},
		FreeValues: values,
	}
}

func evalReturnInt(s State, code CodeReturnInt) (State, StepStatus, error) {
	if pendingUpdateApplies(s) {
		return resolvePendingUpdate(s, buildIntClosure(code.Value))
	}
	if len(s.Return) == 0 {
		if len(s.Update) > 0 {
			return s, StepContinue, &stgerr.ReturnStackEmptyError{}
		}
		return s, StepFinal, nil
	}

	cont, newReturn, _ := popCont(s.Return)
	s.Return = newReturn

	var hasConstructorAlt bool
	var defaultAlt *ast.DefaultAlt
	for _, alt := range cont.Alts {
		switch a := alt.(type) {
		case *ast.IntAlt:
			if a.Value == code.Value {
				s.Code = CodeEval{Expr: a.Body, Env: cont.Env}
				s.Steps++
				return s, StepContinue, nil
			}
		case *ast.ConstructorAlt:
			hasConstructorAlt = true
		case *ast.DefaultAlt:
			defaultAlt = a
		}
	}

	if hasConstructorAlt {
		return s, StepContinue, &stgerr.ExpectedCaseAltIntError{}
	}
	if defaultAlt != nil {
		env := copyEnv(cont.Env)
		env[defaultAlt.Var] = ValuePrimInt{Int: code.Value}
		s.Code = CodeEval{Expr: defaultAlt.Body, Env: env}
		s.Steps++
		return s, StepContinue, nil
	}
	return s, StepContinue, &stgerr.NoMatchingAltPatternIntError{Value: code.Value}
}

func evalReturnConstructor(s State, code CodeReturnConstructor) (State, StepStatus, error) {
	if pendingUpdateApplies(s) {
		return resolvePendingUpdate(s, buildConstructorClosure(code.Con, code.Values))
	}
	if len(s.Return) == 0 {
		if len(s.Update) > 0 {
			return s, StepContinue, &stgerr.ReturnStackEmptyError{}
		}
		return s, StepFinal, nil
	}

	cont, newReturn, _ := popCont(s.Return)
	s.Return = newReturn

	var hasIntAlt bool
	var defaultAlt *ast.DefaultAlt
	for _, alt := range cont.Alts {
		switch a := alt.(type) {
		case *ast.ConstructorAlt:
			if a.Con == code.Con {
				env := copyEnv(cont.Env)
				for i, name := range a.Vars {
					if i < len(code.Values) {
						env[name] = code.Values[i]
					}
				}
				s.Code = CodeEval{Expr: a.Body, Env: env}
				s.Steps++
				return s, StepContinue, nil
			}
		case *ast.IntAlt:
			hasIntAlt = true
		case *ast.DefaultAlt:
			defaultAlt = a
		}
	}

	if hasIntAlt {
		return s, StepContinue, &stgerr.ExpectedCaseAltConstructorError{}
	}
	if defaultAlt != nil {
		heap, addr := s.Heap.Allocate(buildConstructorClosure(code.Con, code.Values))
		s.Heap = heap
		env := copyEnv(cont.Env)
		env[defaultAlt.Var] = ValueAddr{Addr: addr}
		s.Code = CodeEval{Expr: defaultAlt.Body, Env: env}
		s.Steps++
		return s, StepContinue, nil
	}
	return s, StepContinue, &stgerr.NoMatchingAltPatternConstructorError{Con: code.Con}
}
