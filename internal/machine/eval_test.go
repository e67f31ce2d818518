package machine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cwbudde/go-stg/internal/ast"
	"github.com/cwbudde/go-stg/internal/lexer"
	"github.com/cwbudde/go-stg/internal/parser"
	"github.com/cwbudde/go-stg/internal/stgerr"
)

func compileSource(t *testing.T, source string) State {
	t.Helper()
	p := parser.New(lexer.New(source))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	state, err := Compile(program)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return state
}

const stepLimit = 100_000

func runToFinal(t *testing.T, s State) State {
	t.Helper()
	for i := 0; i < stepLimit; i++ {
		next, status, err := Step(s)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		s = next
		if status == StepFinal {
			return s
		}
	}
	t.Fatalf("no final state within %d steps", stepLimit)
	return s
}

// traceStates steps s to completion or error, returning every state
// visited including the initial one.
func traceStates(s State) ([]State, error) {
	states := []State{s}
	for i := 0; i < stepLimit; i++ {
		next, status, err := Step(s)
		if err != nil {
			return states, err
		}
		s = next
		states = append(states, s)
		if status == StepFinal {
			return states, nil
		}
	}
	return states, errors.New("no final state within step limit")
}

func runToError(t *testing.T, s State) error {
	t.Helper()
	for i := 0; i < stepLimit; i++ {
		next, status, err := Step(s)
		if err != nil {
			return err
		}
		s = next
		if status == StepFinal {
			t.Fatalf("reached final state %s, expected an error", s.Code.String())
		}
	}
	t.Fatalf("no error within %d steps", stepLimit)
	return nil
}

func wantFinalInt(t *testing.T, s State, want int64) {
	t.Helper()
	final := runToFinal(t, s)
	code, ok := final.Code.(CodeReturnInt)
	if !ok {
		t.Fatalf("final code is %s, want ReturnInt", final.Code.String())
	}
	if code.Value != want {
		t.Fatalf("final value = %d, want %d", code.Value, want)
	}
}

func wantKind(t *testing.T, err error, kind string) {
	t.Helper()
	var stgErr stgerr.Error
	if !errors.As(err, &stgErr) {
		t.Fatalf("error %v is not a stgerr.Error", err)
	}
	if stgErr.Kind() != kind {
		t.Fatalf("error kind = %q (%v), want %q", stgErr.Kind(), err, kind)
	}
}

func TestIdentityAppliedToLiteral(t *testing.T) {
	state := compileSource(t, `
define main = {} \u {} -> id {1};
define id = {} \n {x} -> x {}`)
	wantFinalInt(t, state, 1)
}

func TestPrimitiveAddition(t *testing.T) {
	state := compileSource(t, `define main = {} \u {} -> plus# {2, 3}`)
	wantFinalInt(t, state, 5)
}

func TestIntrinsicsResolveVariableAtoms(t *testing.T) {
	// plus# {a, b} with a, b bound to primitive ints in the local env
	state := compileSource(t, `
define main = {} \u {} ->
  case plus# {1, 2} of {
    a -> case plus# {10, 20} of {
           b -> plus# {a, b}
         }
  }`)
	wantFinalInt(t, state, 33)
}

func TestAllIntrinsics(t *testing.T) {
	tests := []struct {
		source string
		want   int64
	}{
		{`define main = {} \u {} -> plus# {2, 3}`, 5},
		{`define main = {} \u {} -> minus# {2, 3}`, -1},
		{`define main = {} \u {} -> times# {2, 3}`, 6},
		{`define main = {} \u {} -> divide# {7, 2}`, 3},
	}
	for _, tt := range tests {
		wantFinalInt(t, compileSource(t, tt.source), tt.want)
	}
}

func TestSharingEvaluatesThunkOnce(t *testing.T) {
	state := compileSource(t, `
define main = {} \u {} ->
  let x = {} \u {} -> plus# {1, 2}
  in case x {} of {
       a -> case x {} of {
              b -> plus# {a, b}
            }
     }`)

	states, err := traceStates(state)
	if err != nil {
		t.Fatalf("trace: %v", err)
	}

	final := states[len(states)-1]
	code, ok := final.Code.(CodeReturnInt)
	if !ok || code.Value != 6 {
		t.Fatalf("final code = %s, want ReturnInt(6)", final.Code.String())
	}

	// the thunk body plus# {1, 2} (literal atoms) must be evaluated
	// exactly once; the second force of x must hit the updated closure
	literalAdds := 0
	for _, s := range states {
		eval, ok := s.Code.(CodeEval)
		if !ok {
			continue
		}
		app, ok := eval.Expr.(*ast.FnApplication)
		if !ok || app.Fn != "plus#" {
			continue
		}
		allLiterals := true
		for _, a := range app.Args {
			if _, ok := a.(*ast.IntAtom); !ok {
				allLiterals = false
			}
		}
		if allLiterals {
			literalAdds++
		}
	}
	if literalAdds != 1 {
		t.Errorf("plus# {1, 2} evaluated %d times, want exactly 1", literalAdds)
	}
}

func TestCaseOnConstructor(t *testing.T) {
	state := compileSource(t, `
define main = {} \u {} ->
  case True {} of {
    True {} -> 1;
    False {} -> 0
  }`)
	wantFinalInt(t, state, 1)
}

func TestCaseBindsConstructorFields(t *testing.T) {
	state := compileSource(t, `
define main = {} \u {} ->
  case Pair {3, 4} of {
    Pair {a, b} -> plus# {a, b}
  }`)
	wantFinalInt(t, state, 7)
}

func TestCaseDefaultAltOnConstructor(t *testing.T) {
	state := compileSource(t, `
define main = {} \u {} ->
  case True {} of {
    False {} -> 0;
    other -> 9
  }`)
	wantFinalInt(t, state, 9)
}

func TestPartialApplicationRewritesClosure(t *testing.T) {
	state := compileSource(t, `
define main = {} \u {} ->
  let pap = {} \u {} -> flip {tuple}
  in pap {1, 2};
define flip = {} \n {f, x, y} -> f {y, x};
define tuple = {} \n {a, b} -> Tup {a, b}`)

	tupleAddr := state.Globals["tuple"]

	final := runToFinal(t, state)

	code, ok := final.Code.(CodeReturnConstructor)
	if !ok {
		t.Fatalf("final code is %s, want ReturnConstructor", final.Code.String())
	}
	if code.Con != "Tup" {
		t.Fatalf("constructor = %q, want Tup", code.Con)
	}
	want := []Value{ValuePrimInt{Int: 2}, ValuePrimInt{Int: 1}}
	if !reflect.DeepEqual(code.Values, want) {
		t.Fatalf("constructor values = %v, want %v", code.Values, want)
	}

	// rule 17: pap's closure (allocated after the 3 globals) was
	// rewritten with f moved from bound to free, bound to tuple's
	// address, and x, y still bound
	papAddr := Addr(3)
	pap, err := final.Heap.Lookup(papAddr)
	if err != nil {
		t.Fatalf("heap lookup: %v", err)
	}
	if got := pap.Lambda.FreeVars; len(got) != 1 || got[0] != "f" {
		t.Errorf("rewritten free vars = %v, want [f]", got)
	}
	if got := pap.Lambda.BoundVars; len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("rewritten bound vars = %v, want [x y]", got)
	}
	if pap.Lambda.UpdateFlag != ast.NoUpdate {
		t.Errorf("rewritten closure should be non-updatable")
	}
	if len(pap.FreeValues) != 1 || !reflect.DeepEqual(pap.FreeValues[0], ValueAddr{Addr: tupleAddr}) {
		t.Errorf("rewritten free values = %v, want [%v]", pap.FreeValues, ValueAddr{Addr: tupleAddr})
	}
}

func TestUnboundVariable(t *testing.T) {
	state := compileSource(t, `define main = {} \u {} -> bogus {}`)
	err := runToError(t, state)
	wantKind(t, err, "EnvLookupFailed")

	var lookupErr *stgerr.EnvLookupFailedError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("error %v is not EnvLookupFailedError", err)
	}
	if lookupErr.Name != "bogus" {
		t.Errorf("failed name = %q, want bogus", lookupErr.Name)
	}
}

func TestLetrecSelfReferenceSucceeds(t *testing.T) {
	state := compileSource(t, `
define main = {} \u {} ->
  letrec xs = {xs} \n {} -> Cons {1, xs}
  in case xs {} of {
       Cons {h, t} -> plus# {h, 40}
     }`)
	wantFinalInt(t, state, 41)
}

func TestLetSelfReferenceFails(t *testing.T) {
	state := compileSource(t, `
define main = {} \u {} ->
  let xs = {xs} \n {} -> Cons {1, xs}
  in case xs {} of {
       Cons {h, t} -> plus# {h, 40}
     }`)
	err := runToError(t, state)
	wantKind(t, err, "EnvLookupFailed")
}

func TestLetBindingsSeeOuterEnvOnly(t *testing.T) {
	// y's free var x must resolve to the outer x (thunk of 1), not
	// the sibling binding allocated in the same let group
	state := compileSource(t, `
define main = {} \u {} ->
  let x = {} \u {} -> 1
  in let x = {} \u {} -> 10;
         y = {x} \u {} -> x {}
     in y {}`)
	wantFinalInt(t, state, 1)
}

func TestLetrecBindingsSeeEachOther(t *testing.T) {
	state := compileSource(t, `
define main = {} \u {} ->
  letrec a = {b} \u {} -> b {};
         b = {} \u {} -> 5
  in a {}`)
	wantFinalInt(t, state, 5)
}

func TestUpdateFrameInvariant(t *testing.T) {
	state := compileSource(t, `
define main = {} \u {} ->
  let pap = {} \u {} -> flip {tuple}
  in pap {1, 2};
define flip = {} \n {f, x, y} -> f {y, x};
define tuple = {} \n {a, b} -> Tup {a, b}`)

	states, err := traceStates(state)
	if err != nil {
		t.Fatalf("trace: %v", err)
	}

	// every Enter of an updatable closure pushes exactly one frame for
	// that address and empties the argument and return stacks
	checked := 0
	for i, s := range states[:len(states)-1] {
		enter, ok := s.Code.(CodeEnter)
		if !ok {
			continue
		}
		closure, err := s.Heap.Lookup(enter.Addr)
		if err != nil {
			t.Fatalf("state %d: %v", i, err)
		}
		if closure.Lambda.UpdateFlag != ast.Update {
			continue
		}
		next := states[i+1]
		if len(next.Update) != len(s.Update)+1 {
			t.Errorf("state %d: update stack grew by %d, want 1", i, len(next.Update)-len(s.Update))
		}
		if top := next.Update[len(next.Update)-1]; top.Addr != enter.Addr {
			t.Errorf("state %d: frame addr = %d, want %d", i, top.Addr, enter.Addr)
		}
		if len(next.Args) != 0 || len(next.Return) != 0 {
			t.Errorf("state %d: args/return not emptied (%d, %d)", i, len(next.Args), len(next.Return))
		}
		checked++
	}
	if checked == 0 {
		t.Fatalf("trace never entered an updatable closure")
	}
}

func TestMonotoneAllocation(t *testing.T) {
	state := compileSource(t, `
define main = {} \u {} ->
  let x = {} \u {} -> plus# {1, 2}
  in case x {} of {
       a -> case x {} of {
              b -> plus# {a, b}
            }
     }`)

	states, err := traceStates(state)
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	for i := 1; i < len(states); i++ {
		if states[i].Heap.Len() < states[i-1].Heap.Len() {
			t.Fatalf("heap shrank between steps %d and %d", i-1, i)
		}
	}
}

func TestDeterminism(t *testing.T) {
	source := `
define main = {} \u {} ->
  let pap = {} \u {} -> flip {tuple}
  in pap {1, 2};
define flip = {} \n {f, x, y} -> f {y, x};
define tuple = {} \n {a, b} -> Tup {a, b}`

	first, err := traceStates(compileSource(t, source))
	if err != nil {
		t.Fatalf("first trace: %v", err)
	}
	second, err := traceStates(compileSource(t, source))
	if err != nil {
		t.Fatalf("second trace: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("trace lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !reflect.DeepEqual(first[i].Code, second[i].Code) {
			t.Fatalf("codes differ at step %d: %v vs %v", i, first[i].Code, second[i].Code)
		}
	}
}

func TestHeapIntegrity(t *testing.T) {
	state := compileSource(t, `
define main = {} \u {} ->
  let pap = {} \u {} -> flip {tuple}
  in pap {1, 2};
define flip = {} \n {f, x, y} -> f {y, x};
define tuple = {} \n {a, b} -> Tup {a, b}`)

	states, err := traceStates(state)
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	for i, s := range states {
		checkHeapIntegrity(t, i, s)
	}
}

func checkHeapIntegrity(t *testing.T, step int, s State) {
	t.Helper()
	size := s.Heap.Len()

	checkValue := func(where string, v Value) {
		if addr, ok := v.(ValueAddr); ok {
			if int(addr.Addr) < 0 || int(addr.Addr) >= size {
				t.Errorf("step %d: dangling address %d in %s (heap size %d)", step, addr.Addr, where, size)
			}
		}
	}
	checkEnv := func(where string, env LocalEnv) {
		for _, v := range env {
			checkValue(where, v)
		}
	}

	for _, v := range s.Args {
		checkValue("arg stack", v)
	}
	for _, c := range s.Return {
		checkEnv("continuation env", c.Env)
	}
	for _, f := range s.Update {
		for _, v := range f.SavedArgs {
			checkValue("update frame args", v)
		}
		if int(f.Addr) < 0 || int(f.Addr) >= size {
			t.Errorf("step %d: dangling update frame addr %d", step, f.Addr)
		}
	}
	for _, addr := range s.Globals {
		if int(addr) < 0 || int(addr) >= size {
			t.Errorf("step %d: dangling global addr %d", step, addr)
		}
	}
	for i := 0; i < size; i++ {
		closure, err := s.Heap.Lookup(Addr(i))
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		for _, v := range closure.FreeValues {
			checkValue("closure free values", v)
		}
		if len(closure.FreeValues) != len(closure.Lambda.FreeVars) {
			t.Errorf("step %d: closure %d arity mismatch: %d values for %d free vars",
				step, i, len(closure.FreeValues), len(closure.Lambda.FreeVars))
		}
	}
	if eval, ok := s.Code.(CodeEval); ok {
		checkEnv("eval env", eval.Env)
	}
	if code, ok := s.Code.(CodeReturnConstructor); ok {
		for _, v := range code.Values {
			checkValue("returned constructor", v)
		}
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   string
	}{
		{
			"constructor alt against int scrutinee",
			`define main = {} \u {} -> case plus# {1, 1} of { True {} -> 1 }`,
			"ExpectedCaseAltInt",
		},
		{
			"int alt against constructor scrutinee",
			`define main = {} \u {} -> case True {} of { 1 -> 1 }`,
			"ExpectedCaseAltConstructor",
		},
		{
			"no matching int alt",
			`define main = {} \u {} -> case plus# {1, 1} of { 3 -> 1 }`,
			"NoMatchingAltPatternInt",
		},
		{
			"no matching constructor alt",
			`define main = {} \u {} -> case True {} of { False {} -> 0 }`,
			"NoMatchingAltPatternConstructor",
		},
		{
			"overlapping int patterns",
			`define main = {} \u {} -> case plus# {1, 1} of { 2 -> 1; 2 -> 0 }`,
			"CaseAltsOverlappingPatterns",
		},
		{
			"more than one default alt",
			`define main = {} \u {} -> case plus# {1, 1} of { a -> 1; b -> 2 }`,
			"CaseAltsHasMoreThanOneVariable",
		},
		{
			"division by zero",
			`define main = {} \u {} -> divide# {1, 0}`,
			"DivisionByZero",
		},
		{
			"intrinsic argument not an int",
			`define main = {} \u {} -> plus# {x, 1};
define x = {} \u {} -> 3`,
			"IntrinsicArgNotInt",
		},
		{
			"unknown intrinsic",
			`define main = {} \u {} -> foo# {1, 2}`,
			"UnknownIntrinsic",
		},
		{
			"intrinsic arity",
			`define main = {} \u {} -> plus# {1}`,
			"IntrinsicArity",
		},
		{
			"non-function applied",
			`define main = {} \u {} -> case plus# {1, 1} of { n -> n {1} }`,
			"NonFunctionApplied",
		},
		{
			"partial application without update frame",
			`define main = {} \n {} -> two {1};
define two = {} \n {x, y} -> x {}`,
			"UpdateStackEmpty",
		},
		{
			"updatable closure with bound vars",
			`define main = {} \u {} -> bad {1};
define bad = {} \u {x} -> x {}`,
			"UpdatableClosureHasBoundVars",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := compileSource(t, tt.source)
			err := runToError(t, state)
			wantKind(t, err, tt.kind)
		})
	}
}

func TestReturnIntUpdatesThunkInPlace(t *testing.T) {
	state := compileSource(t, `
define main = {} \u {} ->
  let x = {} \u {} -> plus# {20, 22}
  in case x {} of { a -> plus# {a, 0} }`)

	states, err := traceStates(state)
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	final := states[len(states)-1]
	if code, ok := final.Code.(CodeReturnInt); !ok || code.Value != 42 {
		t.Fatalf("final code = %s, want ReturnInt(42)", final.Code.String())
	}

	// x lives at the first address allocated after the single global
	xAddr := Addr(1)
	closure, err := final.Heap.Lookup(xAddr)
	if err != nil {
		t.Fatalf("heap lookup: %v", err)
	}
	body, ok := closure.Lambda.Body.(*ast.IntExpr)
	if !ok {
		t.Fatalf("thunk not overwritten: body is %T", closure.Lambda.Body)
	}
	if body.Value != 42 || closure.Lambda.UpdateFlag != ast.NoUpdate {
		t.Errorf("thunk overwritten with %s (%s), want \\n 42", closure.Lambda.Body.String(), closure.Lambda.UpdateFlag)
	}
}

func TestReturnConstructorUpdatesThunkInPlace(t *testing.T) {
	state := compileSource(t, `
define main = {} \u {} ->
  let x = {} \u {} -> Pair {1, 2}
  in case x {} of {
       Pair {a, b} -> case x {} of {
                        Pair {c, d} -> plus# {a, d}
                      }
     }`)

	states, err := traceStates(state)
	if err != nil {
		t.Fatalf("trace: %v", err)
	}
	final := states[len(states)-1]
	if code, ok := final.Code.(CodeReturnInt); !ok || code.Value != 3 {
		t.Fatalf("final code = %s, want ReturnInt(3)", final.Code.String())
	}

	// the constructor expression Pair {1, 2} must be evaluated once;
	// the second force returns the snapshotted constructor closure
	conEvals := 0
	for _, s := range states {
		if eval, ok := s.Code.(CodeEval); ok {
			if con, ok := eval.Expr.(*ast.ConstructorExpr); ok && con.Name == "Pair" && len(con.Args) == 2 {
				if _, lit := con.Args[0].(*ast.IntAtom); lit {
					conEvals++
				}
			}
		}
	}
	if conEvals != 1 {
		t.Errorf("Pair {1, 2} evaluated %d times, want exactly 1", conEvals)
	}
}
