package machine

import (
	"sort"

	"github.com/cwbudde/go-stg/internal/ast"
	"github.com/cwbudde/go-stg/internal/stgerr"
)

// GlobalEnv maps top-level binding names to their heap address. It is
// populated once during compilation and is immutable thereafter.
type GlobalEnv map[string]Addr

// LocalEnv maps in-scope variable names to values. A fresh LocalEnv is
// built whenever a closure is entered (binding free-var names to
// free-var values and bound-var names to argument-stack values).
type LocalEnv map[string]Value

// copyEnv returns a shallow copy of env, suitable for extending
// without mutating the caller's map.
func copyEnv(env LocalEnv) LocalEnv {
	next := make(LocalEnv, len(env)+1)
	for k, v := range env {
		next[k] = v
	}
	return next
}

func bindFreeVars(names []string, values []Value) LocalEnv {
	env := make(LocalEnv, len(names))
	for i, n := range names {
		env[n] = values[i]
	}
	return env
}

func sortedKeys(env LocalEnv) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedGlobalKeys(global GlobalEnv) []string {
	keys := make([]string, 0, len(global))
	for k := range global {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LookupVariable resolves name against local first, then global
// (shadowing: local wins), wrapping a global hit as a ValueAddr.
func LookupVariable(local LocalEnv, global GlobalEnv, name string) (Value, error) {
	if local != nil {
		if v, ok := local[name]; ok {
			return v, nil
		}
	}
	if addr, ok := global[name]; ok {
		return ValueAddr{Addr: addr}, nil
	}
	return nil, &stgerr.EnvLookupFailedError{
		Name:   name,
		Local:  sortedKeys(local),
		Global: sortedGlobalKeys(global),
	}
}

// LookupAtom resolves an atom to a value: literal ints lift directly;
// variables go through LookupVariable.
func LookupAtom(local LocalEnv, global GlobalEnv, atom ast.Atom) (Value, error) {
	switch a := atom.(type) {
	case *ast.IntAtom:
		return ValuePrimInt{Int: a.Value}, nil
	case *ast.VarAtom:
		return LookupVariable(local, global, a.Name)
	default:
		panic("machine: unreachable atom variant")
	}
}

// resolveFreeVars looks up each free-variable identifier of a lambda
// form against the given environments, in order, producing the value
// vector a new closure captures.
func resolveFreeVars(local LocalEnv, global GlobalEnv, names []string) ([]Value, error) {
	vals := make([]Value, len(names))
	for i, n := range names {
		v, err := LookupVariable(local, global, n)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
