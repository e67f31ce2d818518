package machine

import (
	"errors"
	"testing"

	"github.com/cwbudde/go-stg/internal/ast"
	"github.com/cwbudde/go-stg/internal/stgerr"
)

func TestLookupVariableLocalWinsOverGlobal(t *testing.T) {
	local := LocalEnv{"x": ValuePrimInt{Int: 7}}
	global := GlobalEnv{"x": Addr(0)}

	v, err := LookupVariable(local, global, "x")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if prim, ok := v.(ValuePrimInt); !ok || prim.Int != 7 {
		t.Errorf("lookup = %v, want local 7", v)
	}
}

func TestLookupVariableFallsBackToGlobal(t *testing.T) {
	local := LocalEnv{"y": ValuePrimInt{Int: 1}}
	global := GlobalEnv{"x": Addr(3)}

	v, err := LookupVariable(local, global, "x")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if addr, ok := v.(ValueAddr); !ok || addr.Addr != 3 {
		t.Errorf("lookup = %v, want address 3", v)
	}
}

func TestLookupVariableFails(t *testing.T) {
	_, err := LookupVariable(LocalEnv{"a": ValuePrimInt{Int: 1}}, GlobalEnv{"b": Addr(0)}, "c")
	if err == nil {
		t.Fatal("expected EnvLookupFailed")
	}

	var lookupErr *stgerr.EnvLookupFailedError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("error is %T, want EnvLookupFailedError", err)
	}
	if lookupErr.Name != "c" {
		t.Errorf("failed name = %q, want c", lookupErr.Name)
	}
	if len(lookupErr.Local) != 1 || lookupErr.Local[0] != "a" {
		t.Errorf("local names = %v, want [a]", lookupErr.Local)
	}
	if len(lookupErr.Global) != 1 || lookupErr.Global[0] != "b" {
		t.Errorf("global names = %v, want [b]", lookupErr.Global)
	}
}

func TestLookupVariableNilLocal(t *testing.T) {
	v, err := LookupVariable(nil, GlobalEnv{"x": Addr(2)}, "x")
	if err != nil {
		t.Fatalf("lookup with nil local env: %v", err)
	}
	if addr, ok := v.(ValueAddr); !ok || addr.Addr != 2 {
		t.Errorf("lookup = %v, want address 2", v)
	}
}

func TestLookupAtom(t *testing.T) {
	local := LocalEnv{"x": ValueAddr{Addr: 4}}

	v, err := LookupAtom(local, nil, &ast.IntAtom{Value: 12})
	if err != nil {
		t.Fatalf("int atom: %v", err)
	}
	if prim, ok := v.(ValuePrimInt); !ok || prim.Int != 12 {
		t.Errorf("int atom = %v, want 12", v)
	}

	v, err = LookupAtom(local, nil, &ast.VarAtom{Name: "x"})
	if err != nil {
		t.Fatalf("var atom: %v", err)
	}
	if addr, ok := v.(ValueAddr); !ok || addr.Addr != 4 {
		t.Errorf("var atom = %v, want address 4", v)
	}
}

func TestCopyEnvDoesNotAliasOriginal(t *testing.T) {
	env := LocalEnv{"x": ValuePrimInt{Int: 1}}
	next := copyEnv(env)
	next["x"] = ValuePrimInt{Int: 2}
	next["y"] = ValuePrimInt{Int: 3}

	if got := env["x"].(ValuePrimInt).Int; got != 1 {
		t.Errorf("original env mutated: x = %d", got)
	}
	if _, ok := env["y"]; ok {
		t.Errorf("original env gained key y")
	}
}
