// Package printer renders a machine.State as human-readable text, the
// way a REPL or a trace dump would display it: one block per
// component (code, the three stacks, the heap, global names), each
// line self-contained enough to read without cross-referencing the
// others.
package printer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cwbudde/go-stg/internal/machine"
)

// State renders a single machine state.
func State(s machine.State) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "step %d: %s\n", s.Steps, codeLine(s.Code))
	fmt.Fprintf(&sb, "  args:   %s\n", argStackLine(s.Args))
	fmt.Fprintf(&sb, "  return: %s\n", returnStackLine(s.Return))
	fmt.Fprintf(&sb, "  update: %s\n", updateStackLine(s.Update))
	fmt.Fprintf(&sb, "  heap:   %d closures\n", s.Heap.Len())
	fmt.Fprintf(&sb, "  env:    %s\n", globalsLine(s.Globals))
	return sb.String()
}

// Trace renders a sequence of states, one block per state, separated
// by blank lines.
func Trace(states []machine.State) string {
	blocks := make([]string, len(states))
	for i, s := range states {
		blocks[i] = State(s)
	}
	return strings.Join(blocks, "\n")
}

func codeLine(code machine.Code) string {
	switch c := code.(type) {
	case machine.CodeEval:
		return fmt.Sprintf("Eval(%s)", c.Expr.String())
	case machine.CodeEnter:
		return fmt.Sprintf("Enter(#%d)", int(c.Addr))
	case machine.CodeReturnInt:
		return fmt.Sprintf("ReturnInt(%d)", c.Value)
	case machine.CodeReturnConstructor:
		parts := make([]string, len(c.Values))
		for i, v := range c.Values {
			parts[i] = v.String()
		}
		return fmt.Sprintf("ReturnConstructor(%s {%s})", c.Con, strings.Join(parts, ", "))
	default:
		return code.String()
	}
}

func argStackLine(args machine.ArgStack) string {
	if len(args) == 0 {
		return "[]"
	}
	parts := make([]string, len(args))
	for i, v := range args {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func returnStackLine(ret machine.ReturnStack) string {
	return fmt.Sprintf("%d pending continuation(s)", len(ret))
}

func globalsLine(globals machine.GlobalEnv) string {
	if len(globals) == 0 {
		return "{}"
	}
	names := make([]string, 0, len(globals))
	for name := range globals {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=#%d", name, int(globals[name]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func updateStackLine(upd machine.UpdateStack) string {
	if len(upd) == 0 {
		return "[]"
	}
	parts := make([]string, len(upd))
	for i, f := range upd {
		parts[i] = fmt.Sprintf("#%d", int(f.Addr))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
