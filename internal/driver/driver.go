// Package driver sequences internal/machine.Step into the three
// top-level operations a caller actually wants: a single step, a full
// trace of every intermediate state, and running straight to the
// final state. None of it adds machine semantics of its own — it is
// bookkeeping around Step.
package driver

import (
	"fmt"

	"github.com/cwbudde/go-stg/internal/machine"
)

// MaxSteps bounds RunToFinal and Trace against non-terminating
// programs. It is a var, not a const, so callers needing a different
// ceiling can override it per process.
var MaxSteps = 1_000_000

// StepBudgetExceededError is returned when a run does not reach a
// final state within MaxSteps steps.
type StepBudgetExceededError struct {
	Limit int
}

func (e *StepBudgetExceededError) Error() string {
	return fmt.Sprintf("driver: exceeded step budget of %d without reaching a final state", e.Limit)
}

// Step advances state by exactly one machine transition.
func Step(state machine.State) (machine.State, machine.StepStatus, error) {
	return machine.Step(state)
}

// RunToFinal repeatedly steps state until it reaches a final state or
// an error occurs, returning the final state. It does not retain
// intermediate states; use Trace for that.
func RunToFinal(state machine.State) (machine.State, error) {
	return RunToFinalLimit(state, MaxSteps)
}

// RunToFinalLimit is RunToFinal with an explicit step budget instead
// of the package-level MaxSteps.
func RunToFinalLimit(state machine.State, maxSteps int) (machine.State, error) {
	for i := 0; i < maxSteps; i++ {
		next, status, err := machine.Step(state)
		if err != nil {
			return next, err
		}
		state = next
		if status == machine.StepFinal || state.IsFinal() {
			return state, nil
		}
	}
	return state, &StepBudgetExceededError{Limit: maxSteps}
}

// Trace steps state until a final state or an error, returning every
// state visited in order, including the initial one. Because
// machine.State's component stacks and heap are persistent value
// types, each entry is an independent snapshot unaffected by later
// steps.
func Trace(state machine.State) ([]machine.State, error) {
	return TraceLimit(state, MaxSteps)
}

// TraceLimit is Trace with an explicit step budget instead of the
// package-level MaxSteps.
func TraceLimit(state machine.State, maxSteps int) ([]machine.State, error) {
	states := make([]machine.State, 0, 64)
	states = append(states, state)

	for i := 0; i < maxSteps; i++ {
		next, status, err := machine.Step(state)
		if err != nil {
			return states, err
		}
		if status == machine.StepFinal {
			return states, nil
		}
		state = next
		states = append(states, state)
		if state.IsFinal() {
			return states, nil
		}
	}
	return states, &StepBudgetExceededError{Limit: maxSteps}
}
