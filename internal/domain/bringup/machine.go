package bringup

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// RunState is the state of a single Execute call.
type RunState string

// Machine state names, untyped so they feed statekit directly.
const (
	stNotStarted = "not_started"
	stValidating = "validating"
	stInvalid    = "invalid"
	stOrdered    = "ordered"
	stExecuting  = "executing"
	stSucceeded  = "succeeded"
	stFailed     = "failed"
)

const (
	// StateNotStarted is the initial state of every run.
	StateNotStarted RunState = stNotStarted
	// StateValidating means the plan is being validated and ordered.
	StateValidating RunState = stValidating
	// StateInvalid means the plan was rejected; no step ran. Terminal.
	StateInvalid RunState = stInvalid
	// StateOrdered means a valid execution order was computed.
	StateOrdered RunState = stOrdered
	// StateExecuting means steps are running one at a time.
	StateExecuting RunState = stExecuting
	// StateSucceeded means every step ran once and succeeded. Terminal.
	StateSucceeded RunState = stSucceeded
	// StateFailed means a step failed and the run stopped there. Terminal.
	StateFailed RunState = stFailed
)

// IsTerminal returns true if the run cannot progress further.
func (s RunState) IsTerminal() bool {
	switch s {
	case StateInvalid, StateSucceeded, StateFailed:
		return true
	case StateNotStarted, StateValidating, StateOrdered, StateExecuting:
		return false
	}
	return false
}

// String returns the string representation of the state.
func (s RunState) String() string {
	return string(s)
}

// Event types for the run state machine.
const (
	EventValidate = "VALIDATE"
	EventInvalid  = "INVALID"
	EventOrdered  = "ORDERED"
	EventStart    = "START"
	EventFinish   = "FINISH"
	EventFail     = "FAIL"
	EventReset    = "RESET"
)

// machineContext is the statekit context type. The record pointer is captured
// by closures instead, so entry actions update the live record.
type machineContext struct{}

// runMachine drives one run through its states.
type runMachine struct {
	interp *statekit.Interpreter[machineContext]
	rec    *record
}

// newRunMachine builds the run state machine.
// Terminal states only accept RESET, which re-arms a machine for a fresh run;
// Execute never sends it because each run builds its own machine.
func newRunMachine(rec *record) (*runMachine, error) {
	enter := func(s RunState) func(*machineContext, statekit.Event) {
		return func(_ *machineContext, _ statekit.Event) {
			rec.enter(s)
		}
	}

	machine, err := statekit.NewMachine[machineContext]("bringup-run").
		WithInitial(stNotStarted).
		WithContext(machineContext{}).
		WithAction("enterValidating", enter(StateValidating)).
		WithAction("enterInvalid", enter(StateInvalid)).
		WithAction("enterOrdered", enter(StateOrdered)).
		WithAction("enterExecuting", enter(StateExecuting)).
		WithAction("enterSucceeded", enter(StateSucceeded)).
		WithAction("enterFailed", enter(StateFailed)).
		State(stNotStarted).
		On(EventValidate).Target(stValidating).Done().
		State(stValidating).
		OnEntry("enterValidating").
		On(EventInvalid).Target(stInvalid).
		On(EventOrdered).Target(stOrdered).Done().
		State(stInvalid).
		OnEntry("enterInvalid").
		On(EventReset).Target(stNotStarted).Done().
		State(stOrdered).
		OnEntry("enterOrdered").
		On(EventStart).Target(stExecuting).Done().
		State(stExecuting).
		OnEntry("enterExecuting").
		On(EventFinish).Target(stSucceeded).
		On(EventFail).Target(stFailed).Done().
		State(stSucceeded).
		OnEntry("enterSucceeded").
		On(EventReset).Target(stNotStarted).Done().
		State(stFailed).
		OnEntry("enterFailed").
		On(EventReset).Target(stNotStarted).Done().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build run state machine: %w", err)
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()
	rec.enter(StateNotStarted)

	return &runMachine{interp: interp, rec: rec}, nil
}

// send delivers an event and reports the resulting state.
func (m *runMachine) send(event string) RunState {
	m.interp.Send(statekit.Event{Type: statekit.EventType(event)})
	return m.State()
}

// State returns the current state.
func (m *runMachine) State() RunState {
	return RunState(m.interp.State().Value)
}

// stop releases the interpreter.
func (m *runMachine) stop() {
	m.interp.Stop()
}
