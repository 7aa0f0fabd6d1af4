package bringup

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for bring-up failures.
const (
	ErrCodeDanglingDependency = "DANGLING_DEPENDENCY"
	ErrCodeCyclicDependency   = "CYCLIC_DEPENDENCY"
	ErrCodeActionFailed       = "ACTION_FAILED"
)

// Sentinels matched with errors.Is.
var (
	ErrDanglingDependency = errors.New("step depends on nonexistent step")
	ErrCycle              = errors.New("cyclic dependency detected")
	ErrActionFailed       = errors.New("step action failed")
	ErrActionPanicked     = errors.New("step action panicked")
)

// PlanErrorKind distinguishes structural plan failures.
type PlanErrorKind int

const (
	// DanglingDependency means a step references a step that is not in the plan.
	DanglingDependency PlanErrorKind = iota + 1
	// Cycle means the dependency relation is not acyclic.
	Cycle
)

// String returns the string representation of the kind.
func (k PlanErrorKind) String() string {
	switch k {
	case DanglingDependency:
		return "dangling-dependency"
	case Cycle:
		return "cycle"
	default:
		return "unknown"
	}
}

// PlanError reports a structurally invalid plan. No step runs once one is detected.
type PlanError struct {
	Kind PlanErrorKind

	// Set for DanglingDependency.
	StepID  StepID
	Missing StepID

	// Set for Cycle: members in traversal order, first ID repeated at the end.
	Cycle []StepID
}

// Error returns the formatted error message.
func (e *PlanError) Error() string {
	switch e.Kind {
	case DanglingDependency:
		return fmt.Sprintf("step %q depends on %q which does not exist", e.StepID, e.Missing)
	case Cycle:
		return "cyclic dependency detected: " + joinIDs(e.Cycle, " → ")
	default:
		return "invalid plan"
	}
}

// Is supports errors.Is against ErrDanglingDependency and ErrCycle.
func (e *PlanError) Is(target error) bool {
	switch e.Kind {
	case DanglingDependency:
		return target == ErrDanglingDependency
	case Cycle:
		return target == ErrCycle
	}
	return false
}

// Code returns the error code for categorization.
func (e *PlanError) Code() string {
	if e.Kind == Cycle {
		return ErrCodeCyclicDependency
	}
	return ErrCodeDanglingDependency
}

// Suggestion returns an actionable hint for the plan author.
func (e *PlanError) Suggestion() string {
	if e.Kind == Cycle {
		return "Review the depends_on lists of the steps above to break the circular chain."
	}
	return fmt.Sprintf("Define a step with ID %q or remove it from the depends_on list of %q.", e.Missing, e.StepID)
}

// Format returns a fully formatted error with all details.
func (e *PlanError) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code(), e.Error())
	if e.Kind == DanglingDependency {
		fmt.Fprintf(&b, "\n  Step: %s", e.StepID)
	}
	fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion())
	return b.String()
}

// CycleMembers returns the distinct step IDs that form the cycle.
func (e *PlanError) CycleMembers() []StepID {
	if len(e.Cycle) <= 1 {
		return e.Cycle
	}
	return e.Cycle[:len(e.Cycle)-1]
}

// BringupError reports the first action that failed during a run.
// Steps executed before it are not rolled back.
type BringupError struct {
	StepID   StepID
	Category Category
	Reason   error
}

// Error returns the formatted error message.
func (e *BringupError) Error() string {
	return fmt.Sprintf("step %q (%s) failed: %v", e.StepID, e.Category, e.Reason)
}

// Unwrap returns the action's error.
func (e *BringupError) Unwrap() error {
	return e.Reason
}

// Is supports errors.Is against ErrActionFailed.
func (e *BringupError) Is(target error) bool {
	return target == ErrActionFailed
}

// Code returns the error code for categorization.
func (e *BringupError) Code() string {
	return ErrCodeActionFailed
}

// Format returns a fully formatted error with all details.
func (e *BringupError) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] step failed during bring-up", ErrCodeActionFailed)
	fmt.Fprintf(&b, "\n  Step: %s", e.StepID)
	fmt.Fprintf(&b, "\n  Category: %s", e.Category)
	if e.Reason != nil {
		fmt.Fprintf(&b, "\n  Cause: %s", e.Reason.Error())
	}
	b.WriteString("\n  Suggestion: Correct the peripheral configuration and re-run the whole plan.")
	return b.String()
}

func newDanglingError(step, missing StepID) *PlanError {
	return &PlanError{Kind: DanglingDependency, StepID: step, Missing: missing}
}

func newCycleError(cycle []StepID) *PlanError {
	return &PlanError{Kind: Cycle, Cycle: cycle}
}

func joinIDs(ids []StepID, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, sep)
}
