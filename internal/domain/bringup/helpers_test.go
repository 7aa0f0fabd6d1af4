package bringup

import (
	"context"
	"errors"
)

// journal records which actions ran, in order.
type journal struct {
	calls []string
}

func (j *journal) action(id string) Action {
	return func(context.Context) error {
		j.calls = append(j.calls, id)
		return nil
	}
}

func (j *journal) failing(id string, err error) Action {
	return func(context.Context) error {
		j.calls = append(j.calls, id)
		return err
	}
}

// newTestStep builds a step whose action appends its ID to the journal.
func newTestStep(j *journal, id string, deps ...string) Step {
	depIDs := make([]StepID, len(deps))
	for i, d := range deps {
		depIDs[i] = MustNewStepID(d)
	}
	return NewStep(MustNewStepID(id), CategoryOther, j.action(id), depIDs...)
}

// newTestPlan registers steps in the given order.
func newTestPlan(steps ...Step) *Plan {
	plan := NewPlan("test-board")
	for _, s := range steps {
		plan.MustAdd(s)
	}
	return plan
}

func idStrings(ids []StepID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

var errClockUnstable = errors.New("PLL did not lock")
