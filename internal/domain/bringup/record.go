package bringup

import (
	"time"

	"github.com/google/uuid"
)

// record is the transient execution state of one Execute call.
// It is created fresh per call and only surfaces through the Report.
type record struct {
	runID      string
	state      RunState
	history    []RunState
	order      []StepID
	outcomes   []StepOutcome
	failed     StepID
	startedAt  time.Time
	finishedAt time.Time
}

func newRecord(now time.Time) *record {
	return &record{
		runID:     uuid.New().String(),
		startedAt: now,
	}
}

// enter records a state transition.
func (r *record) enter(s RunState) {
	r.state = s
	r.history = append(r.history, s)
}

// complete records a step outcome.
func (r *record) complete(outcome StepOutcome) {
	r.outcomes = append(r.outcomes, outcome)
	if outcome.Err != nil {
		r.failed = outcome.ID
	}
}

// report snapshots the record.
func (r *record) report(planName string, finishedAt time.Time) *Report {
	r.finishedAt = finishedAt

	order := make([]StepID, len(r.order))
	copy(order, r.order)
	outcomes := make([]StepOutcome, len(r.outcomes))
	copy(outcomes, r.outcomes)
	history := make([]RunState, len(r.history))
	copy(history, r.history)

	return &Report{
		RunID:       r.runID,
		Plan:        planName,
		State:       r.state,
		Transitions: history,
		Order:       order,
		Executed:    outcomes,
		Failed:      r.failed,
		StartedAt:   r.startedAt,
		Duration:    r.finishedAt.Sub(r.startedAt),
	}
}

// StepOutcome is the result of running one step's action.
type StepOutcome struct {
	ID       StepID
	Category Category
	Duration time.Duration
	Err      error
}

// Success returns true if the action succeeded.
func (o StepOutcome) Success() bool {
	return o.Err == nil
}

// Report describes how one Execute call resolved.
type Report struct {
	RunID       string
	Plan        string
	State       RunState
	Transitions []RunState
	Order       []StepID
	Executed    []StepOutcome
	Failed      StepID
	StartedAt   time.Time
	Duration    time.Duration
}

// Succeeded returns true if every step ran and succeeded.
func (r *Report) Succeeded() bool {
	return r.State == StateSucceeded
}

// ExecutedIDs returns the IDs of steps whose action ran, in run order.
func (r *Report) ExecutedIDs() []StepID {
	ids := make([]StepID, len(r.Executed))
	for i, o := range r.Executed {
		ids[i] = o.ID
	}
	return ids
}
