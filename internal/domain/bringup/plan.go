package bringup

import (
	"errors"
	"fmt"
)

// Errors for Plan construction.
var (
	ErrDuplicateStep = errors.New("step with this ID already exists")
	ErrNilAction     = errors.New("step has no action")
	ErrZeroStepID    = errors.New("step has no ID")
)

// Plan is the caller-owned set of steps for one bring-up pass.
// Steps keep their registration order, which breaks ties during ordering.
// A Plan must not be mutated while Execute is running.
type Plan struct {
	name  string
	steps []Step
	index map[string]int // step ID -> registration index
}

// NewPlan creates an empty Plan.
func NewPlan(name string) *Plan {
	return &Plan{
		name:  name,
		steps: make([]Step, 0),
		index: make(map[string]int),
	}
}

// Name returns the plan name (usually the board name).
func (p *Plan) Name() string {
	return p.name
}

// Len returns the number of steps in the plan.
func (p *Plan) Len() int {
	return len(p.steps)
}

// Add registers a step.
// Dependencies are not resolved here: a step may be added before the steps it depends on.
func (p *Plan) Add(step Step) error {
	if step.ID.IsZero() {
		return ErrZeroStepID
	}
	id := step.ID.String()
	if _, exists := p.index[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateStep, id)
	}
	if step.Action == nil {
		return fmt.Errorf("%w: %q", ErrNilAction, id)
	}
	if step.Category == "" {
		step.Category = CategoryOther
	}

	// Repeated dependencies collapse to one edge.
	deps := make([]StepID, 0, len(step.DependsOn))
	seen := make(map[string]bool, len(step.DependsOn))
	for _, dep := range step.DependsOn {
		if seen[dep.String()] {
			continue
		}
		seen[dep.String()] = true
		deps = append(deps, dep)
	}
	step.DependsOn = deps

	p.index[id] = len(p.steps)
	p.steps = append(p.steps, step)
	return nil
}

// MustAdd registers a step, panicking on error.
func (p *Plan) MustAdd(step Step) *Plan {
	if err := p.Add(step); err != nil {
		panic(err)
	}
	return p
}

// Get retrieves a step by ID.
func (p *Plan) Get(id StepID) (Step, bool) {
	i, ok := p.index[id.String()]
	if !ok {
		return Step{}, false
	}
	return p.steps[i], true
}

// Steps returns all steps in registration order.
func (p *Plan) Steps() []Step {
	steps := make([]Step, len(p.steps))
	copy(steps, p.steps)
	return steps
}

// dependents returns, for each registration index, the indices of steps that
// depend on it, in registration order. Dangling references are ignored.
func (p *Plan) dependents() [][]int {
	out := make([][]int, len(p.steps))
	for i, step := range p.steps {
		for _, dep := range step.DependsOn {
			if j, ok := p.index[dep.String()]; ok {
				out[j] = append(out[j], i)
			}
		}
	}
	return out
}
