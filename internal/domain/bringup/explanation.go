package bringup

// Explanation describes one step's place in the execution order.
type Explanation struct {
	position    int
	id          StepID
	category    Category
	description string
	dependsOn   []StepID
	dependents  []StepID
}

// Position returns the 1-based position of the step in the execution order.
func (e Explanation) Position() int {
	return e.position
}

// ID returns the step ID.
func (e Explanation) ID() StepID {
	return e.id
}

// Category returns the step category.
func (e Explanation) Category() Category {
	return e.category
}

// Description returns the human-readable description, if any.
func (e Explanation) Description() string {
	return e.description
}

// DependsOn returns the direct dependencies.
func (e Explanation) DependsOn() []StepID {
	deps := make([]StepID, len(e.dependsOn))
	copy(deps, e.dependsOn)
	return deps
}

// Dependents returns the steps that directly depend on this one, in registration order.
func (e Explanation) Dependents() []StepID {
	deps := make([]StepID, len(e.dependents))
	copy(deps, e.dependents)
	return deps
}

// IsRoot returns true if the step has no dependencies.
func (e Explanation) IsRoot() bool {
	return len(e.dependsOn) == 0
}

// Explain returns one Explanation per step, in execution order.
func Explain(plan *Plan) ([]Explanation, error) {
	indices, err := plan.order()
	if err != nil {
		return nil, err
	}

	dependents := plan.dependents()
	out := make([]Explanation, 0, len(indices))
	for pos, idx := range indices {
		step := plan.steps[idx]
		exp := Explanation{
			position:    pos + 1,
			id:          step.ID,
			category:    step.Category,
			description: step.Description,
			dependsOn:   step.DependsOn,
		}
		for _, d := range dependents[idx] {
			exp.dependents = append(exp.dependents, plan.steps[d].ID)
		}
		out = append(out, exp)
	}
	return out, nil
}
