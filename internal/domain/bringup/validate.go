package bringup

// Validate checks that every dependency resolves and that the plan is acyclic.
//
// The first dangling reference in registration order is reported. Cycles are
// found by depth-first traversal along depends_on edges: a step reached again
// while still in progress closes a cycle. Roots and edges are visited in
// registration order, so the reported cycle is stable for a given plan.
func Validate(plan *Plan) error {
	if err := plan.checkReferences(); err != nil {
		return err
	}
	if cycle := plan.findCycle(); cycle != nil {
		return newCycleError(cycle)
	}
	return nil
}

func (p *Plan) checkReferences() error {
	for _, step := range p.steps {
		for _, dep := range step.DependsOn {
			if _, ok := p.index[dep.String()]; !ok {
				return newDanglingError(step.ID, dep)
			}
		}
	}
	return nil
}

// findCycle returns the first cycle found, closed by repeating its first
// member, or nil. References must already be resolved.
func (p *Plan) findCycle() []StepID {
	const (
		unvisited = iota
		inProgress
		done
	)

	mark := make([]int, len(p.steps))
	stack := make([]int, 0, len(p.steps))
	var cycle []StepID

	var visit func(i int) bool
	visit = func(i int) bool {
		mark[i] = inProgress
		stack = append(stack, i)

		for _, dep := range p.steps[i].DependsOn {
			j := p.index[dep.String()]
			switch mark[j] {
			case unvisited:
				if visit(j) {
					return true
				}
			case inProgress:
				// Back edge i -> j: the cycle is the stack suffix starting at j.
				start := len(stack) - 1
				for stack[start] != j {
					start--
				}
				for _, k := range stack[start:] {
					cycle = append(cycle, p.steps[k].ID)
				}
				cycle = append(cycle, p.steps[j].ID)
				return true
			}
		}

		stack = stack[:len(stack)-1]
		mark[i] = done
		return false
	}

	for i := range p.steps {
		if mark[i] == unvisited && visit(i) {
			return cycle
		}
	}
	return nil
}
