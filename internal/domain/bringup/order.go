package bringup

import "container/heap"

// Order returns one valid topological order of the plan's steps.
//
// Among steps whose dependencies are all placed, the earliest registered one
// goes first. The same plan therefore always yields the same order.
func Order(plan *Plan) ([]StepID, error) {
	indices, err := plan.order()
	if err != nil {
		return nil, err
	}
	ids := make([]StepID, len(indices))
	for i, idx := range indices {
		ids[i] = plan.steps[idx].ID
	}
	return ids, nil
}

// order validates the plan and returns registration indices in execution order.
func (p *Plan) order() ([]int, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}

	// Kahn's algorithm with a min-heap of registration indices as the ready set.
	indeg := make([]int, len(p.steps))
	for i, step := range p.steps {
		indeg[i] = len(step.DependsOn)
	}
	dependents := p.dependents()

	ready := &indexHeap{}
	for i, d := range indeg {
		if d == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]int, 0, len(p.steps))
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		out = append(out, i)
		for _, j := range dependents[i] {
			indeg[j]--
			if indeg[j] == 0 {
				heap.Push(ready, j)
			}
		}
	}

	// Validate already rejected cycles; this guards the invariant.
	if len(out) != len(p.steps) {
		if cycle := p.findCycle(); cycle != nil {
			return nil, newCycleError(cycle)
		}
	}
	return out, nil
}

type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
