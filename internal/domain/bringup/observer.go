package bringup

// Observer receives run lifecycle notifications, e.g. for metrics.
// Observers must not block; they run inline with the bring-up sequence.
type Observer interface {
	RunStarted(plan *Plan, runID string)
	StepFinished(runID string, outcome StepOutcome)
	RunFinished(report *Report)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

// RunStarted does nothing.
func (NopObserver) RunStarted(_ *Plan, _ string) {}

// StepFinished does nothing.
func (NopObserver) StepFinished(_ string, _ StepOutcome) {}

// RunFinished does nothing.
func (NopObserver) RunFinished(_ *Report) {}

// MultiObserver fans notifications out to several observers in order.
type MultiObserver []Observer

// RunStarted notifies every observer.
func (m MultiObserver) RunStarted(plan *Plan, runID string) {
	for _, o := range m {
		o.RunStarted(plan, runID)
	}
}

// StepFinished notifies every observer.
func (m MultiObserver) StepFinished(runID string, outcome StepOutcome) {
	for _, o := range m {
		o.StepFinished(runID, outcome)
	}
}

// RunFinished notifies every observer.
func (m MultiObserver) RunFinished(report *Report) {
	for _, o := range m {
		o.RunFinished(report)
	}
}

var (
	_ Observer = NopObserver{}
	_ Observer = MultiObserver(nil)
)
