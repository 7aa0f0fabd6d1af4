// Package bringup orders and executes hardware bring-up plans.
//
// A Plan is a set of Steps with explicit dependency edges. The Orchestrator
// validates the plan, derives a deterministic topological order (registration
// order breaks ties), runs every action exactly once and strictly
// sequentially, and stops at the first failure.
package bringup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/bringup/internal/ports"
)

// ErrNilPlan is returned when Execute is called without a plan.
var ErrNilPlan = errors.New("plan is nil")

// Orchestrator runs bring-up plans.
// It holds no per-run state; every Execute call works on a fresh record.
type Orchestrator struct {
	logger   ports.Logger
	observer Observer
	now      func() time.Time
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		observer: NopObserver{},
		now:      time.Now,
	}
}

// WithLogger returns an Orchestrator that logs through the given logger.
// Without one, the logger attached to the Execute context is used, if any.
func (o *Orchestrator) WithLogger(logger ports.Logger) *Orchestrator {
	c := *o
	c.logger = logger
	return &c
}

// WithObserver returns an Orchestrator that notifies the given observer.
func (o *Orchestrator) WithObserver(observer Observer) *Orchestrator {
	c := *o
	if observer == nil {
		observer = NopObserver{}
	}
	c.observer = observer
	return &c
}

// WithClock returns an Orchestrator that reads time from now.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	c := *o
	c.now = now
	return &c
}

// Execute validates, orders and runs the plan.
//
// An invalid plan returns a *PlanError and runs nothing. The first failing
// action stops the run with a *BringupError; steps already executed are not
// rolled back and nothing is retried. The context is handed to every action
// but never cancelled or polled here.
//
// The returned Report is non-nil whenever the run got past construction of
// its state machine, including on failure.
func (o *Orchestrator) Execute(ctx context.Context, plan *Plan) (*Report, error) {
	if plan == nil {
		return nil, ErrNilPlan
	}

	rec := newRecord(o.now())
	machine, err := newRunMachine(rec)
	if err != nil {
		return nil, err
	}
	defer machine.stop()

	log := o.loggerFor(ctx)
	if log != nil {
		log = log.With(ports.F("plan", plan.Name()), ports.F("run_id", rec.runID))
	}

	o.observer.RunStarted(plan, rec.runID)
	machine.send(EventValidate)

	indices, err := plan.order()
	if err != nil {
		machine.send(EventInvalid)
		logError(ctx, log, "bring-up plan rejected", ports.F("error", err.Error()))
		return o.finish(plan, rec), err
	}

	rec.order = make([]StepID, len(indices))
	for i, idx := range indices {
		rec.order[i] = plan.steps[idx].ID
	}
	machine.send(EventOrdered)
	logInfo(ctx, log, "bring-up started", ports.F("steps", len(indices)))

	machine.send(EventStart)
	for _, idx := range indices {
		step := plan.steps[idx]
		logDebug(ctx, log, "running step",
			ports.F("step", step.ID.String()),
			ports.F("category", step.Category.String()))

		outcome := o.runStep(ctx, step)
		rec.complete(outcome)
		o.observer.StepFinished(rec.runID, outcome)

		if outcome.Err != nil {
			machine.send(EventFail)
			logError(ctx, log, "bring-up step failed",
				ports.F("step", step.ID.String()),
				ports.F("category", step.Category.String()),
				ports.F("error", outcome.Err.Error()))
			return o.finish(plan, rec), &BringupError{
				StepID:   step.ID,
				Category: step.Category,
				Reason:   outcome.Err,
			}
		}

		logDebug(ctx, log, "step done",
			ports.F("step", step.ID.String()),
			ports.F("duration", outcome.Duration.String()))
	}

	machine.send(EventFinish)
	report := o.finish(plan, rec)
	logInfo(ctx, log, "bring-up succeeded", ports.F("duration", report.Duration.String()))
	return report, nil
}

// runStep runs one action. A panic becomes a failure of that step.
func (o *Orchestrator) runStep(ctx context.Context, step Step) (outcome StepOutcome) {
	outcome = StepOutcome{ID: step.ID, Category: step.Category}
	start := o.now()
	defer func() {
		if r := recover(); r != nil {
			outcome.Err = fmt.Errorf("%w: %v", ErrActionPanicked, r)
		}
		outcome.Duration = o.now().Sub(start)
	}()

	outcome.Err = step.Action(ctx)
	return outcome
}

func (o *Orchestrator) finish(plan *Plan, rec *record) *Report {
	report := rec.report(plan.Name(), o.now())
	o.observer.RunFinished(report)
	return report
}

func (o *Orchestrator) loggerFor(ctx context.Context) ports.Logger {
	if o.logger != nil {
		return o.logger
	}
	return ports.LoggerFromContext(ctx)
}

func logDebug(ctx context.Context, log ports.Logger, msg string, fields ...ports.Field) {
	if log != nil {
		log.Debug(ctx, msg, fields...)
	}
}

func logInfo(ctx context.Context, log ports.Logger, msg string, fields ...ports.Field) {
	if log != nil {
		log.Info(ctx, msg, fields...)
	}
}

func logError(ctx context.Context, log ports.Logger, msg string, fields ...ports.Field) {
	if log != nil {
		log.Error(ctx, msg, fields...)
	}
}
