// Package app wires board files, the compiler, the simulated hardware and
// the orchestrator into the operations the CLI exposes.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/felixgeelhaar/bringup/internal/adapters/boardfile"
	"github.com/felixgeelhaar/bringup/internal/adapters/logging"
	"github.com/felixgeelhaar/bringup/internal/adapters/simhw"
	"github.com/felixgeelhaar/bringup/internal/domain/board"
	"github.com/felixgeelhaar/bringup/internal/domain/bringup"
	"github.com/felixgeelhaar/bringup/internal/ports"
)

// powerCycler is implemented by drivers that can return to their power-on state.
type powerCycler interface {
	PowerCycle()
}

// Bringup is the application service behind the CLI.
type Bringup struct {
	compiler *board.Compiler
	driver   board.Driver
	logger   ports.Logger
	observer bringup.Observer
	out      io.Writer
	styles   Styles
}

// New creates a Bringup that drives a fresh simulated board and prints to out.
func New(out io.Writer) *Bringup {
	logger := ports.Logger(logging.NewNopLogger())
	return &Bringup{
		compiler: board.NewCompiler(),
		driver:   simhw.New(simhw.WithLogger(logger)),
		logger:   logger,
		observer: bringup.NopObserver{},
		out:      out,
		styles:   NewStyles(out, true),
	}
}

// WithLogger sets the logger for the orchestrator.
func (b *Bringup) WithLogger(logger ports.Logger) *Bringup {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	b.logger = logger
	if sim, ok := b.driver.(*simhw.Board); ok {
		sim.SetLogger(logger)
	}
	return b
}

// WithObserver sets the run observer, e.g. a metrics collector.
func (b *Bringup) WithObserver(observer bringup.Observer) *Bringup {
	if observer == nil {
		observer = bringup.NopObserver{}
	}
	b.observer = observer
	return b
}

// WithDriver replaces the simulated board with another driver.
// A simulated board logs its calls through the current logger.
func (b *Bringup) WithDriver(driver board.Driver) *Bringup {
	b.driver = driver
	if sim, ok := driver.(*simhw.Board); ok {
		sim.SetLogger(b.logger)
	}
	return b
}

// WithColor toggles colored output.
func (b *Bringup) WithColor(enabled bool) *Bringup {
	b.styles = NewStyles(b.out, enabled)
	return b
}

// Compiler exposes the board compiler so callers can register action kinds.
func (b *Bringup) Compiler() *board.Compiler {
	return b.compiler
}

// Driver returns the driver plans are bound to.
func (b *Bringup) Driver() board.Driver {
	return b.driver
}

// Load reads the board file at path and compiles it into a plan.
// The plan is not validated; see Validate.
func (b *Bringup) Load(path string) (*bringup.Plan, error) {
	desc, err := boardfile.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load board file: %w", err)
	}
	plan, err := b.compiler.Compile(desc, b.driver)
	if err != nil {
		return nil, fmt.Errorf("failed to compile board file: %w", err)
	}
	return plan, nil
}

// Validate loads the board file and checks its plan for dangling
// dependencies and cycles.
func (b *Bringup) Validate(path string) (*bringup.Plan, error) {
	plan, err := b.Load(path)
	if err != nil {
		return nil, err
	}
	if err := bringup.Validate(plan); err != nil {
		return plan, err
	}
	return plan, nil
}

// Order loads the board file and returns its execution order.
func (b *Bringup) Order(path string) (*bringup.Plan, []bringup.StepID, error) {
	plan, err := b.Load(path)
	if err != nil {
		return nil, nil, err
	}
	order, err := bringup.Order(plan)
	if err != nil {
		return plan, nil, err
	}
	return plan, order, nil
}

// Explain loads the board file and explains each step in execution order.
func (b *Bringup) Explain(path string) ([]bringup.Explanation, error) {
	plan, err := b.Load(path)
	if err != nil {
		return nil, err
	}
	return bringup.Explain(plan)
}

// Run executes the board file's plan once.
func (b *Bringup) Run(ctx context.Context, path string) (*bringup.Report, error) {
	reports, err := b.RunWithRetries(ctx, path, 0)
	if len(reports) == 0 {
		return nil, err
	}
	return reports[len(reports)-1], err
}

// RunWithRetries executes the plan, re-running the whole plan from its first
// step up to retries more times while a step fails. Before each re-run a
// driver that supports it is power-cycled. Invalid plans are never retried.
// Reports for every attempt are returned in order.
func (b *Bringup) RunWithRetries(ctx context.Context, path string, retries int) ([]*bringup.Report, error) {
	plan, err := b.Load(path)
	if err != nil {
		return nil, err
	}

	orch := bringup.NewOrchestrator().
		WithLogger(b.logger).
		WithObserver(b.observer)

	var reports []*bringup.Report
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			if pc, ok := b.driver.(powerCycler); ok {
				pc.PowerCycle()
			}
			b.logger.Warn(ctx, "re-running bring-up from the first step",
				ports.F("plan", plan.Name()),
				ports.F("attempt", attempt+1))
		}

		report, err := orch.Execute(ctx, plan)
		if report != nil {
			reports = append(reports, report)
		}

		var be *bringup.BringupError
		if err == nil || !errors.As(err, &be) || attempt >= retries {
			return reports, err
		}
	}
}
