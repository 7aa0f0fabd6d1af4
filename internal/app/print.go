package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/bringup/internal/adapters/simhw"
	"github.com/felixgeelhaar/bringup/internal/domain/bringup"
)

// PrintValid reports a plan that passed validation.
func (b *Bringup) PrintValid(plan *bringup.Plan) {
	b.printf("%s plan is valid: %s (%d steps)\n",
		b.styles.Success.Render("✓"), b.styles.ID.Render(plan.Name()), plan.Len())
}

// PrintOrder prints the linearized execution order.
func (b *Bringup) PrintOrder(plan *bringup.Plan, order []bringup.StepID) {
	b.printf("%s\n\n", b.styles.Title.Render(fmt.Sprintf("Bring-up order for %s", plan.Name())))

	width := idWidth(order)
	for i, id := range order {
		step, _ := plan.Get(id)
		b.printf("  %3d. %s  %s\n", i+1, padRight(b.styles.ID.Render(id.String()), id.String(), width),
			b.styles.Muted.Render(CategoryTitle(step.Category)))
	}
	b.printf("\n%d steps\n", len(order))
}

// PrintExplain prints each step with its dependencies and dependents.
func (b *Bringup) PrintExplain(explanations []bringup.Explanation) {
	b.printf("%s\n", b.styles.Title.Render("Bring-up plan explained"))

	for _, e := range explanations {
		b.printf("\n  %d. %s  %s\n", e.Position(), b.styles.ID.Render(e.ID().String()),
			b.styles.Muted.Render("["+CategoryTitle(e.Category())+"]"))
		if e.Description() != "" {
			b.printf("     %s\n", e.Description())
		}
		if e.IsRoot() {
			b.printf("     depends on: nothing, runs as soon as ordering allows\n")
		} else {
			b.printf("     depends on: %s\n", joinStepIDs(e.DependsOn()))
		}
		if deps := e.Dependents(); len(deps) > 0 {
			b.printf("     needed by:  %s\n", joinStepIDs(deps))
		}
	}
}

// PrintAttempt announces a whole-plan re-run.
func (b *Bringup) PrintAttempt(attempt, total int) {
	b.printf("%s\n", b.styles.Warning.Render(fmt.Sprintf("Attempt %d of %d", attempt, total)))
}

// PrintReport prints per-step outcomes and the final run state.
func (b *Bringup) PrintReport(report *bringup.Report) {
	b.printf("\n%s %s\n\n", b.styles.Title.Render("Bring-up "+report.Plan),
		b.styles.Muted.Render("(run "+shortID(report.RunID)+")"))

	width := idWidth(report.Order)
	for _, o := range report.Executed {
		mark := b.styles.Success.Render("✓")
		if !o.Success() {
			mark = b.styles.Error.Render("✗")
		}
		b.printf("  %s %s  %-17s %s\n", mark, padRight(o.ID.String(), o.ID.String(), width),
			CategoryTitle(o.Category), b.styles.Muted.Render(formatDuration(o.Duration)))
		if o.Err != nil {
			b.printf("      %s\n", b.styles.Error.Render(o.Err.Error()))
		}
	}

	notRun := len(report.Order) - len(report.Executed)
	state := report.State.String()
	switch report.State {
	case bringup.StateSucceeded:
		state = b.styles.Success.Render(state)
	case bringup.StateFailed, bringup.StateInvalid:
		state = b.styles.Error.Render(state)
	}

	b.printf("\nState: %s", state)
	if report.State != bringup.StateInvalid {
		b.printf(" (%d of %d steps ran", len(report.Executed), len(report.Order))
		if notRun > 0 {
			b.printf(", %d not run", notRun)
		}
		b.printf(")")
	}
	b.printf("\n")
}

// PrintJournal prints the hardware calls made by a simulated board.
func (b *Bringup) PrintJournal(entries []simhw.Entry) {
	b.printf("\n%s\n", b.styles.Title.Render("Hardware calls"))
	for i, e := range entries {
		line := fmt.Sprintf("  %3d  %s", i+1, e.String())
		if e.Err != nil {
			line += "  " + b.styles.Error.Render(e.Err.Error())
		}
		b.printf("%s\n", line)
	}
}

// printf writes to the output writer, ignoring errors.
func (b *Bringup) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(b.out, format, args...)
}

func idWidth(ids []bringup.StepID) int {
	width := 0
	for _, id := range ids {
		if n := len(id.String()); n > width {
			width = n
		}
	}
	return width
}

// padRight pads rendered to width using the length of its plain text.
func padRight(rendered, plain string, width int) string {
	if n := width - len(plain); n > 0 {
		return rendered + strings.Repeat(" ", n)
	}
	return rendered
}

func joinStepIDs(ids []bringup.StepID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return d.String()
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	default:
		return d.Round(10 * time.Microsecond).String()
	}
}
