package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/bringup/internal/adapters/logging"
	"github.com/felixgeelhaar/bringup/internal/adapters/metrics"
	"github.com/felixgeelhaar/bringup/internal/adapters/simhw"
	"github.com/felixgeelhaar/bringup/internal/domain/board"
	"github.com/felixgeelhaar/bringup/internal/domain/bringup"
	"github.com/felixgeelhaar/bringup/internal/ports"
)

const consoleBoard = `
board: evk
steps:
  - id: console:lpuart1
    action: console.init
    params: {instance: lpuart1, baud: 115200}
    depends_on: [gate:lpuart1, clock:run]
  - id: gate:lpuart1
    action: clock.enable
    params: {gate: lpuart1}
    depends_on: [reset:lpuart1, clock:lpuart1]
  - id: reset:lpuart1
    action: reset.clear
    params: {peripheral: lpuart1}
  - id: clock:lpuart1
    action: clock.attach
    params: {source: osc24m, target: lpuart1}
  - id: clock:run
    action: clock.run-mode
    params: {mode: run}
    depends_on: [clock:xtal]
  - id: clock:xtal
    action: xtal.set
    params: {hz: 24MHz}
    description: 24 MHz crystal
`

// gateBeforeReset omits the gate's dependency on its reset step, so the
// gate is enabled while the peripheral is still held in reset.
const gateBeforeReset = `
board: evk
steps:
  - id: gate:gpio1
    action: clock.enable
    params: {gate: gpio1}
  - id: reset:gpio1
    action: reset.clear
    params: {peripheral: gpio1}
`

const cyclicBoard = `
board: evk
steps:
  - id: a
    action: mpu.configure
    depends_on: [b]
  - id: b
    action: mpu.configure
    depends_on: [a]
`

func writeBoard(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestApp(buf *bytes.Buffer) (*Bringup, *simhw.Board) {
	sim := simhw.New()
	return New(buf).WithDriver(sim).WithColor(false), sim
}

func TestBringup_RunSucceeds(t *testing.T) {
	var buf bytes.Buffer
	a, sim := newTestApp(&buf)

	report, err := a.Run(context.Background(), writeBoard(t, consoleBoard))
	require.NoError(t, err)
	require.True(t, report.Succeeded())

	assert.Equal(t, "evk", report.Plan)
	assert.Len(t, report.Executed, 6)
	baud, ok := sim.ConsoleBaud("lpuart1")
	require.True(t, ok)
	assert.Equal(t, uint32(115200), baud)
}

func TestBringup_RunFailsAtMisorderedStep(t *testing.T) {
	var buf bytes.Buffer
	a, sim := newTestApp(&buf)

	report, err := a.Run(context.Background(), writeBoard(t, gateBeforeReset))
	require.Error(t, err)

	var be *bringup.BringupError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "gate:gpio1", be.StepID.String())
	assert.ErrorIs(t, err, simhw.ErrPrecondition)

	assert.Equal(t, bringup.StateFailed, report.State)
	assert.Len(t, sim.Journal(), 1, "steps after the failure must not run")
}

func TestBringup_RunWithRetriesRestartsFromFirstStep(t *testing.T) {
	var buf bytes.Buffer
	a, sim := newTestApp(&buf)
	sim.FailTimes(simhw.CallEnableClock, "lpuart1", errors.New("gate stuck"), 2)

	reports, err := a.RunWithRetries(context.Background(), writeBoard(t, consoleBoard), 3)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.Equal(t, bringup.StateFailed, reports[0].State)
	assert.Equal(t, bringup.StateFailed, reports[1].State)
	assert.Equal(t, bringup.StateSucceeded, reports[2].State)

	for _, r := range reports {
		assert.Equal(t, r.Order[0], r.Executed[0].ID, "every attempt starts from the first step")
	}
	assert.NotEqual(t, reports[0].RunID, reports[1].RunID)
}

func TestBringup_RunWithRetriesGivesUp(t *testing.T) {
	var buf bytes.Buffer
	a, sim := newTestApp(&buf)
	sim.FailOn(simhw.CallSetXtalFrequency, "", errors.New("no oscillator"))

	reports, err := a.RunWithRetries(context.Background(), writeBoard(t, consoleBoard), 2)
	assert.ErrorIs(t, err, bringup.ErrActionFailed)
	assert.Len(t, reports, 3)
}

func TestBringup_InvalidPlanIsNeverRetried(t *testing.T) {
	var buf bytes.Buffer
	a, sim := newTestApp(&buf)

	reports, err := a.RunWithRetries(context.Background(), writeBoard(t, cyclicBoard), 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, bringup.ErrCycle)
	require.Len(t, reports, 1)
	assert.Equal(t, bringup.StateInvalid, reports[0].State)
	assert.Empty(t, sim.Journal())
}

func TestBringup_Validate(t *testing.T) {
	var buf bytes.Buffer
	a, _ := newTestApp(&buf)

	plan, err := a.Validate(writeBoard(t, consoleBoard))
	require.NoError(t, err)
	a.PrintValid(plan)
	assert.Equal(t, "✓ plan is valid: evk (6 steps)\n", buf.String())

	_, err = a.Validate(writeBoard(t, cyclicBoard))
	var pe *bringup.PlanError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, bringup.Cycle, pe.Kind)
}

func TestBringup_LoadErrorsKeepUserError(t *testing.T) {
	var buf bytes.Buffer
	a, _ := newTestApp(&buf)

	_, err := a.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	var ue *board.UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, board.ErrCodeFileNotFound, ue.Code)

	_, err = a.Load(writeBoard(t, "board: evk\nsteps:\n  - id: a\n    action: warp.drive\n"))
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, board.ErrCodeUnknownAction, ue.Code)
}

func TestBringup_OrderAndPrint(t *testing.T) {
	var buf bytes.Buffer
	a, _ := newTestApp(&buf)

	plan, order, err := a.Order(writeBoard(t, consoleBoard))
	require.NoError(t, err)

	want := []string{"reset:lpuart1", "clock:lpuart1", "gate:lpuart1", "clock:xtal", "clock:run", "console:lpuart1"}
	got := make([]string, len(order))
	for i, id := range order {
		got[i] = id.String()
	}
	assert.Equal(t, want, got)

	a.PrintOrder(plan, order)
	out := buf.String()
	assert.Contains(t, out, "Bring-up order for evk")
	assert.Contains(t, out, "    1. reset:lpuart1    Peripheral Reset\n")
	assert.Contains(t, out, "    6. console:lpuart1  Console Init\n")
	assert.Contains(t, out, "6 steps")
}

func TestBringup_ExplainAndPrint(t *testing.T) {
	var buf bytes.Buffer
	a, _ := newTestApp(&buf)

	explanations, err := a.Explain(writeBoard(t, consoleBoard))
	require.NoError(t, err)
	require.Len(t, explanations, 6)

	a.PrintExplain(explanations)
	out := buf.String()
	assert.Contains(t, out, "4. clock:xtal  [Clock Tree]\n     24 MHz crystal\n     depends on: nothing")
	assert.Contains(t, out, "needed by:  clock:run")
	assert.Contains(t, out, "depends on: gate:lpuart1, clock:run")
}

func TestBringup_PrintReport(t *testing.T) {
	var buf bytes.Buffer
	a, sim := newTestApp(&buf)

	report, err := a.Run(context.Background(), writeBoard(t, gateBeforeReset))
	require.Error(t, err)

	a.PrintReport(report)
	a.PrintJournal(sim.Journal())
	out := buf.String()
	assert.Contains(t, out, "✗ gate:gpio1")
	assert.Contains(t, out, "gpio1 is still held in reset")
	assert.Contains(t, out, "State: failed (1 of 2 steps ran, 1 not run)")
	assert.Contains(t, out, "Hardware calls")
	assert.Contains(t, out, "1  EnableClock(gpio1)")
}

func TestBringup_PrintReportInvalid(t *testing.T) {
	var buf bytes.Buffer
	a, _ := newTestApp(&buf)

	report, err := a.Run(context.Background(), writeBoard(t, cyclicBoard))
	require.Error(t, err)

	a.PrintReport(report)
	assert.Contains(t, buf.String(), "State: invalid\n")
}

func TestBringup_LoggerAndObserverWiring(t *testing.T) {
	var buf, logBuf bytes.Buffer
	logger := logging.NewConsoleLogger(
		logging.WithOutput(&logBuf),
		logging.WithLevel(ports.LevelDebug),
		logging.WithTimestamp(false),
	)
	collector := metrics.NewCollector()
	a, _ := newTestApp(&buf)
	a.WithLogger(logger).WithObserver(collector)

	_, err := a.Run(context.Background(), writeBoard(t, consoleBoard))
	require.NoError(t, err)

	assert.Contains(t, logBuf.String(), "bring-up started")
	assert.Contains(t, logBuf.String(), "hardware call call=InitDebugConsole target=lpuart1")

	path := filepath.Join(t.TempDir(), "bringup.prom")
	require.NoError(t, collector.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `bringup_last_run_succeeded{plan="evk"} 1`)
}

func TestBringup_RegisterCustomKind(t *testing.T) {
	var buf bytes.Buffer
	a, _ := newTestApp(&buf)
	ran := false
	require.NoError(t, a.Compiler().Register(board.NewActionKind("pmic.enable", bringup.CategoryOther, nil,
		func(board.Params, board.Driver) (bringup.Action, error) {
			return func(context.Context) error {
				ran = true
				return nil
			}, nil
		})))

	_, err := a.Run(context.Background(), writeBoard(t, "board: evk\nsteps:\n  - id: pmic\n    action: pmic.enable\n"))
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestCategoryTitle(t *testing.T) {
	assert.Equal(t, "Clock Tree", CategoryTitle(bringup.CategoryClockTree))
	assert.Equal(t, "Pin Mux", CategoryTitle(bringup.CategoryPinMux))
	assert.Equal(t, "Other", CategoryTitle(bringup.CategoryOther))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "500ns", formatDuration(500))
	assert.Equal(t, "12µs", formatDuration(12_345))
	assert.Equal(t, "1.23ms", formatDuration(1_234_567))
}
