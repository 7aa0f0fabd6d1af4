package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/bringup/internal/adapters/metrics"
	"github.com/felixgeelhaar/bringup/internal/adapters/simhw"
	"github.com/felixgeelhaar/bringup/internal/config"
)

// errInjected is the error returned by calls failed with --fault.
var errInjected = errors.New("injected fault")

var runCmd = &cobra.Command{
	Use:   "run BOARD_FILE",
	Short: "Run a board file against the simulated SoC",
	Long: `Run validates the board file, orders its steps and executes them one at
a time against a simulated SoC. Execution stops at the first failing step;
steps that already ran are not undone.

With --retries, a failed run is repeated from the first step after the
simulated SoC is power-cycled. An invalid plan is never retried.

Faults can be injected with --fault CALL[:TARGET][@N], which fails the
named driver call (for any target when TARGET is omitted) the next N
times, or every time when @N is omitted.

Exit codes:
  0 - Every step succeeded
  1 - Board file could not be read or compiled
  2 - Dangling or cyclic dependency
  3 - A step failed

Examples:
  bringup run boards/evkmimxrt1170.yaml
  bringup run boards/evkmimxrt1170.yaml --journal
  bringup run boards/evkmimxrt1170.yaml --fault EnableClock:lpuart1@1 --retries 2
  bringup run boards/evkmimxrt1170.yaml --metrics-file bringup.prom`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeBoardFile,
	RunE:              runRun,
}

var (
	runRetries    int
	runFaults     []string
	runJournal    bool
	runRealDelays bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runRetries, "retries", 0, fmt.Sprintf("re-run the whole plan up to N more times after a failed step (max %d)", config.MaxRetries))
	runCmd.Flags().StringArrayVar(&runFaults, "fault", nil, "fail a driver call: CALL[:TARGET][@N] (repeatable)")
	runCmd.Flags().BoolVar(&runJournal, "journal", false, "print every hardware call after the run")
	runCmd.Flags().BoolVar(&runRealDelays, "real-delays", false, "make delay steps actually sleep")

	_ = runCmd.RegisterFlagCompletionFunc("fault", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		calls := simhw.Calls()
		names := make([]string, len(calls))
		for i, c := range calls {
			names[i] = string(c)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	retries := cfg.Retries
	if cmd.Flags().Changed("retries") {
		retries = runRetries
	}
	if retries < 0 || retries > config.MaxRetries {
		return fmt.Errorf("--retries must be between 0 and %d, got %d", config.MaxRetries, retries)
	}

	sim := simhw.New(simhw.WithRealDelays(runRealDelays))
	for _, spec := range runFaults {
		f, err := parseFault(spec)
		if err != nil {
			return err
		}
		sim.FailTimes(f.call, f.target, errInjected, f.times)
	}

	collector := metrics.NewCollector()
	b := newApp(cmd, cfg).WithDriver(sim).WithObserver(collector)

	reports, runErr := b.RunWithRetries(cmd.Context(), args[0], retries)
	for i, report := range reports {
		if retries > 0 {
			b.PrintAttempt(i+1, retries+1)
		}
		b.PrintReport(report)
	}
	if runJournal && len(reports) > 0 {
		b.PrintJournal(sim.Journal())
	}

	if cfg.MetricsFile != "" && len(reports) > 0 {
		if err := collector.WriteTextfile(cfg.MetricsFile); err != nil {
			return errors.Join(runErr, err)
		}
	}
	return runErr
}

type faultSpec struct {
	call   simhw.Call
	target string
	times  int
}

// parseFault parses CALL[:TARGET][@N]. Without @N the fault never clears.
func parseFault(s string) (faultSpec, error) {
	f := faultSpec{times: -1}

	rest := s
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		n, err := strconv.Atoi(rest[i+1:])
		if err != nil || n < 1 {
			return faultSpec{}, fmt.Errorf("invalid --fault %q: count after @ must be a positive integer", s)
		}
		f.times = n
		rest = rest[:i]
	}

	name, target, _ := strings.Cut(rest, ":")
	call, err := simhw.ParseCall(name)
	if err != nil {
		return faultSpec{}, fmt.Errorf("invalid --fault %q: %w", s, err)
	}
	f.call = call
	f.target = target
	return f, nil
}
