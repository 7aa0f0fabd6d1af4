package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/bringup/internal/adapters/logging"
	"github.com/felixgeelhaar/bringup/internal/app"
	"github.com/felixgeelhaar/bringup/internal/config"
	"github.com/felixgeelhaar/bringup/internal/domain/board"
	"github.com/felixgeelhaar/bringup/internal/domain/bringup"
	"github.com/felixgeelhaar/bringup/internal/ports"
)

// Exit codes.
const (
	exitError   = 1
	exitInvalid = 2
	exitFailed  = 3
)

var (
	// Global flags
	verbose     bool
	logLevel    string
	logFormat   string
	logBackend  string
	noColor     bool
	metricsFile string
)

var rootCmd = &cobra.Command{
	Use:   "bringup",
	Short: "A deterministic board bring-up sequencer",
	Long: `Bringup reads a board file describing hardware initialization steps
(clock tree, peripheral resets, clock gates, pin mux, debug console) and
their dependencies, then runs them in a deterministic order:
  Load → Compile → Validate → Order → Execute

Steps run against a simulated SoC that rejects calls made before the
hardware state they need, so a mis-ordered plan fails at the offending step.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging and technical error details)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides BRINGUP_LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format for the console backend (text, json)")
	rootCmd.PersistentFlags().StringVar(&logBackend, "log-backend", "", "log backend (console, zap)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file after a run")

	registerFlagCompletions()

	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment and applies the global flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if flags.Changed("log-backend") {
		cfg.LogBackend = logBackend
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = metricsFile
	}
	if noColor {
		cfg.NoColor = true
	}
	if verbose && !flags.Changed("log-level") {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// newLogger builds the configured logger writing to w.
func newLogger(cfg *config.Config, w io.Writer) ports.Logger {
	if cfg.LogBackend == config.LogBackendZap {
		return logging.NewZapLogger(w, cfg.Level())
	}
	return logging.NewConsoleLogger(
		logging.WithOutput(w),
		logging.WithLevel(cfg.Level()),
		logging.WithJSONFormat(cfg.LogFormat == config.LogFormatJSON),
	)
}

// newApp creates the application with settings from cfg.
// Output goes to the command's stdout, logs to its stderr.
func newApp(cmd *cobra.Command, cfg *config.Config) *app.Bringup {
	return app.New(cmd.OutOrStdout()).
		WithColor(!cfg.NoColor).
		WithLogger(newLogger(cfg, cmd.ErrOrStderr()))
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the user message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var userErr *board.UserError
	if errors.As(err, &userErr) {
		msg := userErr.Message
		if userErr.Context != "" {
			msg += fmt.Sprintf(" (at %s)", userErr.Context)
		}
		if userErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", userErr.Suggestion)
		}
		if verbose && userErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", userErr.Underlying)
		}
		return msg
	}

	var planErr *bringup.PlanError
	if errors.As(err, &planErr) {
		return planErr.Error() + fmt.Sprintf("\n\nSuggestion: %s", planErr.Suggestion())
	}

	var runErr *bringup.BringupError
	if errors.As(err, &runErr) {
		if verbose {
			return runErr.Format()
		}
		return runErr.Error()
	}
	return err.Error()
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var planErr *bringup.PlanError
	var runErr *bringup.BringupError
	switch {
	case errors.As(err, &planErr):
		return exitInvalid
	case errors.As(err, &runErr):
		return exitFailed
	default:
		return exitError
	}
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}

// boardFileExtensions lists the extensions accepted for board files.
var boardFileExtensions = []string{"yaml", "yml", "toml", "ini"}

// completeBoardFile completes the positional board file argument.
func completeBoardFile(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return boardFileExtensions, cobra.ShellCompDirectiveFilterFileExt
}

// registerFlagCompletions sets up custom completions for global flags.
func registerFlagCompletions() {
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"text\tkey=value lines",
			"json\tone JSON object per line",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	_ = rootCmd.RegisterFlagCompletionFunc("log-backend", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"console\tbuilt-in console logger",
			"zap\tzap production JSON logger",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	_ = rootCmd.RegisterFlagCompletionFunc("metrics-file", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"prom"}, cobra.ShellCompDirectiveFilterFileExt
	})
}
