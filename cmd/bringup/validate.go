package main

import (
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate BOARD_FILE",
	Short: "Check a board file without running it",
	Long: `Validate loads and compiles a board file, then checks its plan for
dependencies on undefined steps and for cyclic dependencies. No hardware
call is made.

Board files may be YAML (.yaml, .yml), TOML (.toml) or INI (.ini).

Exit codes:
  0 - Valid plan
  1 - Board file could not be read or compiled
  2 - Dangling or cyclic dependency

Examples:
  bringup validate boards/evkmimxrt1170.yaml`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeBoardFile,
	RunE:              runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	b := newApp(cmd, cfg)
	plan, err := b.Validate(args[0])
	if err != nil {
		return err
	}

	b.PrintValid(plan)
	return nil
}
