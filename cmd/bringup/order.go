package main

import (
	"github.com/spf13/cobra"
)

var orderCmd = &cobra.Command{
	Use:   "order BOARD_FILE",
	Short: "Print the execution order of a board file",
	Long: `Order prints the sequence in which run would execute the steps.

Every step comes after the steps it depends on. Among steps that are ready
at the same time, the one declared first in the board file runs first, so
the order is the same on every invocation.

Examples:
  bringup order boards/evkmimxrt1170.yaml`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeBoardFile,
	RunE:              runOrder,
}

func init() {
	rootCmd.AddCommand(orderCmd)
}

func runOrder(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	b := newApp(cmd, cfg)
	plan, order, err := b.Order(args[0])
	if err != nil {
		return err
	}

	b.PrintOrder(plan, order)
	return nil
}
