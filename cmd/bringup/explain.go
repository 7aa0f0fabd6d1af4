package main

import (
	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain BOARD_FILE",
	Short: "Explain why each step runs where it does",
	Long: `Explain walks the execution order and shows, for every step, its
category, its description, the steps it waits for and the steps that
wait for it.

Examples:
  bringup explain boards/evkmimxrt1170.yaml`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeBoardFile,
	RunE:              runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	b := newApp(cmd, cfg)
	explanations, err := b.Explain(args[0])
	if err != nil {
		return err
	}

	b.PrintExplain(explanations)
	return nil
}
