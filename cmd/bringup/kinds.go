package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/bringup/internal/app"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the action kinds board files can use",
	Args:  cobra.NoArgs,
	RunE:  runKinds,
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}

func runKinds(cmd *cobra.Command, _ []string) error {
	compiler := app.New(cmd.OutOrStdout()).Compiler()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ACTION\tCATEGORY\tPARAMS")
	for _, name := range compiler.Kinds() {
		kind, _ := compiler.Kind(name)
		params := strings.Join(kind.Params(), ", ")
		if params == "" {
			params = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", name, kind.Category(), params)
	}
	return w.Flush()
}
