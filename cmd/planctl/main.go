package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "planctl",
		Short: "Generate personal timetables from a plan file",
		Long: `planctl runs the timetable planner locally, without a database.

Examples:
  planctl generate -f week.yaml
  planctl generate -f week.yaml --output json
  planctl slots`,
		SilenceUsage: true,
	}
	root.AddCommand(newGenerateCmd(), newSlotsCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
