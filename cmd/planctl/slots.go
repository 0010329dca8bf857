package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/ismart-schedule-api/internal/planner"
)

func newSlotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slots",
		Short: "Print the slot index to clock time table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SLOT\tSTART\tEND")
			for slot := 0; slot < planner.SlotsPerDay; slot++ {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", slot, planner.SlotToClock(slot), planner.SlotToClock(slot+1))
			}
			return tw.Flush()
		},
	}
}
