package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/city-climate-stats/internal/domain"
)

func newCitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cities",
		Short: "List the built-in cities and their bounding boxes",
		// Needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CITY\tLAT MIN\tLAT MAX\tLON MIN\tLON MAX")
			for _, c := range domain.Cities() {
				b := c.BBox
				fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\n", c.Name, b.LatMin, b.LatMax, b.LonMin, b.LonMax)
			}
			return w.Flush()
		},
	}
}
