// Command climstats computes monthly climate statistics and season plots for
// Norwegian cities from a seNorge NetCDF archive.
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("climstats failed", "error", err)
		os.Exit(1)
	}
}
