// Command geobeam builds GPS motion files from routes and GPX tracks and runs
// queues of bladeGPS simulations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - populated at build time via ldflags
var (
	Version   = "dev"     // Will be set to git tag if available, otherwise "dev"
	Commit    = "unknown" // Will be set to git commit hash
	BuildDate = "unknown" // Will be set to build timestamp
)

func versionString() string {
	if Version != "dev" {
		return fmt.Sprintf("v%s (%s, built %s)", Version, Commit, BuildDate)
	}
	return Commit
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "geobeam",
		Short: "GPS trajectory synthesis and bladeGPS simulation runner",
		Long: `geobeam turns start and end points or GPX tracks into timed ECEF motion
files and drives bladeGPS through a queue of static and dynamic simulations.

Examples:
  geobeam route --start 37.4178,-122.0860 --end 37.4221,-122.0841 -o walk.csv
  geobeam route --gpx morning.gpx --transport running -o run.csv
  geobeam run session.yaml --http :8080
  geobeam nmea walk.csv --serial /dev/ttyUSB0
  geobeam convert --geodetic 37.4178 -122.0860 10`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("{{.Version}}\n")

	root.AddCommand(newRouteCmd(), newRunCmd(), newConvertCmd(), newNMEACmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
