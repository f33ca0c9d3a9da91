package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Bucknalla/geobeam/gps"
)

func newConvertCmd() *cobra.Command {
	var geodetic bool
	cmd := &cobra.Command{
		Use:   "convert x y z | --geodetic lat lon alt",
		Short: "Convert a single point between ECEF and WGS-84 geodetic coordinates",
		Example: `  geobeam convert --geodetic 37.4178 -122.0860 10
  geobeam convert -- -2694045.1 -4293642.3 3857878.9`,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var v [3]float64
			for i, arg := range args {
				f, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("invalid coordinate %q: %w", arg, err)
				}
				v[i] = f
			}

			out := cmd.OutOrStdout()
			if geodetic {
				p := gps.ToCartesian(v[0], v[1], v[2])
				fmt.Fprintf(out, "%.3f,%.3f,%.3f\n", p.X, p.Y, p.Z)
				return nil
			}
			p := gps.ToGeodetic(v[0], v[1], v[2])
			fmt.Fprintf(out, "%.8f,%.8f,%.3f\n", p.Latitude, p.Longitude, p.Altitude)
			return nil
		},
	}
	// Negative coordinates must not be read as flags
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVar(&geodetic, "geodetic", false, "input is lat lon alt, output is x,y,z")
	return cmd
}
