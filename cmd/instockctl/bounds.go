package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/nishat1/Instock/internal/pkg/geospatial"
)

type boundsOptions struct {
	lat, lng, radius float64
}

func newBoundsCmd() *cobra.Command {
	opts := &boundsOptions{}
	cmd := &cobra.Command{
		Use:   "bounds",
		Short: "Print the search bounding box around a point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := geospatial.ComputeBounds(opts.lat, opts.lng, opts.radius)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(box)
		},
	}
	cmd.Flags().Float64Var(&opts.lat, "lat", 49.262130, "Center latitude")
	cmd.Flags().Float64Var(&opts.lng, "lng", -123.250578, "Center longitude")
	cmd.Flags().Float64VarP(&opts.radius, "radius", "r", 5.0, "Radius in km")
	return cmd
}
