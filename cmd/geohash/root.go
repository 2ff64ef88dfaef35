package main

import (
	"github.com/spf13/cobra"

	"github.com/couchcryptid/geohash-etl/internal/geohash"
)

type rootOptions struct {
	precision int
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "geohash",
		Short: "Encode coordinates as geohash strings",
		Long: `
geohash turns latitude/longitude pairs into base-32 geohash strings of up to
12 characters. Coordinates that are not numbers yield the value "error".
`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.precision < 0 || opts.precision > geohash.MaxPrecision {
				return &geohash.PrecisionError{Precision: opts.precision}
			}
			return nil
		},
	}

	root.PersistentFlags().IntVarP(&opts.precision, "precision", "p", geohash.DefaultPrecision,
		"number of geohash characters (0-12)")

	root.AddCommand(newEncodeCmd(opts))
	root.AddCommand(newBatchCmd(opts))
	return root
}
