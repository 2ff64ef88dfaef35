package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/geohash-etl/internal/geohash"
)

func newEncodeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "encode LAT LON",
		Short: "Print the geohash of a single coordinate pair",
		Example: `  geohash encode 35.451305 96.751393
  geohash encode -p 12 -- -90 180`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := geohash.EncodeText(args[0], args[1], opts.precision)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.String())
			return err
		},
	}
}
