package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/geohash-etl/internal/geohash"
)

type batchOptions struct {
	*rootOptions
	strict bool
	header bool
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	opts := &batchOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Geohash lat,lon CSV rows read from stdin",
		Long: `Reads "lat,lon" rows from stdin and writes "lat,lon,geohash" rows to stdout.

Rows whose coordinates are out of range are reported on stderr and skipped,
or abort the run with --strict.

$ printf '35.451305,96.751393\nN/A,1\n' | geohash batch
35.451305,96.751393,wnkc
N/A,1,error
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on the first out-of-range row")
	cmd.Flags().BoolVar(&opts.header, "header", false, "treat the first row as a header")
	return cmd
}

func runBatch(in io.Reader, out, errOut io.Writer, opts *batchOptions) error {
	r := csv.NewReader(in)
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true
	r.ReuseRecord = true

	w := csv.NewWriter(out)
	defer w.Flush()

	var skipped int
	for line := 1; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}

		row := []string{rec[0], rec[1], ""}
		switch {
		case opts.header && line == 1:
			row[2] = "geohash"
		default:
			res, err := geohash.EncodeText(rec[0], rec[1], opts.precision)
			if err != nil {
				if opts.strict {
					return fmt.Errorf("line %d: %w", line, err)
				}
				fmt.Fprintf(errOut, "line %d: %v\n", line, err)
				skipped++
				continue
			}
			row[2] = res.String()
		}

		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if skipped > 0 {
		fmt.Fprintf(errOut, "skipped %d out-of-range rows\n", skipped)
	}
	return nil
}
