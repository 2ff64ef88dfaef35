// Command geohash encodes latitude/longitude pairs from the command line or
// from CSV on stdin.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
