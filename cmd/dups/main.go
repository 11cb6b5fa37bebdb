// Command dups prints sets of byte-identical regular files found under the given directories.
package main

import (
	"os"

	"github.com/idelchi/dups/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "unknown - unofficial & generated by unknown"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		os.Exit(1)
	}
}
