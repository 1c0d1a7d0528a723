// Command tabjson converts the tables of an HTML, PDF or XLSX document to
// JSON or YAML.
package main

import (
	"fmt"
	"os"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tabjson:", err)
		os.Exit(exitCodeFor(err))
	}
}
