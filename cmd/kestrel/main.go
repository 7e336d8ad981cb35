// Command kestrel runs the language (spec §1): a thin executable wrapping
// lang/kestrel's runtime.
package main

import (
	"fmt"
	"os"

	"github.com/kestrel-lang/kestrel/procexec"
)

func main() {
	// A re-exec'd spawn child (procexec/spawn.go) never goes through the
	// normal command-line surface: it carries its program text in the
	// environment and exits with the evaluated result's code directly.
	if source, ok := procexec.SpawnedSource(); ok {
		os.Exit(runSpawnedChild(source))
		return
	}

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
