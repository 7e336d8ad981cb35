package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kestrel-lang/kestrel/lang/kestrel"
)

// rootCmd builds the `kestrel [-c code] [script]` command: with -c, the
// argument string itself is evaluated; with a positional argument, the
// named script file is run and the process exits with its result's code
// (spec §4.11's exit code convention); with neither, a script is read from
// stdin.
func rootCmd() *cobra.Command {
	var eval string
	cmd := &cobra.Command{
		Use:   "kestrel [-c code] [script]",
		Short: "run a kestrel script",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := sourceFor(eval, args)
			if err != nil {
				return err
			}
			rt, err := kestrel.New(os.Stdin, os.Stdout, os.Stderr)
			if err != nil {
				return errors.Wrap(err, "building runtime")
			}
			result, runErr := rt.RunSource(src)
			if runErr != nil {
				return runErr
			}
			os.Exit(kestrel.ExitCode(result))
			return nil
		},
	}
	cmd.Flags().StringVarP(&eval, "eval", "c", "", "evaluate code passed as an argument instead of reading a script")
	return cmd
}

func sourceFor(eval string, args []string) (string, error) {
	if eval != "" {
		return eval, nil
	}
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", errors.Wrap(err, "reading stdin")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", args[0])
	}
	return string(data), nil
}

// runSpawnedChild re-enters as a spawned child (procexec/spawn.go's
// re-exec): it never returns control to main, only the process's exit
// code.
func runSpawnedChild(source string) int {
	return kestrel.RunSpawnedChild(source)
}
