package procexec

import (
	"os/exec"

	"github.com/kestrel-lang/kestrel/value"
)

// Exec implements spec §4.11's eval_cmd: invoked by eval.Interp whenever a
// call's head resolves to a string value rather than a bound function.
// Each argument form is evaluated on its own and converted directly to its
// argv string (spec §4.11's "argv = string representations of the argument
// values"), grounded on original_source's eval_cmd — unlike `expand` (spec
// §4.10), eval_cmd never brace-expands or globs its arguments, so argument
// forms are not routed through Machine.ExpandArgs. stdio comes from the
// current stdin/stdout/stderr bindings. The evaluator blocks until the
// subprocess exits and pushes its exit code as an integer — a non-zero
// code is a falsey result, not an exception (spec §4.11).
func Exec(m value.Machine, mode value.Mode, name string, argForms *value.Value) error {
	argv, err := commandArgv(m, argForms)
	if err != nil {
		return err
	}

	cmd := exec.Command(name, argv...)
	if cmd.Stdin, err = streamFile(m, "STDIN"); err != nil {
		return err
	}
	if cmd.Stdout, err = streamFile(m, "STDOUT"); err != nil {
		return err
	}
	if cmd.Stderr, err = streamFile(m, "STDERR"); err != nil {
		return err
	}

	runErr := cmd.Run()
	code := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		} else {
			return m.Raise(string(value.ErrSyscall), "%s: %v", name, runErr)
		}
	}
	m.PushArg(value.Int(int64(code)))
	return nil
}
