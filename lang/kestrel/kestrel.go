// Package kestrel wires together the value pool, symbol table, built-ins
// and evaluator into a runnable interpreter.
package kestrel

import (
	"io"
	"os"

	"github.com/kestrel-lang/kestrel/builtins"
	"github.com/kestrel-lang/kestrel/eval"
	"github.com/kestrel-lang/kestrel/expand"
	"github.com/kestrel-lang/kestrel/procexec"
	"github.com/kestrel-lang/kestrel/reader"
	"github.com/kestrel-lang/kestrel/symtab"
	"github.com/kestrel-lang/kestrel/value"
)

// Runtime bundles the state one top-level interpreter needs to parse,
// expand and evaluate source text.
type Runtime struct {
	Pool     *value.Pool
	Table    *symtab.Table
	Interp   *eval.Interp
	Expander *expand.Expander
}

// New builds a Runtime with every built-in registered (package builtins'
// language core plus package procexec's process-control surface) and stdio
// bound to stdin, stdout and stderr.
func New(stdin io.Reader, stdout, stderr io.Writer) (*Runtime, error) {
	pool := value.NewPool()
	tab := symtab.New()

	opts := stdioOptions(stdin, stdout, stderr)
	opts = append(opts, eval.WithExec(procexec.Exec))
	interp, err := eval.New(pool, tab, opts...)
	if err != nil {
		return nil, err
	}

	builtins.Register(tab)
	procexec.Register(tab)

	return &Runtime{
		Pool:     pool,
		Table:    tab,
		Interp:   interp,
		Expander: expand.New(pool, tab.Intern, interp),
	}, nil
}

// stdioOptions adapts arbitrary io.Reader/io.Writer stdio to eval.Option:
// when the concrete value is already an *os.File (the common top-level
// case, and the only one that composes with procexec.Exec/spawn's need for
// a real file descriptor), it is bound directly; otherwise the process's
// own stdin/stdout/stderr is used instead.
func stdioOptions(stdin io.Reader, stdout, stderr io.Writer) []eval.Option {
	return []eval.Option{
		eval.WithStdin(asFile(stdin, os.Stdin)),
		eval.WithStdout(asWriterFile(stdout, os.Stdout)),
		eval.WithStderr(asWriterFile(stderr, os.Stderr)),
	}
}

func asFile(r io.Reader, fallback *os.File) *os.File {
	if f, ok := r.(*os.File); ok {
		return f
	}
	return fallback
}

func asWriterFile(w io.Writer, fallback *os.File) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return fallback
}

// RunSource parses, expands and evaluates every top-level form in src in
// sequence, returning the last form's pushed result (owned by the caller)
// alongside any error. Mirrors the original interpreter's REPL loop (spec
// §6): forms are read one at a time so a later form can observe bindings an
// earlier one installed.
func (rt *Runtime) RunSource(src string) (*value.Value, error) {
	p := reader.NewFromString(rt.Pool, rt.Table.Intern, src)
	var result *value.Value
	for {
		form, err := p.Next()
		if err == io.EOF {
			if result == nil {
				result = value.Nil
			}
			return result, nil
		}
		if err != nil {
			return nil, err
		}
		expanded, err := rt.Expander.Expand(form)
		if err != nil {
			return nil, err
		}
		if result != nil {
			value.Drop(rt.Pool, result)
		}
		if err := rt.Interp.Eval(value.ModeSingle, expanded); err != nil {
			return nil, err
		}
		result = rt.Interp.PopArg()
	}
}

// ExitCode derives a process exit status from a top-level result, per spec
// §4.11's spawn wording: an integer result is used directly, Nil maps to 0,
// and any other value maps to 1.
func ExitCode(v *value.Value) int {
	if v != nil && v.Kind == value.KindInt {
		return int(v.Int)
	}
	if value.IsNil(v) {
		return 0
	}
	return 1
}

// RunSpawnedChild is the re-exec entry point procexec.ReexecFlag names
// (spec §4.11's spawn, reimagined as a self-re-exec rather than a bare
// fork(): see procexec/spawn.go). It rebuilds a fresh Runtime over the
// process's own (already dup2'd-by-exec.Cmd) stdio, evaluates the source
// text handed across the re-exec via the environment, and returns the exit
// code the parent's wait-pid should observe.
func RunSpawnedChild(source string) int {
	rt, err := New(os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		return 1
	}
	result, err := rt.RunSource(source)
	if err != nil {
		return 1
	}
	return ExitCode(result)
}
