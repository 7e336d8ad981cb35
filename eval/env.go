package eval

import (
	"os"

	"github.com/kestrel-lang/kestrel/symtab"
	"github.com/kestrel-lang/kestrel/value"
)

// Option configures a new Interp, mirroring vm/vm.go's functional-option
// construction (DataSize/AddressSize/Input/Output -> WithStdin/WithStdout/
// WithStderr here).
type Option func(*Interp) error

// WithStdin binds the `STDIN` global to an open-file fat value wrapping f,
// one of spec §4.11's three standard-stream variables.
func WithStdin(f *os.File) Option {
	return func(i *Interp) error {
		i.tab.Intern("STDIN").Sym.Binding().Val = value.NewFile(i.pool, value.FatFile, f)
		return nil
	}
}

// WithStdout binds the `STDOUT` global, spec §4.11's second standard
// stream.
func WithStdout(f *os.File) Option {
	return func(i *Interp) error {
		i.tab.Intern("STDOUT").Sym.Binding().Val = value.NewFile(i.pool, value.FatFile, f)
		return nil
	}
}

// WithStderr binds the `STDERR` global, spec §4.11's third standard
// stream.
func WithStderr(f *os.File) Option {
	return func(i *Interp) error {
		i.tab.Intern("STDERR").Sym.Binding().Val = value.NewFile(i.pool, value.FatFile, f)
		return nil
	}
}

// WithExec wires the external-command handler (spec §4.11), invoked
// whenever a call's head resolves to a string value. Host binaries supply
// procexec.Exec here; an Interp built without this option raises an
// argument error instead of running external commands.
func WithExec(fn ExecFunc) Option {
	return func(i *Interp) error {
		i.exec = fn
		return nil
	}
}

// New constructs an Interp over pool and tab, applying opts in order. Every
// global binding's value starts as Nil; options that don't wire stdio
// explicitly leave the language's own `open`/init code to do so.
func New(pool *value.Pool, tab *symtab.Table, opts ...Option) (*Interp, error) {
	i := &Interp{pool: pool, tab: tab}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	return i, nil
}

// StdioOptions is a convenience bundle wiring the process's own standard
// streams, the common case for a top-level command-line invocation.
func StdioOptions() []Option {
	return []Option{WithStdin(os.Stdin), WithStdout(os.Stdout), WithStderr(os.Stderr)}
}
