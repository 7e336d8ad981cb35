package procexec

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/kestrel-lang/kestrel/symtab"
	"github.com/kestrel-lang/kestrel/value"
)

// Register installs the built-ins that need real OS process/file-descriptor
// access: pipe, spawn, wait-pid. Call once per interpreter, alongside
// builtins.Register, on a table whose Interp was also built with
// eval.WithExec(procexec.Exec).
func Register(tab *symtab.Table) {
	tab.BindPrimitive("pipe", pipeBuiltin)
	tab.BindPrimitive("spawn", spawnBuiltin)
	tab.BindPrimitive("wait-pid", waitPidBuiltin)
}

// pipeBuiltin returns a two-element (reader writer) list of pipe-endpoint
// fat values, grounded on original_source's pipe. Uses Pipe2 with
// O_CLOEXEC so a spawned child doesn't inherit endpoints it was never
// explicitly handed as stdio.
func pipeBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		return m.Raise(string(value.ErrSyscall), "pipe: %v", err)
	}
	r := value.NewFile(m.Pool(), value.FatPipeR, os.NewFile(uintptr(fds[0]), "pipe-r"))
	w := value.NewFile(m.Pool(), value.FatPipeW, os.NewFile(uintptr(fds[1]), "pipe-w"))

	if mode == value.ModeMulti || mode == value.ModeDoMulti {
		m.PushArg(r)
		m.PushArg(w)
		m.PushArg(value.MultiDone)
		return nil
	}
	m.PushArg(value.NewCons(m.Pool(), r, value.NewCons(m.Pool(), w, value.Nil)))
	return nil
}
