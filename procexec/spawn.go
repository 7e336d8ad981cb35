package procexec

import (
	"os"
	"os/exec"
	"sync"

	"github.com/kestrel-lang/kestrel/value"
)

// ReexecFlag is the hidden flag cmd/kestrel recognizes to run as a spawned
// child instead of the top-level script runner. original_source's spawn
// forks the live process and evaluates body in the child copy; the Go
// runtime has no safe equivalent to a bare fork() without a following exec
// (goroutines, timers and the GC's own background state do not survive an
// in-process fork), so spawnBuiltin re-execs the binary instead. The child
// only ever evaluates body and exits, the same as the forked child only
// ever evaluates mode.car() and exits — so the re-exec is observably the
// same built-in, reached by a different mechanism.
const ReexecFlag = "--spawn-child"

// sourceEnvVar carries the child's source text across the re-exec. Passed
// through the environment rather than a pipe/fd handoff: os/exec does not
// go through a shell, so there is no injection surface, and a spawned
// body's printed form is expected to be well within environment size
// limits.
const sourceEnvVar = "KESTREL_SPAWN_SOURCE"

var (
	jobsMu sync.Mutex
	jobs   = map[int]*os.Process{}
)

// spawnBuiltin implements `spawn body` (spec §4.11), grounded on
// original_source's spawn/fork. body is rendered to source text via
// value.Sprint (never evaluated by the parent) and handed to a freshly
// started re-exec of the current binary; the child inherits the parent's
// *current* stdin/stdout/stderr bindings as its own real stdio, then
// parses and evaluates body exactly as a freshly forked child would have.
// Pushes the child's pid, spec's documented parent-side result.
func spawnBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := formsOf(args)
	body := value.Nil
	if len(forms) > 0 {
		body = forms[0]
	}
	source := value.Sprint(body)

	exe, err := os.Executable()
	if err != nil {
		return m.Raise(string(value.ErrSyscall), "spawn: %v", err)
	}

	cmd := exec.Command(exe, ReexecFlag)
	if cmd.Stdin, err = streamFile(m, "STDIN"); err != nil {
		return err
	}
	if cmd.Stdout, err = streamFile(m, "STDOUT"); err != nil {
		return err
	}
	if cmd.Stderr, err = streamFile(m, "STDERR"); err != nil {
		return err
	}
	cmd.Env = append(os.Environ(), sourceEnvVar+"="+source)

	if err := cmd.Start(); err != nil {
		return m.Raise(string(value.ErrSyscall), "spawn: %v", err)
	}

	jobsMu.Lock()
	jobs[cmd.Process.Pid] = cmd.Process
	jobsMu.Unlock()

	m.PushArg(value.Int(int64(cmd.Process.Pid)))
	return nil
}

// SpawnedSource reports the source text a re-exec'd child was handed,
// alongside whether this process is in fact running as one (i.e. started
// with ReexecFlag). cmd/kestrel checks this before its normal flag parsing.
func SpawnedSource() (string, bool) {
	if len(os.Args) < 2 || os.Args[1] != ReexecFlag {
		return "", false
	}
	return os.LookupEnv(sourceEnvVar)
}
