package procexec

import "github.com/kestrel-lang/kestrel/value"

// waitPidBuiltin implements `wait-pid pid` (spec §4.11), grounded on
// original_source's wait: blocks for the exact pid spawn produced and
// returns its exit code; a pid this process never spawned (or already
// reaped) raises a syscall error.
func waitPidBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := formsOf(args)
	if len(forms) != 1 {
		return m.Raise(string(value.ErrArgument), "wait-pid requires 1 argument, got %d", len(forms))
	}
	if err := m.Eval(value.ModeSingle, forms[0]); err != nil {
		return err
	}
	v := m.PopArg()
	pid, ok := pidOf(v)
	value.Drop(m.Pool(), v)
	if !ok {
		return m.Raise(string(value.ErrType), "wait-pid requires an integer pid")
	}

	jobsMu.Lock()
	proc, tracked := jobs[pid]
	if tracked {
		delete(jobs, pid)
	}
	jobsMu.Unlock()
	if !tracked {
		return m.Raise(string(value.ErrSyscall), "wait-pid: %d was not spawned by this process", pid)
	}

	state, err := proc.Wait()
	if err != nil {
		return m.Raise(string(value.ErrSyscall), "wait-pid: %v", err)
	}
	m.PushArg(value.Int(int64(state.ExitCode())))
	return nil
}

func pidOf(v *value.Value) (int, bool) {
	if v == nil || v.Kind != value.KindInt {
		return 0, false
	}
	return int(v.Int), true
}
