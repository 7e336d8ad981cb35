package builtins

import (
	"github.com/kestrel-lang/kestrel/symtab"
	"github.com/kestrel-lang/kestrel/value"
)

// registerMisc installs the built-ins that don't fit any other file's
// grouping. Stream built-ins that only need an already-open *os.File
// (echo/print/show, buf/chars/open, read-line/readc/...) live in io.go
// instead; pipe/spawn/wait-pid, which need real process and fd-creation
// machinery, are registered by package procexec (spec §4.11).
func registerMisc(tab *symtab.Table) {
	tab.BindPrimitive("trap", trapBuiltin)
	tab.BindPrimitive("expand", expandBuiltin)
}

// expandBuiltin realizes spec §4.10's shell-style argument expansion,
// delegating classification/Cartesian-product/glob-matching to
// Machine.ExpandArgs (eval/glob.go) and converting the resulting words to
// kestrel values: spliced in Multi mode (matching arg's/split's own
// mode handling), collected into a list otherwise, grounded on
// original_source's brace_expand.
func expandBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	words, err := m.ExpandArgs(mode, args)
	if err != nil {
		return err
	}
	if mode == value.ModeMulti || mode == value.ModeDoMulti {
		for _, w := range words {
			m.PushArg(value.NewString(m.Pool(), w))
		}
		m.PushArg(value.MultiDone)
		return nil
	}
	elems := make([]*value.Value, len(words))
	for idx, w := range words {
		elems[idx] = value.NewString(m.Pool(), w)
	}
	m.PushArg(sliceToList(m.Pool(), elems))
	return nil
}

// trapBuiltin is a deliberate no-op, grounded on original_source's trap:
// signal-driven cancellation is an explicit Non-goal, so this built-in
// exists only so scripts that call it don't hit an unbound-symbol error.
func trapBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	m.PushArg(value.Nil)
	return nil
}
