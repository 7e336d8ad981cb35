// Package procexec implements spec §4.11's process-control surface: running
// external commands when a call's head resolves to a string, and the
// pipe/spawn/wait-pid built-ins. It is kept separate from package builtins
// because this is the one corner of the language that needs real OS
// process and file-descriptor access; everything else builtins does stays
// host-independent.
package procexec

import (
	"os"

	"github.com/kestrel-lang/kestrel/value"
)

// formsOf walks a proper (or dotted) argument spine, mirroring package
// builtins' own listElems (duplicated here rather than exported across the
// package boundary, the same way eval/apply.go's listToSlice and builtins'
// own listElems independently implement the same walk).
func formsOf(list *value.Value) []*value.Value {
	var elems []*value.Value
	cur := list
	for {
		if value.IsNil(cur) {
			return elems
		}
		if cur.Kind != value.KindCons {
			return elems
		}
		elems = append(elems, cur.Cons.Car)
		cur = cur.Cons.Cdr
	}
}

// commandArgv evaluates each of eval_cmd's argument forms in turn and
// renders it to its argv string: a string value's own characters, or its
// printed representation otherwise, mirroring original_source's to_path
// conversion (raw bytes, not the quoted Display form).
func commandArgv(m value.Machine, argForms *value.Value) ([]string, error) {
	forms := formsOf(argForms)
	argv := make([]string, len(forms))
	for idx, f := range forms {
		if err := m.Eval(value.ModeSingle, f); err != nil {
			return nil, err
		}
		v := m.PopArg()
		if value.IsString(v) {
			argv[idx] = v.Var.Name
		} else {
			argv[idx] = value.Sprint(v)
		}
		value.Drop(m.Pool(), v)
	}
	return argv, nil
}

// streamFile resolves one of the three standard-stream globals to the
// *os.File an os/exec.Cmd needs, per spec §4.11: each must be a file or
// pipe endpoint currently bound under name.
func streamFile(m value.Machine, name string) (*os.File, error) {
	sym := m.Intern(name).Sym
	v := sym.Binding().Val
	if v == nil || v.Kind != value.KindFat {
		return nil, m.Raise(string(value.ErrType), "%s is not bound to a file or pipe", name)
	}
	switch v.Fat.Kind {
	case value.FatFile, value.FatPipeR, value.FatPipeW:
		return v.Fat.File, nil
	default:
		return nil, m.Raise(string(value.ErrType), "%s is not bound to a file or pipe", name)
	}
}
