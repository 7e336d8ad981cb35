package builtins

import (
	"github.com/kestrel-lang/kestrel/symtab"
	"github.com/kestrel-lang/kestrel/value"
)

// registerDict installs dict construction and key deletion. Reading/
// swapping an existing dict's entries goes through the dict-as-callee path
// (eval/apply.go's applyDict), not a named built-in here.
func registerDict(tab *symtab.Table) {
	tab.BindPrimitive("dict", dictBuiltin)
	tab.BindPrimitive("del", delBuiltin)
}

// dictBuiltin builds a fresh ordered dict from (key1 val1 key2 val2 …),
// grounded on original_source's dict().
func dictBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms)%2 != 0 {
		return m.Raise(string(value.ErrArgument), "dict requires an even number of arguments, got %d", len(forms))
	}
	vals, err := evalArgs(m, forms)
	if err != nil {
		return err
	}
	d := value.NewDict()
	dv := value.NewFatDict(m.Pool(), d)
	for idx := 0; idx < len(vals); idx += 2 {
		d.Set(textOf(vals[idx]), vals[idx+1])
		value.Drop(m.Pool(), vals[idx])
	}
	m.PushArg(dv)
	return nil
}

// delBuiltin removes each of the named keys from an existing dict in
// place, returning the same dict value.
func delBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) < 2 {
		return m.Raise(string(value.ErrArgument), "del requires 2 or more arguments, got %d", len(forms))
	}
	if err := m.Eval(value.ModeSingle, forms[0]); err != nil {
		return err
	}
	dv := m.PopArg()
	if dv.Kind != value.KindFat || dv.Fat.Kind != value.FatDict {
		value.Drop(m.Pool(), dv)
		return m.Raise(string(value.ErrType), "del requires a dict as its first argument")
	}
	keys, err := evalArgs(m, forms[1:])
	if err != nil {
		value.Drop(m.Pool(), dv)
		return err
	}
	for _, k := range keys {
		if old, ok := dv.Fat.Dict.Get(textOf(k)); ok {
			value.Drop(m.Pool(), old)
		}
		dv.Fat.Dict.Delete(textOf(k))
	}
	dropAll(m.Pool(), keys)
	m.PushArg(dv)
	return nil
}
