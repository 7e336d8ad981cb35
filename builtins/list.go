package builtins

import (
	"github.com/kestrel-lang/kestrel/symtab"
	"github.com/kestrel-lang/kestrel/value"
)

// registerList installs cons/head/rest, grounded on original_source's
// `cons`/`head`/`rest` primitives. head/rest additionally honor Set mode
// (spec §4.7): `(set (head xs) v)` replaces xs's car in place.
func registerList(tab *symtab.Table) {
	tab.BindPrimitive("cons", consBuiltin)
	tab.BindPrimitive("head", headBuiltin)
	tab.BindPrimitive("rest", restBuiltin)
}

func consBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) != 2 {
		return m.Raise(string(value.ErrArgument), "cons requires 2 arguments, got %d", len(forms))
	}
	vals, err := evalArgs(m, forms)
	if err != nil {
		return err
	}
	m.PushArg(value.NewCons(m.Pool(), vals[0], vals[1]))
	return nil
}

// headBuiltin reads or (in Set mode) swaps the car of a cons value.
func headBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) != 1 {
		return m.Raise(string(value.ErrArgument), "head requires 1 argument, got %d", len(forms))
	}
	if err := m.Eval(value.ModeSingle, forms[0]); err != nil {
		return err
	}
	target := m.PopArg()
	if target.Kind != value.KindCons {
		value.Drop(m.Pool(), target)
		return m.Raise(string(value.ErrType), "head requires a cons value")
	}
	if mode == value.ModeSet {
		old := target.Cons.Car
		target.Cons.Car = value.Clone(m.SetVal())
		m.SetSetVal(value.SwapDone)
		m.PushArg(old)
		value.Drop(m.Pool(), target)
		return nil
	}
	m.PushArg(value.Clone(target.Cons.Car))
	value.Drop(m.Pool(), target)
	return nil
}

// restBuiltin reads or (in Set mode) swaps the cdr of a cons value.
func restBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) != 1 {
		return m.Raise(string(value.ErrArgument), "rest requires 1 argument, got %d", len(forms))
	}
	if err := m.Eval(value.ModeSingle, forms[0]); err != nil {
		return err
	}
	target := m.PopArg()
	if target.Kind != value.KindCons {
		value.Drop(m.Pool(), target)
		return m.Raise(string(value.ErrType), "rest requires a cons value")
	}
	if mode == value.ModeSet {
		old := target.Cons.Cdr
		target.Cons.Cdr = value.Clone(m.SetVal())
		m.SetSetVal(value.SwapDone)
		m.PushArg(old)
		value.Drop(m.Pool(), target)
		return nil
	}
	m.PushArg(value.Clone(target.Cons.Cdr))
	value.Drop(m.Pool(), target)
	return nil
}
