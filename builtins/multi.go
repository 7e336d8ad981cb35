package builtins

import (
	"github.com/kestrel-lang/kestrel/symtab"
	"github.com/kestrel-lang/kestrel/value"
)

// registerMulti installs arg/argc/shift, the current call frame's
// positional-argument accessors (spec §4.8): `arg` with no operand splices
// the whole rest list, with an integer index reads or (Set mode) swaps one
// element 1-based from the front (negative counts from the end); `argc`
// reports the current count; `shift` drops elements from the front.
func registerMulti(tab *symtab.Table) {
	tab.BindPrimitive("arg", argBuiltin)
	tab.BindPrimitive("argc", argcBuiltin)
	tab.BindPrimitive("shift", shiftBuiltin)
}

func intOf(v *value.Value) (int64, bool) {
	if v == nil || v.Kind != value.KindInt {
		return 0, false
	}
	return v.Int, true
}

func argBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) == 0 {
		rest := m.Rest()
		if mode == value.ModeMulti || mode == value.ModeDoMulti {
			for _, v := range rest {
				m.PushArg(value.Clone(v))
			}
			m.PushArg(value.MultiDone)
			return nil
		}
		elems := make([]*value.Value, len(rest))
		for idx, v := range rest {
			elems[idx] = value.Clone(v)
		}
		m.PushArg(sliceToList(m.Pool(), elems))
		return nil
	}
	if len(forms) != 1 {
		return m.Raise(string(value.ErrArgument), "arg accepts at most 1 argument, got %d", len(forms))
	}
	if err := m.Eval(value.ModeSingle, forms[0]); err != nil {
		return err
	}
	nv := m.PopArg()
	n, ok := intOf(nv)
	value.Drop(m.Pool(), nv)
	if !ok {
		return m.Raise(string(value.ErrType), "arg requires an integer index")
	}

	cnt := int64(len(m.Rest()))
	idx := n
	if idx < 0 {
		idx += cnt + 1
	}
	if idx < 1 || idx > cnt {
		m.PushArg(value.Nil)
		return nil
	}
	pos := int(idx - 1)

	if mode == value.ModeSet {
		old, ok := m.SwapRestAt(pos, value.Clone(m.SetVal()))
		if !ok {
			m.PushArg(value.Nil)
			return nil
		}
		m.SetSetVal(value.SwapDone)
		m.PushArg(old)
		return nil
	}
	m.PushArg(value.Clone(m.Rest()[pos]))
	return nil
}

func argcBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	m.PushArg(value.Int(int64(len(m.Rest()))))
	return nil
}

func shiftBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	n := int64(1)
	if len(forms) > 0 {
		if err := m.Eval(value.ModeSingle, forms[0]); err != nil {
			return err
		}
		v := m.PopArg()
		iv, ok := intOf(v)
		value.Drop(m.Pool(), v)
		if !ok {
			return m.Raise(string(value.ErrType), "shift requires an integer count")
		}
		n = iv
	}
	result := value.Nil
	for k := int64(0); k < n; k++ {
		v, ok := m.DropRestFront()
		if !ok {
			m.PushArg(value.Nil)
			return nil
		}
		value.Drop(m.Pool(), result)
		result = v
	}
	m.PushArg(result)
	return nil
}
