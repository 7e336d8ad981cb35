package eval

import "github.com/kestrel-lang/kestrel/value"

// evalAt implements @form (spec §4.8). form is evaluated in Multi mode;
// Multi-aware forms (this one, and the arg builtin's no-operand case)
// respond by pushing their results followed by value.MultiDone instead of a
// single value. evalAt collapses whatever comes back into one concatenated
// run of values: a MultiDone-terminated run is left as-is, a single list
// result is unrolled element by element, anything else is a type error.
//
// If the caller's own mode is itself a Multi variant, a fresh MultiDone is
// pushed behind the result so an enclosing @ keeps splicing; in Single (or
// Set) context the terminator is dropped and the concatenated values are
// simply left as this form's result.
func (i *Interp) evalAt(mode value.Mode, ast *value.Value) error {
	inner := value.Nil
	if ast.Cons.Cdr.Kind == value.KindCons {
		inner = ast.Cons.Cdr.Cons.Car
	}
	if err := i.Eval(value.ModeMulti, inner); err != nil {
		return err
	}
	top := i.PopArg()
	switch {
	case top == value.MultiDone:
		// inner already spliced its own results directly onto the stack.
	case value.IsNil(top) || top.Kind == value.KindCons:
		i.spliceList(top)
	default:
		value.Drop(i.pool, top)
		return i.Raise(string(value.ErrType), "@ requires its form to yield a list or a multi-value result")
	}
	if mode == value.ModeMulti || mode == value.ModeDoMulti {
		i.PushArg(value.MultiDone)
	}
	return nil
}

// spliceList pushes every element of list onto the argument stack, in
// order, and drops list's own reference: each pushed clone becomes an
// independent owned reference, and dropping list removes the list
// structure's reference to each element without disturbing the new ones.
func (i *Interp) spliceList(list *value.Value) {
	elems, _ := listToSlice(list)
	for _, e := range elems {
		i.PushArg(value.Clone(e))
	}
	value.Drop(i.pool, list)
}

// dropArgsAbove discards and drops every argument-stack value pushed since
// mark, tolerating a MultiDone terminator among them (which is never owned
// and must never be passed to Drop). Used by runBody to clean up an
// intermediate sequence statement's result(s) regardless of how many values
// it actually pushed.
func (i *Interp) dropArgsAbove(mark int) {
	for i.ArgLen() > mark {
		v := i.PopArg()
		if v == value.MultiDone {
			continue
		}
		value.Drop(i.pool, v)
	}
}
