package builtins

import "github.com/kestrel-lang/kestrel/value"

// listElems walks a proper (or dotted) list, returning its elements. A
// dotted tail (a non-Nil, non-Cons final Cdr) is silently dropped from the
// result: every builtin here that walks a raw argument spine only cares
// about the proper-list prefix.
func listElems(list *value.Value) []*value.Value {
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

// sliceToList builds a fresh proper list owning each element of elems.
func sliceToList(pool *value.Pool, elems []*value.Value) *value.Value {
	result := value.Nil
	for idx := len(elems) - 1; idx >= 0; idx-- {
		result = value.NewCons(pool, elems[idx], result)
	}
	return result
}

// dropAll drops every value in vs, used to unwind partially-evaluated
// argument lists on error.
func dropAll(pool *value.Pool, vs []*value.Value) {
	for _, v := range vs {
		value.Drop(pool, v)
	}
}

// evalArgs evaluates each form in forms under Single mode, left to right,
// stopping and unwinding on the first error (spec §5's "arguments are
// evaluated strictly left to right").
func evalArgs(m value.Machine, forms []*value.Value) ([]*value.Value, error) {
	vals := make([]*value.Value, 0, len(forms))
	for _, f := range forms {
		if err := m.Eval(value.ModeSingle, f); err != nil {
			dropAll(m.Pool(), vals)
			return nil, err
		}
		vals = append(vals, m.PopArg())
	}
	return vals, nil
}
