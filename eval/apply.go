package eval

import "github.com/kestrel-lang/kestrel/value"

// Apply invokes fn against the raw argument forms args (spec §4.6/§4.7):
// primitives receive them unevaluated and decide their own calling
// convention; lambda/macro cons values go through applyLambda's swap-bind
// protocol; a string value dispatches to the registered external-command
// hook (package procexec); a dict value treats args as a key path.
func (i *Interp) Apply(mode value.Mode, fn *value.Value, args *value.Value) error {
	switch {
	case fn.Kind == value.KindPrim:
		return fn.Prim(i, mode, args)
	case fn.Kind == value.KindCons:
		return i.applyLambda(mode, fn, args, false)
	case value.IsString(fn):
		return i.execCommand(mode, fn.Var.Name, args)
	case fn.Kind == value.KindInt:
		return i.execCommand(mode, value.Sprint(fn), args)
	case fn.Kind == value.KindFat && fn.Fat.Kind == value.FatDict:
		return i.applyDict(mode, fn, args)
	default:
		return i.Raise(string(value.ErrType), "value of kind %s is not callable", fn.Kind)
	}
}

// execCommand invokes the interpreter's registered external-command hook
// (spec §4.11's eval_cmd), wired by WithExec (see env.go); an interpreter
// built without one raises an argument error rather than panicking on a
// nil hook, since a script with no process-exec needs (e.g. unit tests)
// should not have to supply one.
func (i *Interp) execCommand(mode value.Mode, name string, args *value.Value) error {
	if i.exec == nil {
		return i.Raise(string(value.ErrArgument), "no external command handler installed for %q", name)
	}
	return i.exec(i, mode, name, args)
}

// applyDict treats args as a key path into the dict (spec §4.6): each
// argument form is evaluated to a string key, walking nested dicts; in Set
// mode the final key's slot is installed from SetVal and the swap-done
// sentinel is reported, otherwise the resolved value (or Nil if absent) is
// pushed.
func (i *Interp) applyDict(mode value.Mode, fn *value.Value, args *value.Value) error {
	keyForms, _ := listToSlice(args)
	if len(keyForms) == 0 {
		i.PushArg(value.Clone(fn))
		return nil
	}
	d := fn.Fat.Dict
	for idx, kf := range keyForms {
		if err := i.Eval(value.ModeSingle, kf); err != nil {
			return err
		}
		keyVal := i.PopArg()
		key := value.Sprint(keyVal)
		if value.IsString(keyVal) {
			key = keyVal.Var.Name
		}
		value.Drop(i.pool, keyVal)

		last := idx == len(keyForms)-1
		if last && mode == value.ModeSet {
			// old is the dict slot's own reference; Set immediately
			// overwrites the slot without dropping it, so pushing old here
			// (rather than a fresh clone) transfers that reference to the
			// caller instead of leaking it.
			old, ok := d.Get(key)
			if !ok {
				old = value.Nil
			}
			d.Set(key, value.Clone(i.SetVal()))
			i.SetSetVal(value.SwapDone)
			i.PushArg(old)
			return nil
		}
		v, ok := d.Get(key)
		if !ok {
			if !last {
				return i.Raise(string(value.ErrArgument), "no dict entry for key %q", key)
			}
			i.PushArg(value.Nil)
			return nil
		}
		if last {
			i.PushArg(value.Clone(v))
			return nil
		}
		if v.Kind != value.KindFat || v.Fat.Kind != value.FatDict {
			return i.Raise(string(value.ErrType), "key %q does not resolve to a dict", key)
		}
		d = v.Fat.Dict
	}
	return nil
}

// ApplyMacro runs a (mac params body...) value against rawArgs without
// evaluating them, per spec §4.4, and returns its single result.
//
// A macro value's own shape — the literal 3+-element (mac params
// body-form...) list a user constructs directly (there is no scope-
// analysis rewrite pass for macros the way fn/dynamic get one) — does not
// match applyLambda's flat 4-element (kind fenv params body-list)
// convention: body here is spliced directly onto the cddr spine rather
// than nested as its own list element. ApplyMacro normalizes the shape
// once at the call boundary (treated as a dynamic lambda: macros don't
// capture, and Break/Continue transparency is moot at expansion time)
// rather than teaching applyLambda two incompatible layouts.
func (i *Interp) ApplyMacro(fn *value.Value, rawArgs *value.Value) (*value.Value, error) {
	if fn == nil || fn.Kind != value.KindCons {
		return nil, i.Raise(string(value.ErrType), "macro function slot is not a lambda value")
	}
	rest := fn.Cons.Cdr
	params := value.Nil
	bodySpine := value.Nil
	if rest.Kind == value.KindCons {
		params = rest.Cons.Car
		bodySpine = rest.Cons.Cdr
	}
	lam := value.NewCons(i.pool, i.tab.Intern("dynamic"),
		value.NewCons(i.pool, value.Nil,
			value.NewCons(i.pool, value.Clone(params),
				value.NewCons(i.pool, value.Clone(bodySpine), value.Nil))))

	err := i.applyLambda(value.ModeSingle, lam, rawArgs, true)
	value.Drop(i.pool, lam)
	if err != nil {
		return nil, err
	}
	return i.PopArg(), nil
}

// listToSlice walks a proper (or dotted) list, returning its elements and,
// if the list ends in a non-nil atom rather than Nil, that atom as tail.
func listToSlice(list *value.Value) (elems []*value.Value, tail *value.Value) {
	cur := list
	for {
		if value.IsNil(cur) {
			return elems, nil
		}
		if cur.Kind != value.KindCons {
			return elems, cur
		}
		elems = append(elems, cur.Cons.Car)
		cur = cur.Cons.Cdr
	}
}

// sliceToList builds a fresh proper list owning each element.
func sliceToList(pool *value.Pool, elems []*value.Value) *value.Value {
	result := value.Nil
	for idx := len(elems) - 1; idx >= 0; idx-- {
		result = value.NewCons(pool, elems[idx], result)
	}
	return result
}
