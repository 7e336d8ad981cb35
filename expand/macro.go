package expand

import "github.com/kestrel-lang/kestrel/value"

// expandMacros repeatedly applies one bottom-up expansion pass until a
// pass makes no change, per spec §4.4: a macro's expansion may itself
// contain further macro calls.
func (e *Expander) expandMacros(ast *value.Value) (*value.Value, error) {
	for {
		next, changed, err := e.expandForm(ast)
		if err != nil {
			return nil, err
		}
		if !changed {
			return next, nil
		}
		ast = next
	}
}

// expandForm treats form as a single call expression: if its head names a
// macro, the macro is applied to the raw (unexpanded) argument forms and
// its result replaces form outright. Otherwise the operator position and
// each argument are recursively expanded as their own sub-forms.
func (e *Expander) expandForm(form *value.Value) (*value.Value, bool, error) {
	if form == nil || form.Kind != value.KindCons {
		return form, false, nil
	}
	head := form.Cons.Car
	if isSym(head, "quote") {
		return form, false, nil
	}
	if macroFn, ok := macroFunc(head); ok {
		result, err := e.machine.ApplyMacro(macroFn, form.Cons.Cdr)
		if err != nil {
			return nil, false, err
		}
		return result, true, nil
	}
	newHead, headChanged, err := e.expandForm(head)
	if err != nil {
		return nil, false, err
	}
	newArgs, argsChanged, err := e.expandArgs(form.Cons.Cdr)
	if err != nil {
		return nil, false, err
	}
	if !headChanged && !argsChanged {
		return form, false, nil
	}
	return value.NewCons(e.pool, newHead, newArgs), true, nil
}

// expandArgs walks the spine of an argument list (a chain of cons cells,
// possibly with a non-nil dotted tail), expanding each element as its own
// sub-form while leaving the spine's shape and any dotted tail untouched.
func (e *Expander) expandArgs(spine *value.Value) (*value.Value, bool, error) {
	if spine == nil || spine.Kind != value.KindCons {
		return spine, false, nil
	}
	elem, elemChanged, err := e.expandForm(spine.Cons.Car)
	if err != nil {
		return nil, false, err
	}
	rest, restChanged, err := e.expandArgs(spine.Cons.Cdr)
	if err != nil {
		return nil, false, err
	}
	if !elemChanged && !restChanged {
		return spine, false, nil
	}
	return value.NewCons(e.pool, elem, rest), true, nil
}

// macroFunc reports whether head is a symbol whose function slot holds a
// (mac params body...) value, and returns that value if so.
func macroFunc(head *value.Value) (*value.Value, bool) {
	if head == nil || head.Kind != value.KindSym {
		return nil, false
	}
	fn := head.Sym.Func
	if fn == nil || fn.Kind != value.KindCons {
		return nil, false
	}
	if !isSym(fn.Cons.Car, "mac") {
		return nil, false
	}
	return fn, true
}
