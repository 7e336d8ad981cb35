package eval

import "github.com/kestrel-lang/kestrel/value"

// lambdaKind/lambdaFenv/lambdaParams/lambdaBody read the 4-element runtime
// lambda value (kind fenv params body-list) built by the make-lambda
// builtin from expand/scope.go's rewrite (see DESIGN.md's Open Question
// decisions): a flat proper list rather than the dotted capture/params/body
// chain spec.md and original_source describe, so every accessor here is
// plain Car/Cadr/Caddr/Cadddr instead of a hand-rolled dotted-chain walk.
func lambdaKind(lam *value.Value) *value.Value   { return lam.Cons.Car }
func lambdaFenv(lam *value.Value) *value.Value   { return lam.Cons.Cdr.Cons.Car }
func lambdaParams(lam *value.Value) *value.Value { return lam.Cons.Cdr.Cons.Cdr.Cons.Car }
func lambdaBody(lam *value.Value) *value.Value {
	return lam.Cons.Cdr.Cons.Cdr.Cons.Cdr.Cons.Car
}

// binding is a saved dynamic-variable slot, restored once a call returns.
// box is non-nil only for a captured-variable binding: shared interior
// mutability (spec §5) requires writing the binding's final value back
// into the shared capture box before the outer binding is restored, so a
// sibling closure holding the same box sees any `set` performed inside
// this call.
type binding struct {
	v   *value.Variable
	old *value.Value
	box *value.Fat
}

// applyLambda implements the lambda/dynamic application protocol (spec
// §4.6), grounded on original_source's eval_lambda: every symbol the
// lambda's parameter list or capture list names is shallow-bound (swap its
// Variable.Val, save the old one, restore it once the call returns) rather
// than given a fresh lexical frame, mirroring the teacher's own
// swap-in/swap-out style (vm/core.go's OpSwap) generalized from a data
// stack slot to a named dynamic binding.
//
// raw selects macro application (spec §4.4): parameters are bound to the
// literal, unevaluated argument forms instead of their evaluated results.
func (i *Interp) applyLambda(mode value.Mode, lam *value.Value, args *value.Value, raw bool) error {
	kindSym := lambdaKind(lam)
	fenv := lambdaFenv(lam)
	params := lambdaParams(lam)
	body := lambdaBody(lam)
	isDynamic := kindSym.Kind == value.KindSym && kindSym.Sym.Name == "dynamic"

	argForms, _ := listToSlice(args)
	argVals := make([]*value.Value, len(argForms))
	if raw {
		for idx, f := range argForms {
			argVals[idx] = value.Clone(f)
		}
	} else {
		for idx, f := range argForms {
			if err := i.Eval(value.ModeSingle, f); err != nil {
				for _, v := range argVals[:idx] {
					value.Drop(i.pool, v)
				}
				return err
			}
			argVals[idx] = i.PopArg()
		}
	}

	var saves []binding
	restore := func() {
		for idx := len(saves) - 1; idx >= 0; idx-- {
			s := saves[idx]
			if s.box != nil {
				value.Drop(i.pool, s.box.Box)
				s.box.Box = value.Clone(s.v.Val)
			}
			value.Drop(i.pool, s.v.Val)
			s.v.Val = s.old
		}
	}

	paramNames, restName := listToSlice(params)
	for idx, p := range paramNames {
		if p.Kind != value.KindSym {
			continue
		}
		var av *value.Value
		if idx < len(argVals) {
			av = argVals[idx]
		} else {
			av = value.Nil
		}
		b := p.Sym.Binding()
		saves = append(saves, binding{v: b, old: b.Val})
		b.Val = av
	}
	if restName != nil && restName.Kind == value.KindSym {
		n := len(paramNames)
		var rest []*value.Value
		if n < len(argVals) {
			rest = argVals[n:]
		}
		b := restName.Sym.Binding()
		saves = append(saves, binding{v: b, old: b.Val})
		b.Val = sliceToList(i.pool, rest)
	}
	capPairs, _ := listToSlice(fenv)
	for _, pair := range capPairs {
		if pair.Kind != value.KindCons {
			continue
		}
		nameVal := pair.Cons.Car
		boxed := pair.Cons.Cdr
		if nameVal.Kind != value.KindSym {
			continue
		}
		inner := value.Nil
		var box *value.Fat
		if boxed.Kind == value.KindFat && boxed.Fat.Kind == value.FatCaptured {
			inner = boxed.Fat.Box
			box = boxed.Fat
		}
		b := nameVal.Sym.Binding()
		saves = append(saves, binding{v: b, old: b.Val, box: box})
		b.Val = value.Clone(inner)
	}

	i.pushRestFrame()
	for _, av := range argVals {
		i.PushRest(value.Clone(av))
	}
	i.SetRestCap(len(argVals))
	if restName == nil {
		// Argument values beyond the declared parameters were consumed by
		// no binding; only the rest-frame clone above keeps them alive.
		for idx := len(paramNames); idx < len(argVals); idx++ {
			value.Drop(i.pool, argVals[idx])
		}
	}

	// A dynamic lambda lets Return/ReturnFail pass through to its caller;
	// fn lambdas and macro expansions catch them.
	err := i.runBody(mode, body, !isDynamic || raw)

	i.popRestFrame()
	restore()

	if err != nil {
		if !isDynamic {
			if _, isLoop := isLoopSignal(err); isLoop {
				return newOther(value.Raise(value.ErrContext, "break/continue used outside a loop"))
			}
		}
		return err
	}
	return nil
}

// runBody executes a (possibly empty) body-list as an implicit progn,
// leaving the last statement's result(s) on the argument stack exactly as
// Eval would for any other form (so Single/Multi/Set mode propagate
// untouched). When catchReturn is set, an escaping Return/ReturnFail
// control-transfer becomes the call's own result instead. Any other error
// (including Break/Continue, whose fate applyLambda decides based on lambda
// kind) propagates to the caller with nothing left on the stack.
func (i *Interp) runBody(mode value.Mode, body *value.Value, catchReturn bool) error {
	forms, _ := listToSlice(body)
	if len(forms) == 0 {
		i.PushArg(value.Nil)
		return nil
	}
	progn := mode.ForProgn()
	last := progn.ForReturn()
	for idx, f := range forms {
		m := progn
		if idx == len(forms)-1 {
			m = last
		}
		mark := i.ArgLen()
		err := i.Eval(m, f)
		if err != nil {
			if catchReturn {
				if payload, ok := asCtrl(err, ctrlReturn); ok {
					i.PushArg(payload)
					return nil
				}
				if payload, ok := asCtrl(err, ctrlReturnFail); ok {
					i.PushArg(payload)
					return nil
				}
			}
			return err
		}
		if idx < len(forms)-1 {
			i.dropArgsAbove(mark)
		}
	}
	return nil
}
