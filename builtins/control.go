package builtins

import (
	"errors"

	"github.com/kestrel-lang/kestrel/symtab"
	"github.com/kestrel-lang/kestrel/value"
)

// registerControl installs the built-ins that define the language's control
// flow: if/while (spec §4.9's loop form), return/break/continue (the
// non-local control transfers), raise/with-handler (exceptions, spec §7),
// and do (plain sequencing).
func registerControl(tab *symtab.Table) {
	tab.BindPrimitive("if", ifBuiltin)
	tab.BindPrimitive("while", whileBuiltin)
	tab.BindPrimitive("do", doBuiltin)
	tab.BindPrimitive("return", returnBuiltin)
	tab.BindPrimitive("break", breakBuiltin)
	tab.BindPrimitive("continue", continueBuiltin)
	tab.BindPrimitive("raise", raiseBuiltin)
	tab.BindPrimitive("with-handler", withHandlerBuiltin)
}

// ifBuiltin walks its arguments as (test1 then1 test2 then2 … [else]),
// cond-style (grounded on original_source's if_): the first test that
// evaluates truthy runs its paired then-form as the result; an unpaired
// trailing form (odd argument count) is an unconditional else; running out
// of clauses yields NIL.
func ifBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	cur := args
	for {
		if value.IsNil(cur) || cur.Kind != value.KindCons {
			m.PushArg(value.Nil)
			return nil
		}
		test := cur.Cons.Car
		rest := cur.Cons.Cdr
		if value.IsNil(rest) || rest.Kind != value.KindCons {
			return m.Eval(mode.ForSpecialForm(), test)
		}
		then := rest.Cons.Car
		if err := m.Eval(value.ModeSingle, test); err != nil {
			return err
		}
		tv := m.PopArg()
		ok := value.Truthy(tv)
		value.Drop(m.Pool(), tv)
		if ok {
			return m.Eval(mode.ForSpecialForm(), then)
		}
		cur = rest.Cons.Cdr
	}
}

// runProgn evaluates forms in sequence, dropping every result but the
// last, and returns ownership of the final form's value (NIL if forms is
// empty). Errors, including escaping control transfers, propagate as-is.
func runProgn(m value.Machine, mode value.Mode, forms []*value.Value) (*value.Value, error) {
	if len(forms) == 0 {
		return value.Nil, nil
	}
	for idx, f := range forms {
		last := idx == len(forms)-1
		em := value.ModeSingle
		if last {
			em = mode.ForSpecialForm()
		}
		if err := m.Eval(em, f); err != nil {
			return nil, err
		}
		v := m.PopArg()
		if !last {
			value.Drop(m.Pool(), v)
			continue
		}
		return v, nil
	}
	return value.Nil, nil
}

// doBuiltin is plain sequencing: an implicit progn over its arguments,
// supplementing spec's if/while special forms with the general-purpose
// form SPEC_FULL's pipeline examples (`spawn (do …)`) need.
func doBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	v, err := runProgn(m, mode, forms)
	if err != nil {
		return err
	}
	m.PushArg(v)
	return nil
}

// whileBuiltin implements spec's while loop (§4.9, scenario S4): cond is
// re-checked before every iteration; each iteration's body runs as an
// implicit do and its final value is accumulated. Continue drops the
// current iteration's partial contribution and moves straight to the next
// cond check; Break/BreakFail end the loop with their own payload as the
// loop's primary result, discarding the accumulator (S4); falling off the
// end of the loop instead yields the accumulated list.
func whileBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) < 1 {
		return m.Raise(string(value.ErrArgument), "while requires a condition argument")
	}
	cond := forms[0]
	body := forms[1:]

	var results []*value.Value
	for {
		if err := m.Eval(value.ModeSingle, cond); err != nil {
			dropAll(m.Pool(), results)
			return err
		}
		c := m.PopArg()
		cont := value.Truthy(c)
		value.Drop(m.Pool(), c)
		if !cont {
			break
		}

		v, err := runProgn(m, value.ModeSingle, body)
		if err != nil {
			isLoop, isBreak, _ := m.ClassifyLoop(err)
			if !isLoop {
				dropAll(m.Pool(), results)
				return err
			}
			if isBreak {
				payload := m.LoopPayload(err)
				dropAll(m.Pool(), results)
				m.PushArg(payload)
				return nil
			}
			// Continue: this iteration contributes nothing.
			continue
		}
		results = append(results, v)
	}
	m.PushArg(sliceToList(m.Pool(), results))
	return nil
}

// returnBuiltin evaluates its optional argument and raises Return (payload
// truthy) or ReturnFail (payload NIL/falsy), caught by the nearest
// enclosing lexical lambda (spec §4.6 step 7).
func returnBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) == 0 {
		return m.Return(value.Nil)
	}
	if err := m.Eval(mode.ForReturn(), forms[0]); err != nil {
		return err
	}
	v := m.PopArg()
	if !value.Truthy(v) {
		return m.ReturnFail(v)
	}
	return m.Return(v)
}

// breakBuiltin is return's loop-scoped counterpart: it ends the nearest
// enclosing while loop instead of a lambda call.
func breakBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) == 0 {
		return m.Break(value.Nil)
	}
	if err := m.Eval(mode.ForReturn(), forms[0]); err != nil {
		return err
	}
	v := m.PopArg()
	if !value.Truthy(v) {
		return m.BreakFail(v)
	}
	return m.Break(v)
}

// continueBuiltin takes no argument: it only ever signals the nearest
// enclosing while loop to move on to its next iteration.
func continueBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	return m.Continue()
}

// raiseBuiltin evaluates (label message) and raises an Other exception of
// that kind, propagated until a with-handler catches it.
func raiseBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) != 2 {
		return m.Raise(string(value.ErrArgument), "raise requires 2 arguments (label message), got %d", len(forms))
	}
	vals, err := evalArgs(m, forms)
	if err != nil {
		return err
	}
	defer dropAll(m.Pool(), vals)
	label := textOf(vals[0])
	msg := textOf(vals[1])
	return m.Raise(label, "%s", msg)
}

// withHandlerBuiltin evaluates body; any escaping control transfer
// (return/break/continue) propagates unchanged, since those are not
// exceptions (spec §7). Any other error is unpacked into its {label,
// message} pair and handler — evaluated, then applied to the two values as
// quoted literal arguments — is invoked to produce with-handler's result.
func withHandlerBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) != 2 {
		return m.Raise(string(value.ErrArgument), "with-handler requires 2 arguments, got %d", len(forms))
	}
	bodyForm, handlerForm := forms[0], forms[1]

	err := m.Eval(mode, bodyForm)
	if err == nil {
		return nil
	}
	if m.IsControlTransfer(err) {
		return err
	}

	var le *value.LangError
	kind, msg := "error", err.Error()
	if errors.As(err, &le) {
		kind, msg = string(le.Kind), le.Message
	}

	if hErr := m.Eval(value.ModeSingle, handlerForm); hErr != nil {
		return hErr
	}
	handlerFn := m.PopArg()

	labelForm := quoted(m, m.Intern(kind))
	msgForm := quoted(m, value.NewString(m.Pool(), msg))
	argForms := value.NewCons(m.Pool(), labelForm, value.NewCons(m.Pool(), msgForm, value.Nil))
	applyErr := m.Apply(mode, handlerFn, argForms)
	value.Drop(m.Pool(), argForms)
	return applyErr
}

// quoted wraps v in a (quote v) form so it can be passed as a raw argument
// form to Apply without being re-evaluated (v may be a symbol or cons).
func quoted(m value.Machine, v *value.Value) *value.Value {
	return value.NewCons(m.Pool(), m.Intern("quote"), value.NewCons(m.Pool(), v, value.Nil))
}

// textOf renders a value as the raw text addressing/raise builtins need:
// a string value's own characters, or its printed representation
// otherwise.
func textOf(v *value.Value) string {
	if value.IsString(v) {
		return v.Var.Name
	}
	return value.Sprint(v)
}
