package builtins

import (
	"github.com/kestrel-lang/kestrel/symtab"
	"github.com/kestrel-lang/kestrel/value"
)

// registerLambda installs make-lambda and cap, the two primitives
// expand/scope.go's lambda-construction rewrite emits calls to (see
// DESIGN.md's Open Question decisions on lambda representation and
// construction syntax).
func registerLambda(tab *symtab.Table) {
	tab.BindPrimitive("make-lambda", makeLambda)
	tab.BindPrimitive("cap", capBuiltin)
}

// makeLambda evaluates its four argument forms (kind, fenv, params,
// body-list — kind and params/body-list are always quoted by the
// expander's rewrite, fenv is either Nil or a cap call) and packages the
// results into the flat 4-element runtime lambda value eval/lambda.go
// destructures.
func makeLambda(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) != 4 {
		return m.Raise(string(value.ErrArgument), "make-lambda requires 4 arguments, got %d", len(forms))
	}
	vals, err := evalArgs(m, forms)
	if err != nil {
		return err
	}
	m.PushArg(sliceToList(m.Pool(), vals))
	return nil
}

// capBuiltin materializes a lambda's capture list (spec §4.4): each
// argument names a variable visible at the point the enclosing fn form is
// reached; cap snapshots its current value into a freshly allocated
// captured box and returns the list of (name . box) pairs that becomes
// the lambda's fenv. Argument forms are evaluated like any ordinary
// expression (a bare symbol self-evaluates to its current binding), but
// the symbol identity itself — not its value — is what's paired with the
// box, so cap reads forms directly rather than treating them as plain
// arguments.
func capBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	pairs := make([]*value.Value, 0, len(forms))
	for _, f := range forms {
		if f == nil || f.Kind != value.KindSym {
			dropAll(m.Pool(), pairs)
			return m.Raise(string(value.ErrArgument), "cap expects variable names")
		}
		if err := m.Eval(value.ModeSingle, f); err != nil {
			dropAll(m.Pool(), pairs)
			return err
		}
		inner := m.PopArg()
		box := value.NewCaptured(m.Pool(), inner)
		pairs = append(pairs, value.NewCons(m.Pool(), f, box))
	}
	m.PushArg(sliceToList(m.Pool(), pairs))
	return nil
}
