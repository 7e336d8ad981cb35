package expand

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/kestrel-lang/kestrel/value"
)

// analyzeScope walks form tracking defVars, the set of parameter names
// currently visible from enclosing fn/dynamic forms, and returns the subset
// of defVars actually referenced within form (its ref set), alongside a
// rewritten copy of form with every fn/dynamic subform replaced by its
// capture-annotated lambda literal (spec §4.4).
func (e *Expander) analyzeScope(form *value.Value, defVars map[string]bool) (map[string]bool, *value.Value, error) {
	if form == nil {
		return nil, form, nil
	}
	switch form.Kind {
	case value.KindSym:
		if defVars[form.Sym.Name] {
			return map[string]bool{form.Sym.Name: true}, form, nil
		}
		return nil, form, nil
	case value.KindCons:
		head := form.Cons.Car
		if isSym(head, "quote") {
			return nil, form, nil
		}
		if isSym(head, "fn") {
			return e.analyzeLambda(form, defVars, true)
		}
		if isSym(head, "dynamic") {
			return e.analyzeLambda(form, defVars, false)
		}
		carRefs, newCar, err := e.analyzeScope(form.Cons.Car, defVars)
		if err != nil {
			return nil, nil, err
		}
		cdrRefs, newCdr, err := e.analyzeScope(form.Cons.Cdr, defVars)
		if err != nil {
			return nil, nil, err
		}
		merged := unionSet(carRefs, cdrRefs)
		if newCar == form.Cons.Car && newCdr == form.Cons.Cdr {
			return merged, form, nil
		}
		return merged, value.NewCons(e.pool, newCar, newCdr), nil
	default:
		return nil, form, nil
	}
}

// analyzeLambda rewrites (fn params body...) or (dynamic params body...)
// into a call to the make-lambda builtin:
//
//	(make-lambda (quote kind) fenv-expr (quote params) (quote body-list))
//
// make-lambda is an ordinary builtin (package builtins) that evaluates its
// four arguments like any other primitive and packages the results into
// the flat 4-element runtime lambda value (kind fenv params body-list) that
// eval/lambda.go destructures with plain Car/Cadr/Caddr/Cadddr. kind (the
// symbol fn or dynamic) lets application tell a true function-call boundary
// (which catches Break/Continue escaping its body as an error, same as an
// unmatched break at top level) from a dynamic block (which is transparent
// to them, per the Open Question decision in DESIGN.md). Routing lambda
// construction through a call form (rather than splicing the runtime tuple
// directly into the AST) keeps "construct a closure" and "invoke a closure"
// syntactically distinct: the former is a make-lambda call node, the latter
// is a symbol-headed call whose Func slot happens to resolve to a lambda
// value.
//
// capture selects fn's behaviour (fenv-expr is a (cap v1 v2...) call built
// from the intersection of enclosing defVars and the body's ref set)
// versus dynamic's (fenv-expr is always the literal Nil: dynamic lambdas
// bypass capture entirely and are rebound fresh, by name, on every
// application).
func (e *Expander) analyzeLambda(form *value.Value, enclosing map[string]bool, capture bool) (map[string]bool, *value.Value, error) {
	rest := form.Cons.Cdr
	if rest == nil || rest.Kind != value.KindCons {
		return nil, nil, errors.New("malformed fn/dynamic form: missing parameter list")
	}
	paramsList := rest.Cons.Car
	bodySpine := rest.Cons.Cdr
	paramNames := listSymbolNames(paramsList)

	innerDefVars := make(map[string]bool, len(enclosing)+len(paramNames))
	for k := range enclosing {
		innerDefVars[k] = true
	}
	for _, n := range paramNames {
		innerDefVars[n] = true
	}

	bodyRefs, newBodySpine, err := e.analyzeScope(bodySpine, innerDefVars)
	if err != nil {
		return nil, nil, err
	}

	upRefs := make(map[string]bool, len(bodyRefs))
	for n := range bodyRefs {
		if !containsName(paramNames, n) {
			upRefs[n] = true
		}
	}

	var fenvExpr *value.Value
	kindName := "dynamic"
	if capture {
		kindName = "fn"
		fenvExpr = e.buildCapForm(intersectNames(enclosing, bodyRefs))
	} else {
		fenvExpr = value.Nil
	}

	newForm := value.NewCons(e.pool, e.intern("make-lambda"),
		value.NewCons(e.pool, e.quoteForm(e.intern(kindName)),
			value.NewCons(e.pool, fenvExpr,
				value.NewCons(e.pool, e.quoteForm(paramsList),
					value.NewCons(e.pool, e.quoteForm(newBodySpine), value.Nil)))))
	return upRefs, newForm, nil
}

// quoteForm wraps v as (quote v).
func (e *Expander) quoteForm(v *value.Value) *value.Value {
	return value.NewCons(e.pool, e.intern("quote"), value.NewCons(e.pool, v, value.Nil))
}

// buildCapForm returns the (cap name1 name2 ...) expression that, evaluated
// at the moment the enclosing fn form is reached, snapshots each named
// variable's current binding into the runtime capture list. cap receives
// its argument symbols unevaluated, like every other special-form
// primitive (spec §4.6).
func (e *Expander) buildCapForm(names map[string]bool) *value.Value {
	sorted := sortedNames(names)
	args := value.Nil
	for i := len(sorted) - 1; i >= 0; i-- {
		args = value.NewCons(e.pool, e.intern(sorted[i]), args)
	}
	return value.NewCons(e.pool, e.intern("cap"), args)
}

// listSymbolNames collects every symbol name in a (possibly dotted)
// parameter list: '(a b & rest)' yields ["a", "b", "rest"].
func listSymbolNames(list *value.Value) []string {
	var names []string
	cur := list
	for {
		if value.IsNil(cur) {
			return names
		}
		if cur.Kind != value.KindCons {
			if cur.Kind == value.KindSym {
				names = append(names, cur.Sym.Name)
			}
			return names
		}
		if cur.Cons.Car.Kind == value.KindSym {
			names = append(names, cur.Cons.Car.Sym.Name)
		}
		cur = cur.Cons.Cdr
	}
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func unionSet(a, b map[string]bool) map[string]bool {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

func intersectNames(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

func sortedNames(names map[string]bool) []string {
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
