package eval

import (
	"testing"

	"github.com/kestrel-lang/kestrel/symtab"
	"github.com/kestrel-lang/kestrel/value"
)

func list(pool *value.Pool, elems ...*value.Value) *value.Value {
	result := value.Nil
	for i := len(elems) - 1; i >= 0; i-- {
		result = value.NewCons(pool, elems[i], result)
	}
	return result
}

func newTestInterp(t *testing.T) (*Interp, *value.Pool, *symtab.Table) {
	t.Helper()
	pool := value.NewPool()
	tab := symtab.New()
	i, err := New(pool, tab)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return i, pool, tab
}

// lambdaVal builds the flat 4-element runtime lambda value
// (kind fenv params body) directly, the shape expand/scope.go's
// make-lambda rewrite produces, bypassing expansion entirely so these
// tests can drive applyLambda in isolation.
func lambdaVal(tab *symtab.Table, pool *value.Pool, kind string, fenv, params, body *value.Value) *value.Value {
	return list(pool, tab.Intern(kind), fenv, params, body)
}

// TestLexicalCaptureSnapshotsValueAtConstruction exercises the S2 scenario
// from spec §8: a captured variable's value is frozen at the point `cap`
// would have run, immune to later mutation of the same global.
func TestLexicalCaptureSnapshotsValueAtConstruction(t *testing.T) {
	i, pool, tab := newTestInterp(t)
	x := tab.Intern("x")
	x.Sym.Binding().Val = value.Int(42)

	captured := value.NewCaptured(pool, value.Clone(x.Sym.Binding().Val))
	fenv := list(pool, value.NewCons(pool, x, captured))

	// Mutate the "outer" binding after capture is taken.
	x.Sym.Binding().Val = value.Int(999)

	body := list(pool, x) // body is just the bare symbol reference
	inner := lambdaVal(tab, pool, "fn", fenv, value.Nil, body)

	if err := i.Apply(value.ModeSingle, inner, value.Nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := i.PopArg()
	if got.Kind != value.KindInt || got.Int != 42 {
		t.Fatalf("got %v, want captured value 42", value.Sprint(got))
	}
	if x.Sym.Binding().Val.Int != 999 {
		t.Fatalf("outer binding corrupted by capture/application")
	}
}

// TestApplyLambdaRestoresShadowedParamBinding exercises the "Lambda
// protocol idempotence" property from spec §8: after a call returns, the
// global shadowed by a parameter holds its pre-call value again.
func TestApplyLambdaRestoresShadowedParamBinding(t *testing.T) {
	i, pool, tab := newTestInterp(t)
	y := tab.Intern("y")
	y.Sym.Binding().Val = value.Int(7)

	params := list(pool, y)
	body := list(pool, y)
	fn := lambdaVal(tab, pool, "fn", value.Nil, params, body)

	args := list(pool, value.Int(100))
	if err := i.Apply(value.ModeSingle, fn, args); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := i.PopArg()
	if got.Kind != value.KindInt || got.Int != 100 {
		t.Fatalf("got %v, want 100", value.Sprint(got))
	}
	if y.Sym.Binding().Val.Int != 7 {
		t.Fatalf("y binding = %v after call, want restored to 7", value.Sprint(y.Sym.Binding().Val))
	}
}

// TestApplyLambdaRestParamCollectsOverflow checks that arguments beyond the
// declared named parameters land in the `&`-tail rest parameter as a
// proper list, in order.
func TestApplyLambdaRestParamCollectsOverflow(t *testing.T) {
	i, pool, tab := newTestInterp(t)
	a := tab.Intern("a")
	rest := tab.Intern("rest")

	params := value.NewCons(pool, a, rest) // (a & rest): dotted tail
	body := list(pool, rest)
	fn := lambdaVal(tab, pool, "fn", value.Nil, params, body)

	args := list(pool, value.Int(1), value.Int(2), value.Int(3), value.Int(4))
	if err := i.Apply(value.ModeSingle, fn, args); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := i.PopArg()
	elems, _ := listToSlice(got)
	if len(elems) != 3 || elems[0].Int != 2 || elems[1].Int != 3 || elems[2].Int != 4 {
		t.Fatalf("rest = %v, want (2 3 4)", value.Sprint(got))
	}
}

// TestReturnEndsEnclosingLambda checks that a Return control-transfer
// raised from the body of a fn lambda is caught by applyLambda as the
// call's own result.
func TestReturnEndsEnclosingLambda(t *testing.T) {
	i, pool, tab := newTestInterp(t)
	retSym := tab.Intern("%test-return%")
	retSym.Sym.Func = value.Prim(func(m value.Machine, mode value.Mode, args *value.Value) error {
		return newReturn(value.Int(17))
	})
	body := list(pool, list(pool, retSym), value.Int(0)) // (%test-return%) 0 -- second form never runs
	fn := lambdaVal(tab, pool, "fn", value.Nil, value.Nil, body)

	if err := i.Apply(value.ModeSingle, fn, value.Nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := i.PopArg()
	if got.Kind != value.KindInt || got.Int != 17 {
		t.Fatalf("got %v, want 17", value.Sprint(got))
	}
}

// TestBreakEscapesFnBoundaryAsError checks the Open Question resolution
// (DESIGN.md): break/continue escaping a true fn call boundary becomes an
// ordinary error, not a loop signal any enclosing while can catch.
func TestBreakEscapesFnBoundaryAsError(t *testing.T) {
	i, pool, tab := newTestInterp(t)
	brk := tab.Intern("%test-break%")
	brk.Sym.Func = value.Prim(func(m value.Machine, mode value.Mode, args *value.Value) error {
		return newBreak(value.Nil)
	})
	body := list(pool, list(pool, brk))
	fn := lambdaVal(tab, pool, "fn", value.Nil, value.Nil, body)

	err := i.Apply(value.ModeSingle, fn, value.Nil)
	if err == nil {
		t.Fatalf("expected an error, got nil")
	}
	if _, isLoop := isLoopSignal(err); isLoop {
		t.Fatalf("break escaped fn boundary as a raw loop signal, want a converted error")
	}
}

// TestBreakTransparentThroughDynamic checks that a dynamic lambda, unlike
// fn, lets Break/Continue propagate to its caller untouched.
func TestBreakTransparentThroughDynamic(t *testing.T) {
	i, pool, tab := newTestInterp(t)
	brk := tab.Intern("%test-break2%")
	brk.Sym.Func = value.Prim(func(m value.Machine, mode value.Mode, args *value.Value) error {
		return newBreak(value.Nil)
	})
	body := list(pool, list(pool, brk))
	dyn := lambdaVal(tab, pool, "dynamic", value.Nil, value.Nil, body)

	err := i.Apply(value.ModeSingle, dyn, value.Nil)
	kind, isLoop := isLoopSignal(err)
	if !isLoop || kind != ctrlBreak {
		t.Fatalf("expected a raw ctrlBreak signal to propagate, got %v", err)
	}
}
