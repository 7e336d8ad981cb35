package expand

import (
	"testing"

	"github.com/kestrel-lang/kestrel/symtab"
	"github.com/kestrel-lang/kestrel/value"
)

// stubMachine implements value.Machine with just enough behaviour to drive
// the expander's tests: ApplyMacro runs a fixed Go callback, and Intern/Pool
// delegate to the real symbol table and pool, and SetRestCap/SetSetVal are
// no-ops. Every other method panics if reached, since expansion never
// calls them.
type stubMachine struct {
	pool    *value.Pool
	tab     *symtab.Table
	applied func(fn, rawArgs *value.Value) (*value.Value, error)
}

func (m *stubMachine) Eval(value.Mode, *value.Value) error          { panic("not used by expand tests") }
func (m *stubMachine) Apply(value.Mode, *value.Value, *value.Value) error {
	panic("not used by expand tests")
}
func (m *stubMachine) ApplyMacro(fn *value.Value, rawArgs *value.Value) (*value.Value, error) {
	return m.applied(fn, rawArgs)
}
func (m *stubMachine) PushArg(*value.Value)      { panic("not used by expand tests") }
func (m *stubMachine) PopArg() *value.Value      { panic("not used by expand tests") }
func (m *stubMachine) ArgLen() int               { panic("not used by expand tests") }
func (m *stubMachine) TruncateArgs(int)          { panic("not used by expand tests") }
func (m *stubMachine) PushRest(*value.Value)     { panic("not used by expand tests") }
func (m *stubMachine) Rest() []*value.Value      { panic("not used by expand tests") }
func (m *stubMachine) TruncateRest(int)          { panic("not used by expand tests") }
func (m *stubMachine) RestCap() int              { panic("not used by expand tests") }
func (m *stubMachine) SetRestCap(int)            {}
func (m *stubMachine) SetVal() *value.Value      { panic("not used by expand tests") }
func (m *stubMachine) SetSetVal(*value.Value)    {}
func (m *stubMachine) Intern(name string) *value.Value { return m.tab.Intern(name) }
func (m *stubMachine) Pool() *value.Pool          { return m.pool }
func (m *stubMachine) Raise(kind, format string, args ...interface{}) error {
	return value.Raise(value.ErrorKind(kind), format, args...)
}
func (m *stubMachine) SwapRestAt(int, *value.Value) (*value.Value, bool) {
	panic("not used by expand tests")
}
func (m *stubMachine) DropRestFront() (*value.Value, bool) {
	panic("not used by expand tests")
}
func (m *stubMachine) Return(*value.Value) error     { panic("not used by expand tests") }
func (m *stubMachine) ReturnFail(*value.Value) error { panic("not used by expand tests") }
func (m *stubMachine) Break(*value.Value) error      { panic("not used by expand tests") }
func (m *stubMachine) BreakFail(*value.Value) error  { panic("not used by expand tests") }
func (m *stubMachine) Continue() error                { panic("not used by expand tests") }
func (m *stubMachine) IsControlTransfer(error) bool    { panic("not used by expand tests") }
func (m *stubMachine) ClassifyLoop(error) (bool, bool, bool) {
	panic("not used by expand tests")
}
func (m *stubMachine) LoopPayload(error) *value.Value { panic("not used by expand tests") }
func (m *stubMachine) ExpandArgs(value.Mode, *value.Value) ([]string, error) {
	panic("not used by expand tests")
}

func newTestExpander(t *testing.T, applied func(fn, rawArgs *value.Value) (*value.Value, error)) (*Expander, *value.Pool, *symtab.Table) {
	t.Helper()
	pool := value.NewPool()
	tab := symtab.New()
	m := &stubMachine{pool: pool, tab: tab, applied: applied}
	return New(pool, tab.Intern, m), pool, tab
}

func list(pool *value.Pool, elems ...*value.Value) *value.Value {
	result := value.Nil
	for i := len(elems) - 1; i >= 0; i-- {
		result = value.NewCons(pool, elems[i], result)
	}
	return result
}

func TestExpandMacroReplacesCallSite(t *testing.T) {
	applied := func(fn, rawArgs *value.Value) (*value.Value, error) {
		return value.Int(99), nil
	}
	e, pool, tab := newTestExpander(t, applied)
	macroName := tab.Intern("twice")
	macroName.Sym.Func = list(pool, tab.Intern("mac"), value.Nil)

	form := list(pool, macroName, value.Int(1))
	got, err := e.Expand(form)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got.Kind != value.KindInt || got.Int != 99 {
		t.Fatalf("got %#v, want integer 99", got)
	}
}

func TestExpandMacroNestedInArguments(t *testing.T) {
	calls := 0
	applied := func(fn, rawArgs *value.Value) (*value.Value, error) {
		calls++
		return value.Int(7), nil
	}
	e, pool, tab := newTestExpander(t, applied)
	macroName := tab.Intern("m")
	macroName.Sym.Func = list(pool, tab.Intern("mac"), value.Nil)

	inner := list(pool, macroName)
	form := list(pool, tab.Intern("cons"), inner, value.Int(2))
	got, err := e.Expand(form)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if calls != 1 {
		t.Fatalf("macro applied %d times, want 1", calls)
	}
	if got.Cons.Car.Sym.Name != "cons" || got.Cons.Cdr.Cons.Car.Int != 7 {
		t.Fatalf("unexpected shape: %s", value.Sprint(got))
	}
}

func TestExpandSkipsQuotedSubtree(t *testing.T) {
	applied := func(fn, rawArgs *value.Value) (*value.Value, error) {
		t.Fatalf("macro should not be applied inside quote")
		return nil, nil
	}
	e, pool, tab := newTestExpander(t, applied)
	macroName := tab.Intern("m")
	macroName.Sym.Func = list(pool, tab.Intern("mac"), value.Nil)

	quoted := list(pool, tab.Intern("quote"), list(pool, macroName))
	got, err := e.Expand(quoted)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got.Cons.Car.Sym.Name != "quote" {
		t.Fatalf("unexpected shape: %s", value.Sprint(got))
	}
}

func TestScopeAnalysisTopLevelFnCapturesNothing(t *testing.T) {
	e, pool, tab := newTestExpander(t, nil)
	// (fn (x) (cons x y))
	params := list(pool, tab.Intern("x"))
	body := list(pool, tab.Intern("cons"), tab.Intern("x"), tab.Intern("y"))
	form := list(pool, tab.Intern("fn"), params, body)

	got, err := e.Expand(form)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got.Cons.Car.Sym.Name != "make-lambda" {
		t.Fatalf("head = %s, want make-lambda", value.Sprint(got))
	}
	quotedKind := got.Cons.Cdr.Cons.Car
	if quotedKind.Cons.Cdr.Cons.Car.Sym.Name != "fn" {
		t.Fatalf("kind = %s, want fn", value.Sprint(quotedKind))
	}
	// top-level form has no enclosing defVars, so "y" is never tracked and
	// the capture list is empty regardless of its free-ness.
	fenv := got.Cons.Cdr.Cons.Cdr.Cons.Car
	if fenv.Cons.Car.Sym.Name != "cap" {
		t.Fatalf("fenv head = %v, want cap", value.Sprint(fenv))
	}
	if !value.IsNil(fenv.Cons.Cdr) {
		t.Fatalf("expected no captures at top level, got %s", value.Sprint(fenv))
	}
	quotedParams := got.Cons.Cdr.Cons.Cdr.Cons.Cdr.Cons.Car
	if quotedParams.Cons.Car.Sym.Name != "quote" {
		t.Fatalf("expected quoted params form, got %s", value.Sprint(quotedParams))
	}
	paramsOut := quotedParams.Cons.Cdr.Cons.Car
	if paramsOut.Cons.Car.Sym.Name != "x" {
		t.Fatalf("unexpected params: %s", value.Sprint(paramsOut))
	}
}

func TestScopeAnalysisCapturesEnclosingParam(t *testing.T) {
	e, pool, tab := newTestExpander(t, nil)
	// (fn (x) (fn (y) (cons x y)))
	innerParams := list(pool, tab.Intern("y"))
	innerBody := list(pool, tab.Intern("cons"), tab.Intern("x"), tab.Intern("y"))
	inner := list(pool, tab.Intern("fn"), innerParams, innerBody)
	outerParams := list(pool, tab.Intern("x"))
	outer := list(pool, tab.Intern("fn"), outerParams, inner)

	got, err := e.Expand(outer)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	// outer's body-list is the fourth argument of the outer make-lambda
	// call, quoted; its sole element is inner's rewritten make-lambda call.
	outerQuotedBody := got.Cons.Cdr.Cons.Cdr.Cons.Cdr.Cons.Cdr.Cons.Car
	outerBodyList := outerQuotedBody.Cons.Cdr.Cons.Car
	innerRewritten := outerBodyList.Cons.Car
	if innerRewritten.Cons.Car.Sym.Name != "make-lambda" {
		t.Fatalf("inner head = %s, want make-lambda", value.Sprint(innerRewritten))
	}
	innerFenv := innerRewritten.Cons.Cdr.Cons.Cdr.Cons.Car
	if innerFenv.Cons.Car.Sym.Name != "cap" {
		t.Fatalf("inner fenv head = %s", value.Sprint(innerFenv))
	}
	captured := innerFenv.Cons.Cdr
	if value.IsNil(captured) || captured.Cons.Car.Sym.Name != "x" {
		t.Fatalf("expected inner fn to capture x, got %s", value.Sprint(innerFenv))
	}
}

func TestScopeAnalysisDynamicNeverCaptures(t *testing.T) {
	e, pool, tab := newTestExpander(t, nil)
	params := list(pool, tab.Intern("x"))
	body := list(pool, tab.Intern("cons"), tab.Intern("x"), tab.Intern("x"))
	outerParams := list(pool, tab.Intern("z"))
	dyn := list(pool, tab.Intern("dynamic"), params, body)
	form := list(pool, tab.Intern("fn"), outerParams, dyn)

	got, err := e.Expand(form)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	outerQuotedBody := got.Cons.Cdr.Cons.Cdr.Cons.Cdr.Cons.Cdr.Cons.Car
	outerBodyList := outerQuotedBody.Cons.Cdr.Cons.Car
	dynRewritten := outerBodyList.Cons.Car
	if dynRewritten.Cons.Car.Sym.Name != "make-lambda" {
		t.Fatalf("dyn head = %s, want make-lambda", value.Sprint(dynRewritten))
	}
	dynKind := dynRewritten.Cons.Cdr.Cons.Car
	if dynKind.Cons.Cdr.Cons.Car.Sym.Name != "dynamic" {
		t.Fatalf("dyn kind = %s, want dynamic", value.Sprint(dynKind))
	}
	dynFenv := dynRewritten.Cons.Cdr.Cons.Cdr.Cons.Car
	if !value.IsNil(dynFenv) {
		t.Fatalf("dynamic lambda should have Nil fenv, got %s", value.Sprint(dynFenv))
	}
}
