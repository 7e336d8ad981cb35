package builtins

import (
	"testing"

	"github.com/kestrel-lang/kestrel/eval"
	"github.com/kestrel-lang/kestrel/symtab"
	"github.com/kestrel-lang/kestrel/value"
)

// newTestInterp builds a real interpreter with every built-in registered,
// mirroring package eval's own newTestInterp (eval/lambda_test.go) but
// additionally calling Register so these tests exercise the actual
// primitives rather than a hand-written stub.
func newTestInterp(t *testing.T) (*eval.Interp, *value.Pool, *symtab.Table) {
	t.Helper()
	pool := value.NewPool()
	tab := symtab.New()
	i, err := eval.New(pool, tab)
	if err != nil {
		t.Fatalf("eval.New: %v", err)
	}
	Register(tab)
	return i, pool, tab
}

// list builds a proper cons-list from elems, the same shape eval/expand
// tests use to hand-construct call forms without going through the reader.
func list(pool *value.Pool, elems ...*value.Value) *value.Value {
	result := value.Nil
	for i := len(elems) - 1; i >= 0; i-- {
		result = value.NewCons(pool, elems[i], result)
	}
	return result
}

// call builds the (name arg1 arg2 ...) form invoking the built-in bound to
// name.
func call(pool *value.Pool, tab *symtab.Table, name string, args ...*value.Value) *value.Value {
	return list(pool, append([]*value.Value{tab.Intern(name)}, args...)...)
}

func evalOne(t *testing.T, i *eval.Interp, form *value.Value) *value.Value {
	t.Helper()
	if err := i.Eval(value.ModeSingle, form); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	return i.PopArg()
}
