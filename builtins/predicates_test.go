package builtins

import (
	"testing"

	"github.com/kestrel-lang/kestrel/value"
)

func TestTypePredicates(t *testing.T) {
	i, pool, tab := newTestInterp(t)

	quoted := func(v *value.Value) *value.Value {
		return list(pool, tab.Intern("quote"), v)
	}
	truthy := func(name string, arg *value.Value) bool {
		got := evalOne(t, i, call(pool, tab, name, arg))
		ok := !value.IsNil(got)
		value.Drop(pool, got)
		return ok
	}

	if !truthy("is-integer", value.Int(3)) {
		t.Fatalf("3 should be is-integer")
	}
	if truthy("is-integer", value.NewString(pool, "3")) {
		t.Fatalf("a string should not be is-integer")
	}
	if !truthy("is-string", value.NewString(pool, "hi")) {
		t.Fatalf("a string value should be is-string")
	}
	if !truthy("is-list", quoted(list(pool, value.Int(1), value.Int(2)))) {
		t.Fatalf("a cons list should be is-list")
	}
	if !truthy("is-list", value.Nil) {
		t.Fatalf("Nil should count as is-list (the empty list)")
	}
	if !truthy("is-atom", value.Int(1)) {
		t.Fatalf("an integer should be is-atom")
	}
	if truthy("is-atom", quoted(list(pool, value.Int(1)))) {
		t.Fatalf("a cons list should not be is-atom")
	}
	if !truthy("is-symbol", quoted(tab.Intern("foo"))) {
		t.Fatalf("an interned symbol should be is-symbol")
	}
}
