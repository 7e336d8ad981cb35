package builtins

import (
	"testing"

	"github.com/kestrel-lang/kestrel/value"
)

func TestArithBasicOps(t *testing.T) {
	i, pool, tab := newTestInterp(t)

	cases := []struct {
		name string
		args []int64
		want int64
	}{
		{"+", []int64{1, 2, 3}, 6},
		{"-", []int64{10, 1, 2}, 7},
		{"-", []int64{5}, -5},
		{"*", []int64{2, 3, 4}, 24},
		{"%", []int64{7, 3}, 1},
	}
	for _, c := range cases {
		args := make([]*value.Value, len(c.args))
		for idx, n := range c.args {
			args[idx] = value.Int(n)
		}
		got := evalOne(t, i, call(pool, tab, c.name, args...))
		if got.Kind != value.KindInt || got.Int != c.want {
			t.Fatalf("%s%v = %#v, want %d", c.name, c.args, got, c.want)
		}
		value.Drop(pool, got)
	}
}

func TestDivByZeroRaises(t *testing.T) {
	i, pool, tab := newTestInterp(t)
	form := call(pool, tab, "/", value.Int(1), value.Int(0))
	if err := i.Eval(value.ModeSingle, form); err == nil {
		t.Fatalf("expected division-by-zero error")
	}
}

func TestComparisonChain(t *testing.T) {
	i, pool, tab := newTestInterp(t)

	got := evalOne(t, i, call(pool, tab, "<", value.Int(1), value.Int(2), value.Int(3)))
	if got.Kind != value.KindInt || got.Int != 3 {
		t.Fatalf("1 < 2 < 3 = %#v, want 3 (last value)", got)
	}
	value.Drop(pool, got)

	got = evalOne(t, i, call(pool, tab, "<", value.Int(3), value.Int(1)))
	if !value.IsNil(got) {
		t.Fatalf("3 < 1 = %#v, want Nil", got)
	}
}

func TestSameComparesTextualRendering(t *testing.T) {
	i, pool, tab := newTestInterp(t)
	got := evalOne(t, i, call(pool, tab, "=", value.NewString(pool, "a"), value.NewString(pool, "a")))
	if value.IsNil(got) {
		t.Fatalf("equal strings should satisfy =")
	}
	value.Drop(pool, got)

	got = evalOne(t, i, call(pool, tab, "=", value.Int(1), value.Int(2)))
	if !value.IsNil(got) {
		t.Fatalf("1 = 2 should be Nil")
	}
}

func TestIsIdentityNotValue(t *testing.T) {
	i, pool, tab := newTestInterp(t)
	// Two distinct string values with the same text are `=` but not `is`.
	a := value.NewString(pool, "x")
	b := value.NewString(pool, "x")
	got := evalOne(t, i, list(pool, tab.Intern("is"), list(pool, tab.Intern("quote"), a), list(pool, tab.Intern("quote"), b)))
	if !value.IsNil(got) {
		t.Fatalf("distinct string values should not be `is`")
	}

	got = evalOne(t, i, call(pool, tab, "is", value.Int(5), value.Int(5)))
	if value.IsNil(got) {
		t.Fatalf("equal integers should be `is`")
	}
	value.Drop(pool, got)
}

func TestInMembership(t *testing.T) {
	i, pool, tab := newTestInterp(t)
	items := list(pool, value.Int(1), value.Int(2), value.Int(3))
	form := list(pool, tab.Intern("in"), value.Int(2), list(pool, tab.Intern("quote"), items))
	got := evalOne(t, i, form)
	if value.IsNil(got) {
		t.Fatalf("2 should be in (1 2 3)")
	}
	value.Drop(pool, got)
}
