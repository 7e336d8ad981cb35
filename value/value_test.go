package value

import "testing"

func TestCloneDropPreservesIdentity(t *testing.T) {
	pool := NewPool()
	s := NewString(pool, "hello")
	clone := Clone(s)
	if !Identical(s, clone) {
		t.Fatalf("clone changed identity")
	}
	Drop(pool, clone)
	if s.Var.rc != 1 {
		t.Fatalf("drop of clone left rc = %d, want 1", s.Var.rc)
	}
	Drop(pool, s)
	if s.Var.rc != 0 {
		t.Fatalf("final drop left rc = %d, want 0", s.Var.rc)
	}
}

func TestConsRefcountNetZero(t *testing.T) {
	pool := NewPool()
	const n = 8
	v := NewCons(pool, Int(1), Int(2))
	clones := make([]*Value, 0, n)
	for i := 0; i < n; i++ {
		clones = append(clones, Clone(v))
	}
	// Drop in reverse order; the net effect on the pool must be zero once
	// the last reference drops (spec §8 property: "creating N clones and
	// dropping them in any order returns zero cells to the pool").
	for i := len(clones) - 1; i >= 0; i-- {
		Drop(pool, clones[i])
	}
	if v.Cons.rc != 1 {
		t.Fatalf("rc after dropping all clones = %d, want 1 (original still alive)", v.Cons.rc)
	}
	Drop(pool, v)
}

func TestIntegerEquality(t *testing.T) {
	a, b := Int(42), Int(42)
	if !Identical(a, b) {
		t.Fatalf("equal integers should be Identical")
	}
	if Identical(a, Int(43)) {
		t.Fatalf("different integers should not be Identical")
	}
}

func TestPrintRoundTripShape(t *testing.T) {
	pool := NewPool()
	list := NewCons(pool, Int(1), NewCons(pool, NewString(pool, "a'b"), Nil))
	got := Sprint(list)
	want := "(1 'a''b')"
	if got != want {
		t.Fatalf("Sprint() = %q, want %q", got, want)
	}
}

func TestDictOrderingAndDelete(t *testing.T) {
	d := NewDict()
	d.Set("a", Int(1))
	d.Set("b", Int(2))
	d.Set("c", Int(3))
	d.Delete("b")
	got := d.Keys()
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("Keys() = %v, want [a c]", got)
	}
	if _, ok := d.Get("b"); ok {
		t.Fatalf("deleted key still present")
	}
}
