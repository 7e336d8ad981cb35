package reader

import (
	"io"
	"testing"

	"github.com/kestrel-lang/kestrel/symtab"
	"github.com/kestrel-lang/kestrel/value"
)

func mustParseOne(t *testing.T, src string) *value.Value {
	t.Helper()
	pool := value.NewPool()
	tab := symtab.New()
	p := NewFromString(pool, tab.Intern, src)
	form, err := p.Next()
	if err != nil {
		t.Fatalf("Next(%q) error: %v", src, err)
	}
	return form
}

func TestParseIntegers(t *testing.T) {
	cases := map[string]int64{
		"0":   0,
		"42":  42,
		"-7":  -7,
		"-1":  -1,
	}
	for src, want := range cases {
		form := mustParseOne(t, src)
		if form.Kind != value.KindInt || form.Int != want {
			t.Errorf("parse(%q) = %#v, want integer %d", src, form, want)
		}
	}
}

func TestParseLeadingZeroIsSymbol(t *testing.T) {
	form := mustParseOne(t, "007")
	if form.Kind != value.KindSym {
		t.Fatalf("parse(007) = %#v, want symbol", form)
	}
}

func TestParseList(t *testing.T) {
	form := mustParseOne(t, "(1 2 3)")
	if form.Kind != value.KindCons {
		t.Fatalf("parse list: got %#v", form)
	}
	var got []int64
	for cur := form; !value.IsNil(cur); cur = cur.Cons.Cdr {
		got = append(got, cur.Cons.Car.Int)
	}
	want := []int64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestParseDottedTail(t *testing.T) {
	form := mustParseOne(t, "(1 2 & 3)")
	if form.Kind != value.KindCons || form.Cons.Car.Int != 1 {
		t.Fatalf("unexpected shape: %#v", form)
	}
	rest := form.Cons.Cdr
	if rest.Kind != value.KindCons || rest.Cons.Car.Int != 2 {
		t.Fatalf("unexpected rest: %#v", rest)
	}
	if rest.Cons.Cdr.Kind != value.KindInt || rest.Cons.Cdr.Int != 3 {
		t.Fatalf("unexpected tail: %#v", rest.Cons.Cdr)
	}
}

func TestParseString(t *testing.T) {
	form := mustParseOne(t, `'it''s fine'`)
	if !value.IsString(form) {
		t.Fatalf("not a string: %#v", form)
	}
	if form.Var.Name != "it's fine" {
		t.Fatalf("got %q, want %q", form.Var.Name, "it's fine")
	}
}

func TestParseQuoteSugar(t *testing.T) {
	form := mustParseOne(t, "`(a b)")
	if form.Kind != value.KindCons || form.Cons.Car.Kind != value.KindSym || form.Cons.Car.Sym.Name != "quote" {
		t.Fatalf("unexpected shape: %#v", form)
	}
}

func TestParseArgRef(t *testing.T) {
	form := mustParseOne(t, "$1")
	if form.Cons.Car.Sym.Name != "arg" || form.Cons.Cdr.Cons.Car.Int != 1 {
		t.Fatalf("unexpected shape for $1: %#v", form)
	}
	form = mustParseOne(t, "$@")
	if form.Cons.Car.Sym.Name != "arg" || !value.IsNil(form.Cons.Cdr) {
		t.Fatalf("unexpected shape for $@: %#v", form)
	}
}

func TestParseComment(t *testing.T) {
	pool := value.NewPool()
	tab := symtab.New()
	p := NewFromString(pool, tab.Intern, "; a comment\n42")
	form, err := p.Next()
	if err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if form.Int != 42 {
		t.Fatalf("got %#v, want 42", form)
	}
}

func TestParseEOF(t *testing.T) {
	pool := value.NewPool()
	tab := symtab.New()
	p := NewFromString(pool, tab.Intern, "   ")
	_, err := p.Next()
	if err != io.EOF {
		t.Fatalf("got %v, want io.EOF", err)
	}
}

func TestPrintParseRoundTrip(t *testing.T) {
	pool := value.NewPool()
	tab := symtab.New()
	for _, src := range []string{"42", "-7", "(1 2 3)", "(a b (c d))"} {
		form := mustParseOne(t, src)
		printed := value.Sprint(form)
		p2 := NewFromString(pool, tab.Intern, printed)
		reparsed, err := p2.Next()
		if err != nil {
			t.Fatalf("reparse(%q) error: %v", printed, err)
		}
		if value.Sprint(reparsed) != printed {
			t.Fatalf("round trip mismatch: %q -> %q -> %q", src, printed, value.Sprint(reparsed))
		}
	}
}
