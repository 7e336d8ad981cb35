package builtins

import (
	"bufio"
	"io"
	"os"
	"testing"

	"github.com/kestrel-lang/kestrel/eval"
	"github.com/kestrel-lang/kestrel/symtab"
	"github.com/kestrel-lang/kestrel/value"
)

// newIOTestInterp wires real os.Pipe endpoints as stdin/stdout so echo/
// print/show and the read-* family can be exercised end to end without
// touching the process's own standard streams.
func newIOTestInterp(t *testing.T) (*eval.Interp, *value.Pool, *symtab.Table, *os.File, *os.File) {
	t.Helper()
	inR, inW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe (stdin): %v", err)
	}
	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe (stdout): %v", err)
	}
	t.Cleanup(func() {
		inR.Close()
		inW.Close()
		outR.Close()
		outW.Close()
	})

	pool := value.NewPool()
	tab := symtab.New()
	i, err := eval.New(pool, tab, eval.WithStdin(inR), eval.WithStdout(outW), eval.WithStderr(outW))
	if err != nil {
		t.Fatalf("eval.New: %v", err)
	}
	Register(tab)
	return i, pool, tab, inW, outR
}

func TestEchoWritesToStdoutWithTrailingNewline(t *testing.T) {
	i, pool, tab, _, outR := newIOTestInterp(t)
	got := evalOne(t, i, call(pool, tab, "echo", value.NewString(pool, "hello"), value.NewString(pool, "world")))
	if !value.IsNil(got) {
		t.Fatalf("echo should push Nil, got %#v", got)
	}

	buf := make([]byte, 64)
	n := readSome(t, outR, buf)
	if string(buf[:n]) != "hello world\n" {
		t.Fatalf("echo output = %q, want %q", string(buf[:n]), "hello world\n")
	}
}

func TestPrintOmitsTrailingNewline(t *testing.T) {
	i, pool, tab, _, outR := newIOTestInterp(t)
	evalOne(t, i, call(pool, tab, "print", value.NewString(pool, "x")))
	buf := make([]byte, 64)
	n := readSome(t, outR, buf)
	if string(buf[:n]) != "x" {
		t.Fatalf("print output = %q, want %q", string(buf[:n]), "x")
	}
}

func TestReadLineFromStdin(t *testing.T) {
	i, pool, tab, inW, _ := newIOTestInterp(t)
	if _, err := inW.WriteString("first\nsecond\n"); err != nil {
		t.Fatalf("write stdin: %v", err)
	}

	got := evalOne(t, i, call(pool, tab, "read-line"))
	if textOf(got) != "first" {
		t.Fatalf("read-line = %q, want %q", textOf(got), "first")
	}
	value.Drop(pool, got)

	got = evalOne(t, i, call(pool, tab, "read-line"))
	if textOf(got) != "second" {
		t.Fatalf("read-line = %q, want %q", textOf(got), "second")
	}
}

func TestCharsWrapsInMemoryText(t *testing.T) {
	i, pool, tab, _, _ := newIOTestInterp(t)

	charsForm := call(pool, tab, "chars", list(pool, tab.Intern("quote"), value.NewString(pool, "ab")))
	cs := evalOne(t, i, charsForm)
	if cs.Kind != value.KindFat || cs.Fat.Kind != value.FatChars {
		t.Fatalf("chars should produce a FatChars value, got %#v", cs)
	}
	r, err := cs.Fat.Chars.Next()
	if err != nil || r != 'a' {
		t.Fatalf("first char = %q, err %v; want 'a'", r, err)
	}
}

func TestReadbReadsOneByteAtATime(t *testing.T) {
	i, pool, tab, inW, _ := newIOTestInterp(t)
	if _, err := inW.Write([]byte{0x41, 0x42}); err != nil {
		t.Fatalf("write stdin: %v", err)
	}

	got := evalOne(t, i, call(pool, tab, "readb"))
	if got.Kind != value.KindInt || got.Int != 0x41 {
		t.Fatalf("readb = %#v, want Int(0x41)", got)
	}

	got = evalOne(t, i, call(pool, tab, "readb"))
	if got.Kind != value.KindInt || got.Int != 0x42 {
		t.Fatalf("readb = %#v, want Int(0x42)", got)
	}
}

func TestWriteEmitsRawBytes(t *testing.T) {
	i, pool, tab, _, outR := newIOTestInterp(t)
	got := evalOne(t, i, call(pool, tab, "write", value.Int(0x68), value.Int(0x69)))
	if !value.IsNil(got) {
		t.Fatalf("write should push Nil, got %#v", got)
	}
	buf := make([]byte, 64)
	n := readSome(t, outR, buf)
	if string(buf[:n]) != "hi" {
		t.Fatalf("write output = %q, want %q", string(buf[:n]), "hi")
	}
}

func TestWriteRejectsOutOfRangeByte(t *testing.T) {
	i, pool, tab, _, _ := newIOTestInterp(t)
	form := call(pool, tab, "write", value.Int(256))
	if err := i.Eval(value.ModeSingle, form); err == nil {
		t.Fatalf("expected an error for a byte value out of range")
	}
}

// readSome reads whatever is immediately available on r into buf, treating
// an empty read from a pipe still holding its write end open as "nothing
// more written yet" rather than an error.
func readSome(t *testing.T, r *os.File, buf []byte) int {
	t.Helper()
	br := bufio.NewReader(r)
	n, err := br.Read(buf)
	if err != nil && err != io.EOF {
		t.Fatalf("read: %v", err)
	}
	return n
}
