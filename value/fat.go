package value

import (
	"bufio"
	"os"
)

// FatKind discriminates the payload of a Fat value (spec §3's "fat" kinds).
type FatKind uint8

const (
	FatFloat FatKind = iota
	FatFile
	FatPipeR
	FatPipeW
	FatDict
	FatCaptured
	FatBuf
	FatChars
)

func (k FatKind) String() string {
	switch k {
	case FatFloat:
		return "float"
	case FatFile:
		return "file"
	case FatPipeR:
		return "pipe-reader"
	case FatPipeW:
		return "pipe-writer"
	case FatDict:
		return "dict"
	case FatCaptured:
		return "captured"
	case FatBuf:
		return "buf"
	case FatChars:
		return "chars"
	default:
		return "invalid"
	}
}

// Fat is a refcounted value whose payload doesn't fit in the value word
// (spec §3/GLOSSARY). Exactly one payload field is meaningful, selected by
// Kind.
type Fat struct {
	rc   int32
	Kind FatKind

	Float float64        // FatFloat
	File  *os.File       // FatFile, FatPipeR, FatPipeW: the owned OS handle
	Dict  *Dict          // FatDict
	Box   *Value         // FatCaptured: the shared inner slot
	Buf   *ByteBuf       // FatBuf
	Chars *CharSource    // FatChars

	poolNext *Fat
}

// ByteBuf is a buffered byte reader over a file, pipe or in-memory string
// (spec §3's "buf" kind), used by read-line/readb style builtins.
type ByteBuf struct {
	r      *bufio.Reader
	closer func() error
}

// NewByteBuf wraps r (optionally backed by a closer, e.g. an *os.File's
// Close) as a ByteBuf.
func NewByteBuf(r *bufio.Reader, closer func() error) *ByteBuf {
	return &ByteBuf{r: r, closer: closer}
}

// Reader returns the underlying buffered reader.
func (b *ByteBuf) Reader() *bufio.Reader { return b.r }

// Close releases the underlying resource, if any.
func (b *ByteBuf) Close() error {
	if b.closer != nil {
		return b.closer()
	}
	return nil
}

// CharSource is a peekable character reader with a line counter (spec §3's
// "chars" kind), used both by the top-level reader/parser and by the
// `chars` builtin for user-level character streams.
type CharSource struct {
	r        *bufio.Reader
	line     int
	peeked   rune
	peekSize int
	hasPeek  bool
	closer   func() error
}

// NewCharSource wraps r as a CharSource starting at line 1.
func NewCharSource(r *bufio.Reader, closer func() error) *CharSource {
	return &CharSource{r: r, line: 1, closer: closer}
}

// Line returns the current 1-based line number.
func (c *CharSource) Line() int { return c.line }

// Peek returns the next rune without consuming it.
func (c *CharSource) Peek() (rune, error) {
	if !c.hasPeek {
		r, sz, err := c.r.ReadRune()
		if err != nil {
			return 0, err
		}
		c.peeked, c.peekSize, c.hasPeek = r, sz, true
	}
	return c.peeked, nil
}

// Next consumes and returns the next rune, advancing the line counter on
// newlines.
func (c *CharSource) Next() (rune, error) {
	var r rune
	var err error
	if c.hasPeek {
		r = c.peeked
		c.hasPeek = false
		err = nil
	} else {
		r, _, err = c.r.ReadRune()
	}
	if err != nil {
		return 0, err
	}
	if r == '\n' {
		c.line++
	}
	return r, nil
}

// Close releases the underlying resource, if any.
func (c *CharSource) Close() error {
	if c.closer != nil {
		return c.closer()
	}
	return nil
}
