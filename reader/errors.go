// Package reader implements the PARSER component (spec §4.3): a
// recursive-descent translator from characters, read through value's
// peekable CharSource, to value.Value ASTs. The parsing style —
// hand-written state dispatch driven by a single lookahead rune, stopping
// at the first error with its line and message — is grounded on
// asm/parser.go's Parse/parseExpr, translated from assembly-token grammar
// to the list/quote/back-quote/unquote/multi-value/arg-ref/char-lit/
// string/glob/token grammar of spec §4.3.
package reader

import "fmt"

// SyntaxError reports a malformed form at a specific line, near a specific
// character, the
// "Syntax(line, char)" error kind from spec §4.3.
type SyntaxError struct {
	Line int
	Char rune
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d near %q: %s", e.Line, e.Char, e.Msg)
}

// OtherError reports a reader-level error not tied to a specific
// character, the "Other(line, msg)" error kind from spec §4.3.
type OtherError struct {
	Line int
	Msg  string
}

func (e *OtherError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func syntaxErrorf(line int, ch rune, format string, args ...interface{}) error {
	return &SyntaxError{Line: line, Char: ch, Msg: fmt.Sprintf(format, args...)}
}

func otherErrorf(line int, format string, args ...interface{}) error {
	return &OtherError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
