package value

import "fmt"

// ErrorKind names one of the raised-error labels from spec §7.
type ErrorKind string

// Error kinds, exactly as enumerated in spec §7.
const (
	ErrType          ErrorKind = "type-error"
	ErrArgument      ErrorKind = "argument-error"
	ErrIO            ErrorKind = "io-error"
	ErrSyscall       ErrorKind = "systemcall-error"
	ErrRegex         ErrorKind = "regex-error"
	ErrContext       ErrorKind = "context-error"
	ErrGlob          ErrorKind = "glob-error"
	ErrEncode        ErrorKind = "encode-error"
	ErrParse         ErrorKind = "parse-error"
	ErrZeroDivision  ErrorKind = "zero-division-error"
	ErrMissingValues ErrorKind = "missing-values-error"
)

// LangError is a raised language-level error: a {label, message} pair
// (spec §7). It satisfies the standard error interface so it can flow
// through ordinary Go error returns alongside control-transfer exceptions.
type LangError struct {
	Kind    ErrorKind
	Message string
}

func (e *LangError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Raise builds a *LangError of the given kind with a formatted message.
func Raise(kind ErrorKind, format string, args ...interface{}) error {
	return &LangError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// AsPair renders a LangError as the two-element (label message) list the
// language's error handlers and top-level diagnostics expect (spec §6/§7).
func (e *LangError) AsPair(pool *Pool, intern func(string) *Value) *Value {
	label := intern(string(e.Kind))
	msg := NewString(pool, e.Message)
	return NewCons(pool, label, NewCons(pool, msg, Nil))
}
