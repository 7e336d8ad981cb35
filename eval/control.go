package eval

import "github.com/kestrel-lang/kestrel/value"

// ctrlKind discriminates a control-transfer exception (spec §4.9): a
// non-local exit threaded up through ordinary Go error returns rather than
// a second return channel, the same way vm/core.go's Run() recovers a
// panic into a wrapped error at the top of its loop rather than growing a
// second signalling path through every opcode case.
type ctrlKind uint8

const (
	ctrlReturn ctrlKind = iota
	ctrlReturnFail
	ctrlBreak
	ctrlBreakFail
	ctrlContinue
	ctrlOther
)

// ctrlTransfer is the concrete error type carrying a control-transfer
// exception's payload up through Eval/Apply's call chain until a matching
// handler (a loop for Break/Continue, a lambda body for Return, an error
// handler for Other) catches it.
type ctrlTransfer struct {
	kind    ctrlKind
	payload *value.Value // carried value for Return/ReturnFail/Break/BreakFail
	cause   error        // wrapped error for Other
}

func (c *ctrlTransfer) Error() string {
	switch c.kind {
	case ctrlReturn:
		return "return"
	case ctrlReturnFail:
		return "return-fail"
	case ctrlBreak:
		return "break"
	case ctrlBreakFail:
		return "break-fail"
	case ctrlContinue:
		return "continue"
	default:
		if c.cause != nil {
			return c.cause.Error()
		}
		return "other"
	}
}

// Unwrap exposes the wrapped cause of an Other transfer so errors.Is/As
// still see through it to the underlying *value.LangError or I/O error.
func (c *ctrlTransfer) Unwrap() error { return c.cause }

func newReturn(v *value.Value) error     { return &ctrlTransfer{kind: ctrlReturn, payload: v} }
func newReturnFail(v *value.Value) error { return &ctrlTransfer{kind: ctrlReturnFail, payload: v} }
func newBreak(v *value.Value) error      { return &ctrlTransfer{kind: ctrlBreak, payload: v} }
func newBreakFail(v *value.Value) error  { return &ctrlTransfer{kind: ctrlBreakFail, payload: v} }
func newContinue() error                 { return &ctrlTransfer{kind: ctrlContinue} }
func newOther(cause error) error         { return &ctrlTransfer{kind: ctrlOther, cause: cause} }

// asCtrl reports whether err is a control-transfer exception of kind k,
// returning its payload (nil for payload-less kinds).
func asCtrl(err error, k ctrlKind) (*value.Value, bool) {
	c, ok := err.(*ctrlTransfer)
	if !ok || c.kind != k {
		return nil, false
	}
	return c.payload, true
}

// isLoopSignal reports whether err is a Break/BreakFail/Continue destined
// for the nearest enclosing loop, along with its kind, from which loop
// builtins (spec §4.9) set their own result.
func isLoopSignal(err error) (kind ctrlKind, isLoop bool) {
	c, ok := err.(*ctrlTransfer)
	if !ok {
		return 0, false
	}
	switch c.kind {
	case ctrlBreak, ctrlBreakFail, ctrlContinue:
		return c.kind, true
	}
	return 0, false
}

// --- value.Machine control-transfer surface, so package builtins can
// implement if/while/return/break/continue/with-handler without importing
// package eval's unexported ctrlTransfer type. ---

func (i *Interp) Return(v *value.Value) error     { return newReturn(v) }
func (i *Interp) ReturnFail(v *value.Value) error { return newReturnFail(v) }
func (i *Interp) Break(v *value.Value) error      { return newBreak(v) }
func (i *Interp) BreakFail(v *value.Value) error  { return newBreakFail(v) }
func (i *Interp) Continue() error                 { return newContinue() }

func (i *Interp) IsControlTransfer(err error) bool {
	c, ok := err.(*ctrlTransfer)
	return ok && c.kind != ctrlOther
}

func (i *Interp) ClassifyLoop(err error) (isLoop, isBreak, isFail bool) {
	kind, ok := isLoopSignal(err)
	if !ok {
		return false, false, false
	}
	switch kind {
	case ctrlBreak:
		return true, true, false
	case ctrlBreakFail:
		return true, true, true
	case ctrlContinue:
		return true, false, false
	}
	return false, false, false
}

func (i *Interp) LoopPayload(err error) *value.Value {
	c, ok := err.(*ctrlTransfer)
	if !ok || c.payload == nil {
		return value.Nil
	}
	return c.payload
}
