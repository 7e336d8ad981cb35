package value

import "reflect"

// Mode is the evaluator hint threaded through every Eval call (spec §4.6).
// Kept as a first-class enum per spec §9's redesign note rather than an
// out-of-band flag stack.
type Mode uint8

const (
	// ModeNone is the default; treated as ModeSingle by most forms.
	ModeNone Mode = iota
	// ModeSingle: caller expects exactly one value.
	ModeSingle
	// ModeMulti: caller accepts a spliced sequence terminated by MultiDone.
	ModeMulti
	// ModeSet: the form is an l-value; install SetVal and return the
	// previous value.
	ModeSet
	// ModeDoMulti: "not last statement" variant of ModeMulti inside a
	// sequence.
	ModeDoMulti
	// ModeDoSet: "not last statement" variant of ModeSet inside a sequence.
	ModeDoSet
)

// ForSpecialForm normalizes ModeNone to ModeSingle; every other mode passes
// through unchanged. Mirrors the original interpreter's
// Mode::for_special_form.
func (m Mode) ForSpecialForm() Mode {
	if m == ModeNone {
		return ModeSingle
	}
	return m
}

// ForProgn derives the mode used for all but the last statement of a
// sequence: a caller's Multi/Set context degrades to its "Do" variant, any
// other mode to ModeSingle. Forms that splice in ModeMulti also splice in
// ModeDoMulti, and a bare symbol treats ModeDoSet like ModeSet.
func (m Mode) ForProgn() Mode {
	switch m {
	case ModeMulti:
		return ModeDoMulti
	case ModeSet:
		return ModeDoSet
	default:
		return ModeSingle
	}
}

// ForReturn derives the mode used for the last statement of a sequence,
// undoing ForProgn's degradation so the sequence's result is produced in
// the caller's real mode.
func (m Mode) ForReturn() Mode {
	switch m {
	case ModeDoMulti:
		return ModeMulti
	case ModeDoSet:
		return ModeSet
	default:
		return ModeSingle
	}
}

// Primitive is a built-in function pointer (spec §3's "primitive" kind). It
// receives the machine it's executing under, the caller's mode, and the
// raw (unevaluated) argument list; it is responsible for evaluating its own
// operands according to its own calling convention.
type Primitive func(m Machine, mode Mode, args *Value) error

func samePrimitive(a, b Primitive) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// Machine is the minimal surface of the evaluator that a Primitive needs:
// the three working stacks, the set_val scratch slot, recursive
// evaluation/application, the symbol table and the value pool. eval.Interp
// implements it; keeping the interface here (rather than in package eval)
// lets Value/Symbol/Primitive be defined without eval importing value in a
// cycle.
type Machine interface {
	// Eval evaluates ast under mode, pushing its result(s) onto the
	// argument stack per spec §4.6.
	Eval(mode Mode, ast *Value) error
	// Apply invokes fn (a primitive, lambda cons, or dict) against the raw
	// argument forms args, per spec §4.6/§4.7.
	Apply(mode Mode, fn *Value, args *Value) error

	// ApplyMacro invokes a (mac params body...) function value against the
	// literal, unevaluated argument forms rawArgs (spec §4.4): parameters
	// are bound directly to the raw AST nodes rather than their evaluated
	// results. It returns the macro's single replacement form.
	ApplyMacro(fn *Value, rawArgs *Value) (*Value, error)

	// PushArg/PopArg/ArgLen/TruncateArgs manipulate the argument stack.
	PushArg(v *Value)
	PopArg() *Value
	ArgLen() int
	TruncateArgs(n int)

	// PushRest/Rest/RestCap manipulate the per-frame rest/vararg storage.
	PushRest(v *Value)
	Rest() []*Value
	TruncateRest(n int)
	RestCap() int
	SetRestCap(n int)

	// SwapRestAt installs v at the 0-based position idx of the current
	// frame's rest storage, returning the previous value there (owned) and
	// true; reports false without modifying anything if idx is out of
	// range. Backs the `arg` built-in's Set-mode swap.
	SwapRestAt(idx int, v *Value) (*Value, bool)

	// DropRestFront removes and returns (owned) the first element of the
	// current frame's rest storage, or reports false if it is empty. Backs
	// the `shift` built-in.
	DropRestFront() (*Value, bool)

	// SetVal/SetSetVal manipulate the l-value scratch slot (spec §4.7).
	SetVal() *Value
	SetSetVal(v *Value)

	// Intern returns the interned symbol value for name.
	Intern(name string) *Value
	// Pool returns the value pool backing this machine's allocations.
	Pool() *Pool

	// Raise builds a *LangError of the given kind via Raisef-style
	// formatting, used by primitives that need to originate a language
	// error without importing package eval's concrete error type.
	Raise(kind, format string, args ...interface{}) error

	// Return/ReturnFail/Break/BreakFail/Continue construct the non-local
	// control-transfer exceptions spec §4.9 names (return/break/continue),
	// threaded back up through ordinary Go error returns until a matching
	// lambda or loop boundary catches them. Kept on Machine rather than a
	// concrete type in package value so the transfer's internal shape stays
	// an eval-package implementation detail.
	Return(v *Value) error
	ReturnFail(v *Value) error
	Break(v *Value) error
	BreakFail(v *Value) error
	Continue() error

	// IsControlTransfer reports whether err is one of the five transfers
	// above, as opposed to a raised language error: with-handler must let
	// these propagate rather than catching them (spec §4.9's "NOT errors").
	IsControlTransfer(err error) bool

	// ClassifyLoop reports whether err is a Break/BreakFail/Continue destined
	// for the nearest enclosing loop, and for Break, whether it is the fail
	// variant, letting a `while` built-in decide its own result without
	// needing to see the transfer's concrete type.
	ClassifyLoop(err error) (isLoop, isBreak, isFail bool)

	// LoopPayload returns the value carried by a Break/BreakFail transfer
	// (NIL for Continue, which carries none), transferring its ownership to
	// the caller. Only meaningful when ClassifyLoop reported isLoop.
	LoopPayload(err error) *Value

	// ExpandArgs implements the expand built-in's brace/glob argument
	// expansion protocol (spec §4.10), turning a raw argument spine into
	// its fully expanded list of output words. Exposed on Machine (rather
	// than left as an eval.Interp-only method) so package builtins' expand
	// primitive can reach it without importing package eval.
	ExpandArgs(mode Mode, argForms *Value) ([]string, error)
}
