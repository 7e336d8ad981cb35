package eval

import (
	"github.com/kestrel-lang/kestrel/symtab"
	"github.com/kestrel-lang/kestrel/value"
)

// Interp is the evaluator's machine state (spec §4.6): the three working
// stacks, the set_val scratch slot, the value pool and symbol table. It
// implements value.Machine so primitives (package builtins) can drive
// evaluation and application without importing package eval themselves.
type Interp struct {
	pool *value.Pool
	tab  *symtab.Table

	args    valStack
	varSave valStack
	rest    []*restFrame

	setVal *value.Value

	// exec is the registered external-command handler (spec §4.11's
	// eval_cmd), wired by WithExec (env.go). Kept as a plain func field
	// rather than an import of package procexec: procexec depends on
	// value.Machine, so eval cannot depend back on procexec without a
	// cycle. The host binary (cmd/kestrel, lang/kestrel) wires the two
	// together at construction time.
	exec ExecFunc
}

// ExecFunc dispatches a string-headed call as an external command (spec
// §4.11): name is the command, argForms the raw (unevaluated) argument
// spine, mode the caller's evaluation mode. Implementations must evaluate
// argForms themselves (procexec.Exec evaluates each form in Single mode)
// and push their result(s)
// the same way any other Eval-contract form would.
type ExecFunc func(m value.Machine, mode value.Mode, name string, argForms *value.Value) error

var _ value.Machine = (*Interp)(nil)

// Eval evaluates ast under mode, pushing its result onto the argument
// stack (spec §4.6). Every Value kind other than Cons/Sym self-evaluates;
// Cons dispatches through evalCall, Sym through evalSymbol.
func (i *Interp) Eval(mode value.Mode, ast *value.Value) error {
	mode = mode.ForSpecialForm()
	if ast == nil {
		i.PushArg(value.Nil)
		return nil
	}
	switch ast.Kind {
	case value.KindSym:
		return i.evalSymbol(mode, ast)
	case value.KindCons:
		return i.evalCall(mode, ast)
	default:
		i.PushArg(value.Clone(ast))
		return nil
	}
}

// evalSymbol resolves a bare symbol occurrence: in ModeSet/ModeDoSet it
// installs the scratch set_val as the symbol's new dynamic binding and
// pushes the previous one (the l-value protocol, spec §4.7); otherwise it
// pushes the symbol's current dynamic binding. Nil is always self-
// evaluating, never a variable reference.
func (i *Interp) evalSymbol(mode value.Mode, ast *value.Value) error {
	if value.IsNil(ast) {
		i.PushArg(value.Nil)
		return nil
	}
	b := ast.Sym.Binding()
	old := b.Val
	if old == nil {
		old = value.Nil
	}
	switch mode {
	case value.ModeSet, value.ModeDoSet:
		newVal := i.setVal
		if newVal == nil {
			newVal = value.Nil
		}
		// old's ownership moves from the binding straight to the pushed
		// arg: the binding never held more than one reference to it, so
		// dropping it here (as well as handing it to the caller) would
		// free a value the caller is about to receive.
		b.Val = value.Clone(newVal)
		i.PushArg(old)
		// A bare variable occurrence is itself a swappable address (spec
		// §4.7): acknowledge completion the same way every other
		// addressing built-in does, so `set`'s generic sentinel check
		// works uniformly whether addr is a symbol or a call form.
		i.setVal = value.SwapDone
		return nil
	default:
		i.PushArg(value.Clone(old))
		return nil
	}
}

// evalCall dispatches a (head . args) node: quote returns its operand
// unevaluated; otherwise head is resolved to a callable (a symbol's Func
// slot, or the result of evaluating a non-symbol operator expression) and
// applied to the raw argument spine.
func (i *Interp) evalCall(mode value.Mode, ast *value.Value) error {
	head := ast.Cons.Car
	args := ast.Cons.Cdr

	if isSym(head, "quote") {
		result := value.Nil
		if args.Kind == value.KindCons {
			result = args.Cons.Car
		}
		i.PushArg(value.Clone(result))
		return nil
	}
	if isSym(head, "@") {
		return i.evalAt(mode, ast)
	}

	var fn *value.Value
	if head.Kind == value.KindSym {
		fn = head.Sym.Func
	} else {
		if err := i.Eval(value.ModeSingle, head); err != nil {
			return err
		}
		fn = i.PopArg()
	}
	if fn == nil || value.IsNil(fn) {
		name := "(anonymous)"
		if head.Kind == value.KindSym {
			name = head.Sym.Name
		}
		return i.Raise(string(value.ErrArgument), "unbound function %q", name)
	}
	return i.Apply(mode, fn, args)
}

func isSym(v *value.Value, name string) bool {
	return v != nil && v.Kind == value.KindSym && v.Sym.Name == name
}

// --- value.Machine stack/scratch accessors ---

func (i *Interp) PushArg(v *value.Value)   { i.args.push(v) }
func (i *Interp) PopArg() *value.Value     { return i.args.pop() }
func (i *Interp) ArgLen() int              { return i.args.len() }
func (i *Interp) TruncateArgs(n int)       { i.args.truncate(i.pool, n) }

func (i *Interp) PushRest(v *value.Value) {
	f := i.currentRest()
	f.vals = append(f.vals, v)
}

func (i *Interp) Rest() []*value.Value { return i.currentRest().vals }

func (i *Interp) TruncateRest(n int) {
	f := i.currentRest()
	for len(f.vals) > n {
		last := len(f.vals) - 1
		value.Drop(i.pool, f.vals[last])
		f.vals = f.vals[:last]
	}
}

func (i *Interp) RestCap() int     { return i.currentRest().cap }
func (i *Interp) SetRestCap(n int) { i.currentRest().cap = n }

func (i *Interp) SwapRestAt(idx int, v *value.Value) (*value.Value, bool) {
	f := i.currentRest()
	if idx < 0 || idx >= len(f.vals) {
		return nil, false
	}
	old := f.vals[idx]
	f.vals[idx] = v
	return old, true
}

func (i *Interp) DropRestFront() (*value.Value, bool) {
	f := i.currentRest()
	if len(f.vals) == 0 {
		return nil, false
	}
	v := f.vals[0]
	f.vals = f.vals[1:]
	return v, true
}

func (i *Interp) SetVal() *value.Value   { return i.setVal }
func (i *Interp) SetSetVal(v *value.Value) { i.setVal = v }

func (i *Interp) Intern(name string) *value.Value { return i.tab.Intern(name) }
func (i *Interp) Pool() *value.Pool               { return i.pool }

func (i *Interp) Raise(kind, format string, args ...interface{}) error {
	return value.Raise(value.ErrorKind(kind), format, args...)
}

// currentRest returns the innermost call frame's rest storage, creating a
// top-level one lazily so Rest()/PushRest can be called before any lambda
// application has run.
func (i *Interp) currentRest() *restFrame {
	if len(i.rest) == 0 {
		i.rest = append(i.rest, &restFrame{})
	}
	return i.rest[len(i.rest)-1]
}

func (i *Interp) pushRestFrame() {
	i.rest = append(i.rest, &restFrame{})
}

func (i *Interp) popRestFrame() {
	f := i.currentRest()
	for _, v := range f.vals {
		value.Drop(i.pool, v)
	}
	i.rest = i.rest[:len(i.rest)-1]
}
