package builtins

import (
	"os"

	"github.com/kestrel-lang/kestrel/symtab"
	"github.com/kestrel-lang/kestrel/value"
)

// registerAddressing installs `set` (the swap protocol's entry point, spec
// §4.7) and the remaining named addressing built-ins `func` and `env-var`
// (`head`/`rest` live in list.go, `arg` in multi.go, dict lookup in
// eval/apply.go's applyDict).
func registerAddressing(tab *symtab.Table) {
	tab.BindPrimitive("set", setBuiltin)
	tab.BindPrimitive("func", funcBuiltin)
	tab.BindPrimitive("env-var", envVarBuiltin)
}

// setBuiltin implements spec §4.7's swap protocol: evaluate expr, place
// the result in the machine's SetVal scratch slot, evaluate addr in Set
// mode, and trust addr's own evaluation to install the value and
// acknowledge with value.SwapDone. A bare variable occurrence is handled
// by evalSymbol's ModeSet branch exactly like any other addressing
// built-in, so this code never needs to special-case it.
func setBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) != 2 {
		return m.Raise(string(value.ErrArgument), "set requires 2 arguments, got %d", len(forms))
	}
	if err := m.Eval(value.ModeSingle, forms[1]); err != nil {
		return err
	}
	val := m.PopArg()
	m.SetSetVal(val)
	err := m.Eval(value.ModeSet, forms[0])
	sentinel := m.SetVal()
	m.SetSetVal(nil)
	// Every addressing built-in treats the scratch slot as borrowed: it
	// clones val into the target rather than consuming val itself, so the
	// caller (this builtin) is the one that must drop it, regardless of
	// how the swap concluded.
	value.Drop(m.Pool(), val)
	if err != nil {
		if sentinel != value.SwapDone && sentinel != val {
			value.Drop(m.Pool(), sentinel)
		}
		return err
	}
	if sentinel != value.SwapDone {
		if sentinel == val {
			sentinel = nil
		}
		value.Drop(m.Pool(), m.PopArg())
		value.Drop(m.Pool(), sentinel)
		return m.Raise(string(value.ErrType), "not a swappable address")
	}
	return nil
}

// funcBuiltin reads or (in Set mode) swaps a symbol's function slot.
func funcBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) != 1 || forms[0] == nil || forms[0].Kind != value.KindSym {
		return m.Raise(string(value.ErrArgument), "func requires a single symbol argument")
	}
	sym := forms[0].Sym
	old := sym.Func
	if old == nil {
		old = value.Nil
	}
	if mode == value.ModeSet {
		sym.Func = value.Clone(m.SetVal())
		m.SetSetVal(value.SwapDone)
		m.PushArg(old)
		return nil
	}
	m.PushArg(value.Clone(old))
	return nil
}

// envVarBuiltin reads or (in Set mode) writes an OS environment variable
// (spec §6).
func envVarBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) != 1 {
		return m.Raise(string(value.ErrArgument), "env-var requires 1 argument, got %d", len(forms))
	}
	if err := m.Eval(value.ModeSingle, forms[0]); err != nil {
		return err
	}
	nameVal := m.PopArg()
	name := value.Sprint(nameVal)
	if value.IsString(nameVal) {
		name = nameVal.Var.Name
	}
	value.Drop(m.Pool(), nameVal)

	old := value.Nil
	if s, ok := os.LookupEnv(name); ok {
		old = value.NewString(m.Pool(), s)
	}
	if mode == value.ModeSet {
		newVal := m.SetVal()
		newText := value.Sprint(newVal)
		if value.IsString(newVal) {
			newText = newVal.Var.Name
		}
		if err := os.Setenv(name, newText); err != nil {
			return m.Raise(string(value.ErrSyscall), "env-var: %v", err)
		}
		m.SetSetVal(value.SwapDone)
		m.PushArg(old)
		return nil
	}
	m.PushArg(old)
	return nil
}
