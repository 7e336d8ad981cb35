package builtins

import (
	"github.com/kestrel-lang/kestrel/symtab"
	"github.com/kestrel-lang/kestrel/value"
)

// registerPredicates installs the is-* type-test built-ins, grounded on
// original_source's is_list/is_atom/is_string/is_symbol/is_variable/
// is_number/is_integer/is_float/is_chars/is_file/is_buffered. Each evaluates
// its single argument and pushes Bool(test), matching the non-nil/Nil
// convention used throughout (value.Bool).
func registerPredicates(tab *symtab.Table) {
	tab.BindPrimitive("is-list", predicate("is-list", func(v *value.Value) bool {
		return value.IsNil(v) || v.Kind == value.KindCons
	}))
	tab.BindPrimitive("is-atom", predicate("is-atom", func(v *value.Value) bool {
		return !(v.Kind == value.KindCons)
	}))
	tab.BindPrimitive("is-string", predicate("is-string", value.IsString))
	tab.BindPrimitive("is-symbol", predicate("is-symbol", func(v *value.Value) bool {
		return v.Kind == value.KindSym
	}))
	tab.BindPrimitive("is-variable", predicate("is-variable", func(v *value.Value) bool {
		return v.Kind == value.KindVar && !v.Var.IsStr
	}))
	tab.BindPrimitive("is-number", predicate("is-number", func(v *value.Value) bool {
		_, _, ok := numOf(v)
		return ok
	}))
	tab.BindPrimitive("is-integer", predicate("is-integer", func(v *value.Value) bool {
		return v.Kind == value.KindInt
	}))
	tab.BindPrimitive("is-float", predicate("is-float", func(v *value.Value) bool {
		return v.Kind == value.KindFat && v.Fat.Kind == value.FatFloat
	}))
	tab.BindPrimitive("is-chars", predicate("is-chars", func(v *value.Value) bool {
		return v.Kind == value.KindFat && v.Fat.Kind == value.FatChars
	}))
	tab.BindPrimitive("is-file", predicate("is-file", func(v *value.Value) bool {
		return v.Kind == value.KindFat && (v.Fat.Kind == value.FatFile || v.Fat.Kind == value.FatPipeR || v.Fat.Kind == value.FatPipeW)
	}))
	tab.BindPrimitive("is-buffered", predicate("is-buffered", func(v *value.Value) bool {
		return v.Kind == value.KindFat && v.Fat.Kind == value.FatBuf
	}))
}

// predicate builds a single-argument type-test primitive named name, using
// test to classify the evaluated argument.
func predicate(name string, test func(v *value.Value) bool) value.Primitive {
	return func(m value.Machine, mode value.Mode, args *value.Value) error {
		forms := listElems(args)
		if len(forms) != 1 {
			return m.Raise(string(value.ErrArgument), "%s requires 1 argument, got %d", name, len(forms))
		}
		if err := m.Eval(value.ModeSingle, forms[0]); err != nil {
			return err
		}
		v := m.PopArg()
		result := test(v)
		value.Drop(m.Pool(), v)
		m.PushArg(value.Bool(result))
		return nil
	}
}
