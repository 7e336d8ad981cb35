package builtins

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/kestrel-lang/kestrel/symtab"
	"github.com/kestrel-lang/kestrel/value"
)

// registerString installs str/split/gensym, grounded on original_source's
// str/split/gensym.
func registerString(tab *symtab.Table) {
	tab.BindPrimitive("str", strBuiltin)
	tab.BindPrimitive("split", splitBuiltin)
	tab.BindPrimitive("gensym", gensymBuiltin)
}

// strBuiltin builds a string from a sequence of integer Unicode codepoint
// arguments, grounded on original_source's str (chr-and-concat).
func strBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	vals, err := evalArgs(m, listElems(args))
	if err != nil {
		return err
	}
	defer dropAll(m.Pool(), vals)
	var b strings.Builder
	for idx, v := range vals {
		n, ok := intOf(v)
		if !ok || n < 0 || n > 0x10FFFF {
			return m.Raise(string(value.ErrEncode), "str: argument %d is not a valid codepoint", idx+1)
		}
		b.WriteRune(rune(n))
	}
	m.PushArg(value.NewString(m.Pool(), b.String()))
	return nil
}

// splitBuiltin splits a string by a regular expression separator, taking an
// optional maximum part count (Nil/absent means unlimited), grounded on
// original_source's split. Respects Multi mode by splicing the fragments
// instead of returning a list, matching arg's own mode handling.
func splitBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) < 1 || len(forms) > 3 {
		return m.Raise(string(value.ErrArgument), "split requires 1 to 3 arguments, got %d", len(forms))
	}
	vals, err := evalArgs(m, forms)
	if err != nil {
		return err
	}
	defer dropAll(m.Pool(), vals)

	s := textOf(vals[0])
	sep := "\\s+"
	if len(vals) > 1 && !value.IsNil(vals[1]) {
		sep = textOf(vals[1])
	}
	n := -1
	if len(vals) > 2 && !value.IsNil(vals[2]) {
		iv, ok := intOf(vals[2])
		if !ok {
			return m.Raise(string(value.ErrType), "split: count argument must be an integer")
		}
		n = int(iv)
	}

	re, rerr := regexp.Compile(sep)
	if rerr != nil {
		return m.Raise(string(value.ErrRegex), "split: %v", rerr)
	}
	parts := re.Split(s, n)

	if mode == value.ModeMulti || mode == value.ModeDoMulti {
		for _, p := range parts {
			m.PushArg(value.NewString(m.Pool(), p))
		}
		m.PushArg(value.MultiDone)
		return nil
	}
	elems := make([]*value.Value, len(parts))
	for idx, p := range parts {
		elems[idx] = value.NewString(m.Pool(), p)
	}
	m.PushArg(sliceToList(m.Pool(), elems))
	return nil
}

// gensymBuiltin returns a fresh, never-before-used symbol, suffixed with a
// uuid rather than a counter so hygienic temporaries stay unique across
// process restarts and re-exec'd spawn children alike.
func gensymBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	m.PushArg(m.Intern("gensym-" + uuid.NewString()))
	return nil
}
