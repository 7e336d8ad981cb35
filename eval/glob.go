package eval

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kestrel-lang/kestrel/value"
)

// fragment is one argument form's classification for expand (spec §4.10):
// a glob atom contributes its literal pattern text verbatim and is later
// matched against the filesystem; anything else contributes the raw text
// of each element of its evaluated result (brace expansion, when the
// result is a list) or the raw text of the result itself.
type fragment struct {
	isGlob bool
	alts   []string
}

// ExpandArgs implements the expand builtin's argument-expansion protocol
// (spec §4.10), grounded on original_source's expand/brace_expand/prod: each
// argument form is classified into a fragment, then the Cartesian product of
// every fragment's alternatives is computed and each combination is joined,
// position by position, into a single word (prod's `i.join(j)`, here
// filepath.Join) rather than kept as separate words per position. If any
// fragment was a glob atom, every other fragment's alternatives are
// glob-escaped before joining (flat_list's Pattern::escape) so literal text
// can't be reinterpreted as pattern metacharacters, and each joined
// combination is matched against the filesystem. mode controls whether an
// empty result is legal: a Single caller with no words at all gets a
// missing-values error; Multi/list callers may receive an empty list.
func (i *Interp) ExpandArgs(mode value.Mode, argForms *value.Value) ([]string, error) {
	forms, _ := listToSlice(argForms)
	fragments := make([]fragment, len(forms))
	globing := false
	for idx, f := range forms {
		frag, err := i.classifyFragment(f)
		if err != nil {
			return nil, err
		}
		fragments[idx] = frag
		if frag.isGlob {
			globing = true
		}
	}

	combos := combineFragments(fragments, globing)

	var words []string
	if globing {
		for _, pattern := range combos {
			matches, err := doublestar.FilepathGlob(pattern)
			if err != nil {
				return nil, i.Raise(string(value.ErrGlob), "glob %q: %v", pattern, err)
			}
			words = append(words, matches...)
		}
	} else {
		words = combos
	}

	if len(words) == 0 && mode.ForSpecialForm() == value.ModeSingle {
		return nil, i.Raise(string(value.ErrMissingValues), "expand produced no values")
	}
	return words, nil
}

// classifyFragment turns one raw argument form into a fragment: a literal
// `(glob "pattern")` atom is kept unevaluated, per spec §4.10 ("a glob atom
// ... is kept as a literal pattern fragment"); everything else is
// evaluated, and a list result is flattened into one alternative per
// element while any other result contributes itself as the sole
// alternative.
func (i *Interp) classifyFragment(form *value.Value) (fragment, error) {
	if form != nil && form.Kind == value.KindCons && isSym(form.Cons.Car, "glob") {
		pat := value.Nil
		if form.Cons.Cdr.Kind == value.KindCons {
			pat = form.Cons.Cdr.Cons.Car
		}
		return fragment{isGlob: true, alts: []string{textOf(pat)}}, nil
	}

	if err := i.Eval(value.ModeSingle, form); err != nil {
		return fragment{}, err
	}
	result := i.PopArg()
	defer value.Drop(i.pool, result)

	if result.Kind == value.KindCons {
		elems, _ := listToSlice(result)
		alts := make([]string, len(elems))
		for idx, e := range elems {
			alts[idx] = textOf(e)
		}
		return fragment{alts: alts}, nil
	}
	return fragment{alts: []string{textOf(result)}}, nil
}

// textOf renders v as the raw text expand joins into paths/patterns: a
// string value's own characters, or its printed representation otherwise,
// mirroring original_source's to_str/to_path conversions (which read a
// string's bytes directly rather than its quoted Display form).
func textOf(v *value.Value) string {
	if value.IsString(v) {
		return v.Var.Name
	}
	return value.Sprint(v)
}

// combineFragments computes the Cartesian product across every fragment's
// alternatives and joins each combination into one word, left to right,
// mirroring original_source's brace_expand/prod: result starts as a single
// empty combination and each fragment in turn is folded in via prod
// (result = {for every existing combo c, for every alt a of this fragment:
// c joined with a}). When any fragment in the whole call is a glob, every
// non-glob fragment's alternatives are escaped first so they can't be
// reinterpreted as pattern metacharacters once joined with a real glob
// pattern.
func combineFragments(fragments []fragment, globing bool) []string {
	combos := []string{""}
	for _, frag := range fragments {
		alts := frag.alts
		if globing && !frag.isGlob {
			escaped := make([]string, len(alts))
			for idx, a := range alts {
				escaped[idx] = escapeGlobMeta(a)
			}
			alts = escaped
		}
		next := make([]string, 0, len(combos)*len(alts))
		for _, c := range combos {
			for _, a := range alts {
				next = append(next, joinFragment(c, a))
			}
		}
		combos = next
	}
	return combos
}

// joinFragment joins an accumulated combination with the next position's
// alternative the way original_source's PathBuf::join does: the first
// position seeds the combination verbatim, later positions are appended as
// path components.
func joinFragment(acc, next string) string {
	if acc == "" {
		return next
	}
	return filepath.Join(acc, next)
}

// escapeGlobMeta backslash-escapes doublestar's pattern metacharacters in
// literal text, grounded on original_source's flat_list/Pattern::escape
// call for non-glob fragments once any fragment in the call is a glob.
func escapeGlobMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
