package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Sprint renders v as source text. It is the inverse of the reader's
// parser for every source-literal-constructible value (spec §8's
// parse(print(v)) == v round trip): integers, strings, symbols, nested
// lists and the quote/back-quote/unquote/multi-value sugar forms. It also
// doubles as the stringifier used to build subprocess argv entries
// (spec §4.11) and the default `echo`/`print` rendering.
func Sprint(v *Value) string {
	var b strings.Builder
	sprint(&b, v)
	return b.String()
}

func sprint(b *strings.Builder, v *Value) {
	if IsNil(v) {
		b.WriteString("()")
		return
	}
	switch v.Kind {
	case KindInt:
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case KindPrim:
		b.WriteString("#<primitive>")
	case KindSym:
		b.WriteString(v.Sym.Name)
	case KindVar:
		if v.Var.IsStr {
			sprintString(b, v.Var.Name)
		} else if v.Var.Name != "" {
			b.WriteString(v.Var.Name)
		} else {
			b.WriteString("#<variable>")
		}
	case KindFat:
		sprintFat(b, v.Fat)
	case KindCons:
		sprintCons(b, v)
	}
}

func sprintString(b *strings.Builder, s string) {
	b.WriteByte('\'')
	for _, r := range s {
		if r == '\'' {
			b.WriteString("''")
		} else {
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
}

func sprintFat(b *strings.Builder, f *Fat) {
	switch f.Kind {
	case FatFloat:
		b.WriteString(strconv.FormatFloat(f.Float, 'g', -1, 64))
	default:
		fmt.Fprintf(b, "#<%s>", f.Kind)
	}
}

// sugarPrefix maps a one-argument special-form head to its reader-level
// sigil, so that e.g. (quote x) prints as `x rather than (quote x).
var sugarPrefix = map[string]byte{
	"quote":      '`',
	"quasiquote": '^',
	"unquote":    '~',
	"@":          '@',
}

func sprintCons(b *strings.Builder, v *Value) {
	if v.Cons.Car != nil && v.Cons.Car.Kind == KindSym {
		if sigil, ok := sugarPrefix[v.Cons.Car.Sym.Name]; ok {
			if rest, ok := singletonList(v.Cons.Cdr); ok {
				b.WriteByte(sigil)
				sprint(b, rest)
				return
			}
		}
	}
	b.WriteByte('(')
	first := true
	cur := v
	for {
		if IsNil(cur) {
			break
		}
		if cur.Kind != KindCons {
			// dotted tail
			b.WriteString(" & ")
			sprint(b, cur)
			break
		}
		if !first {
			b.WriteByte(' ')
		}
		first = false
		sprint(b, cur.Cons.Car)
		cur = cur.Cons.Cdr
	}
	b.WriteByte(')')
}

func singletonList(v *Value) (*Value, bool) {
	if v == nil || v.Kind != KindCons {
		return nil, false
	}
	if !IsNil(v.Cons.Cdr) {
		return nil, false
	}
	return v.Cons.Car, true
}
