// Package value implements the tagged value representation shared by the
// reader, expander and evaluator (spec §3: VAL).
//
// The original implementation packs a 3-bit tag into a pointer's low bits so
// that a value fits in one machine word. Go does not let us alias raw
// pointers that way safely, so instead of a packed union we use an explicit
// tagged struct (per the redesign note in spec §9): a Kind discriminator
// plus one populated field per kind. Every allocation-backed kind embeds a
// reference count and is served from a Pool (pool.go).
package value

// Kind discriminates the variant held by a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindInt
	KindPrim
	KindSym
	KindVar
	KindCons
	KindFat
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindInt:
		return "integer"
	case KindPrim:
		return "primitive"
	case KindSym:
		return "symbol"
	case KindVar:
		return "variable"
	case KindCons:
		return "cons"
	case KindFat:
		return "fat"
	default:
		return "invalid"
	}
}

// Value is the tagged union described in spec §3. Exactly one of the
// pointer/scalar fields is meaningful, selected by Kind.
type Value struct {
	Kind Kind
	Int  int64
	Prim Primitive
	Sym  *Symbol
	Var  *Variable
	Cons *Cons
	Fat  *Fat
}

// Symbol is an interned, process-lifetime name (spec §3/§4.2). It is never
// pool-allocated and never dropped; its Func slot may be rebound freely but
// the Symbol's identity persists for the life of the process.
type Symbol struct {
	Name string
	// Func holds the symbol's function slot: nil (unbound), a primitive
	// Value, a lambda value (kind fenv params body-list), or a macro
	// (mac params body...).
	Func *Value
	// global is the symbol's "de-tagged address": a Variable used as its
	// dynamic (global) binding. Created lazily by Binding.
	global *Variable
}

// Binding returns the Variable backing this symbol's dynamic binding,
// allocating it (immortal, rc == 0) on first use.
func (s *Symbol) Binding() *Variable {
	if s.global == nil {
		s.global = &Variable{Name: s.Name}
	}
	return s.global
}

// Variable is a mutable, refcounted value slot (spec §3). Plain variables
// back symbol global bindings (rc == 0, immortal) and pool-allocated
// variables made by NewVar (rc > 0). A Variable with IsStr set represents the
// "string" kind from spec §3: its Name field holds the string's bytes
// instead of (or alongside) being used as a binding name.
type Variable struct {
	rc    int32
	Name  string
	IsStr bool
	Val   *Value
	Func  *Value

	poolNext *Variable
}

// Cons is a refcounted pair (spec §3).
type Cons struct {
	rc  int32
	Car *Value
	Cdr *Value

	poolNext *Cons
}

// Nil is the unique empty-list/false value. It compares equal only to
// itself; the empty argument list and the boolean false are both
// represented by it.
var Nil = &Value{Kind: KindSym, Sym: &Symbol{Name: "()"}}

func init() {
	// Nil's own function slot resolves to itself, same as the teacher's
	// interning of "()" with its function slot set to itself.
	Nil.Sym.Func = Nil
}

// MultiDone is the terminator pushed after a Multi-mode form's spliced
// results (spec §4.8). It is a unique, never-pool-allocated sentinel:
// callers recognize it by pointer identity and must never Clone or Drop it.
var MultiDone = &Value{Kind: KindSym, Sym: &Symbol{Name: "%multi-done%"}}

// SwapDone is the sentinel an addressing built-in (head, rest, arg, dict
// lookup, ...) installs into SetVal after successfully completing a Set
// mode swap (spec §4.7 step 3). The `set` builtin checks for it by pointer
// identity to confirm the target was a swappable address.
var SwapDone = &Value{Kind: KindSym, Sym: &Symbol{Name: "%swap-done%"}}

// Int returns an integer value.
func Int(n int64) *Value { return &Value{Kind: KindInt, Int: n} }

// Prim wraps a built-in function pointer as a value.
func Prim(p Primitive) *Value { return &Value{Kind: KindPrim, Prim: p} }

// IsNil reports whether v is the unique Nil value.
func IsNil(v *Value) bool { return v == nil || v == Nil }

// IsString reports whether v is a string-kind variable (spec §3).
func IsString(v *Value) bool { return v != nil && v.Kind == KindVar && v.Var.IsStr }

// Truthy reports whether v is anything other than Nil.
func Truthy(v *Value) bool { return !IsNil(v) }

// Bool returns Nil for false and the integer 1 for true, matching the
// language's convention that any non-nil value is truthy but builtins
// conventionally return 1 for "true".
func Bool(b bool) *Value {
	if b {
		return Int(1)
	}
	return Nil
}

// Identical reports pointer/scalar identity equality per spec §3's equality
// column: integers compare by value, everything else by identity.
func Identical(a, b *Value) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return IsNil(a) && IsNil(b)
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNil:
		return true
	case KindInt:
		return a.Int == b.Int
	case KindPrim:
		return samePrimitive(a.Prim, b.Prim)
	case KindSym:
		return a.Sym == b.Sym
	case KindVar:
		return a.Var == b.Var
	case KindCons:
		return a.Cons == b.Cons
	case KindFat:
		return a.Fat == b.Fat
	}
	return false
}
