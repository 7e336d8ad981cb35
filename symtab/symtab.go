// Package symtab implements the process-local symbol intern table (spec
// §4.2: SYMTAB). It is grounded on the teacher's own registries —
// asm/parser.go's map[string]*label label table and
// original_source/src/main.rs's Env::new interning sequence — generalized
// from "labels used during assembly" to "symbols used during evaluation".
package symtab

import "github.com/kestrel-lang/kestrel/value"

// Table is an intern(name) -> symbol map. There is exactly one Table per
// interpreter; since the evaluator is single-threaded (spec §5), no
// locking is used.
type Table struct {
	syms map[string]*value.Symbol
}

// New returns an empty Table, pre-seeded with the well-known Nil symbol.
func New() *Table {
	t := &Table{syms: make(map[string]*value.Symbol, 256)}
	t.syms[value.Nil.Sym.Name] = value.Nil.Sym
	return t
}

// Intern returns the (always identical, per spec §4.2) symbol Value for
// name, creating it on first use.
func (t *Table) Intern(name string) *value.Value {
	if name == value.Nil.Sym.Name {
		return value.Nil
	}
	if s, ok := t.syms[name]; ok {
		return &value.Value{Kind: value.KindSym, Sym: s}
	}
	s := &value.Symbol{Name: name}
	t.syms[name] = s
	return &value.Value{Kind: value.KindSym, Sym: s}
}

// Lookup returns the symbol for name without creating it.
func (t *Table) Lookup(name string) (*value.Value, bool) {
	if name == value.Nil.Sym.Name {
		return value.Nil, true
	}
	s, ok := t.syms[name]
	if !ok {
		return nil, false
	}
	return &value.Value{Kind: value.KindSym, Sym: s}, true
}

// Bind sets the function slot of the symbol interned as name to fn,
// registering a builtin or macro/lambda body (spec §4.2: "Built-ins
// register their primitive by setting that function slot").
func (t *Table) Bind(name string, fn *value.Value) {
	sym := t.Intern(name)
	sym.Sym.Func = fn
}

// BindPrimitive is a convenience wrapper around Bind for registering a Go
// function as a built-in.
func (t *Table) BindPrimitive(name string, fn value.Primitive) {
	t.Bind(name, value.Prim(fn))
}
