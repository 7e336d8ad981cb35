package expand

import "github.com/kestrel-lang/kestrel/value"

// Expander holds the allocation pool, interner and machine needed to run a
// form through macro expansion and scope analysis.
type Expander struct {
	pool    *value.Pool
	intern  func(string) *value.Value
	machine value.Machine
}

// New returns an Expander. machine is used only to apply macro bodies
// (ApplyMacro); scope analysis needs no machine access.
func New(pool *value.Pool, intern func(string) *value.Value, machine value.Machine) *Expander {
	return &Expander{pool: pool, intern: intern, machine: machine}
}

// Expand runs ast through macro expansion to a fixed point and then a
// single scope-analysis pass, returning the form ready for Eval.
func (e *Expander) Expand(ast *value.Value) (*value.Value, error) {
	expanded, err := e.expandMacros(ast)
	if err != nil {
		return nil, err
	}
	_, rewritten, err := e.analyzeScope(expanded, nil)
	if err != nil {
		return nil, err
	}
	return rewritten, nil
}

func isSym(v *value.Value, name string) bool {
	return v != nil && v.Kind == value.KindSym && v.Sym.Name == name
}
