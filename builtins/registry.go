package builtins

import "github.com/kestrel-lang/kestrel/symtab"

// Register installs every built-in primitive spec.md §2/§4 and
// SPEC_FULL.md's SUPPLEMENTED FEATURES describe into tab. Call once per
// interpreter, before any user source is evaluated.
func Register(tab *symtab.Table) {
	registerLambda(tab)
	registerList(tab)
	registerAddressing(tab)
	registerControl(tab)
	registerMulti(tab)
	registerDict(tab)
	registerArith(tab)
	registerPredicates(tab)
	registerString(tab)
	registerIO(tab)
	registerMisc(tab)
}
