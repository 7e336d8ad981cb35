// Package builtins registers kestrel's primitive function table (spec
// §2 BUILTINS) into a symtab.Table: the addressing/control primitives that
// define the evaluator's calling conventions (cons/head/rest/set/func/
// env-var/if/while/do/return/break/continue/raise/with-handler/arg/argc/
// shift/dict/del), the arithmetic
// and comparison inventory, the is-* introspection predicates, and the
// string/gensym/trap primitives supplemented from original_source.
//
// Every primitive here is an ordinary value.Primitive: it receives the
// machine it runs under, the caller's mode, and its raw (unevaluated)
// argument spine, and is responsible for evaluating its own operands
// (spec §4.6). Registration builds a flat table of {name, Primitive}
// pairs passed to symtab.Table.BindPrimitive.
package builtins
