// Package expand implements the EXPANDER (spec §4.4): the pass that sits
// between the reader and the evaluator, turning a purely syntactic AST into
// one ready for Eval. It runs in two stages over each top-level form:
//
//  1. Macro expansion: bottom-up, applying any (mac params body...) function
//     value found in a call's head position to its own raw, unevaluated
//     argument forms, and iterating to a fixed point.
//  2. Scope analysis: a single traversal that tracks which parameter names
//     are visible from enclosing fn/dynamic forms, and rewrites every fn
//     and dynamic form into a (make-lambda 'kind fenv 'params 'body-list)
//     call whose fenv carries the form's static capture list (always empty
//     for dynamic).
//
// Both stages are grounded on original_source's two-pass expander, adapted
// from its Rust AST enum to this module's uniform cons-cell representation;
// the macro fixed-point loop mirrors asm/parser.go's own iterate-until-
// stable label resolution.
package expand
