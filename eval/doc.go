// Package eval implements the EVALUATOR (spec §4.6-§4.9): a stack machine
// that walks an already-expanded AST, dispatching on each cons node's head
// symbol to either a primitive or a user-defined lambda/macro value.
//
// The dispatch loop itself — a method switching on a node kind, threading
// an explicit mode through recursive calls, with errors surfacing through
// the same return path as control-transfer exceptions — is grounded on
// vm/core.go's Run() big-switch and original_source's eval/eval_list/
// eval_evaled_cmd dispatch chain. Where vm/core.go keeps a flat []Cell data
// stack with a cached top-of-stack register, Interp keeps three parallel
// []*value.Value stacks (argument, variable-save, rest) in the same
// append-and-cache style (stacks.go).
package eval
