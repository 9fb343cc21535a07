// Package engine evaluates event lists against a running scene.
//
// The Evaluator is the dispatcher: it resolves each instruction's type
// through the registry.Table, calls the handler, and applies condition
// negation afterwards so handlers never deal with it. Everything on this
// path is total: unknown types, handler panics and malformed parameters all
// degrade to neutral results instead of aborting the tick.
//
// The Runner drives the Evaluator once per tick over a fixed event list.
package engine
