// Package registry provides the dispatch table that glues instruction types
// to their Go handlers.
//
// The Table stores mappings between the string identifiers used by events
// (e.g., "ShowLayer") and the functions that implement them. Platforms and
// extensions contribute entries while they are loaded; once loading is done
// the table is sealed and only read from, so the tick loop never has to
// synchronise with registration.
//
// Expression handlers are exposed to parameter expressions as cty functions,
// bound to the evaluation context they are called from.
package registry
