// Package scene models the live state instructions are evaluated against:
// the running scene (layers, variables, object instances) and the set of
// objects picked so far by the conditions of the current event.
//
// The event engine owns a Context per running scene and hands it to every
// instruction handler. Handlers may mutate the scene through actions;
// expressions only read it.
package scene
