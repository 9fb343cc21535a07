// Package app wires the engine together: it loads platforms and their
// extensions into a dispatch table, reads the project's events and scene,
// and ticks them. It is decoupled from any entrypoint like the CLI.
package app
