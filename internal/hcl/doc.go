// Package hcl provides the HCL implementation of config.Loader. It parses
// project files, decodes the scene block with gohcl and translates event
// blocks into events.List, keeping instruction parameters as unevaluated
// expressions.
package hcl
