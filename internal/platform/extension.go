package platform

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vk/gdcore/internal/expr"
	"github.com/vk/gdcore/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Extension is a named bundle of instruction and expression handlers owned
// by one platform.
type Extension struct {
	name        string
	fullName    string
	description string
	author      string

	instructions map[string]registry.InstructionEntry
	expressions  map[string]registry.ExpressionEntry
}

// NewExtension creates an empty extension.
func NewExtension(name, fullName string) *Extension {
	return &Extension{
		name:         name,
		fullName:     fullName,
		instructions: make(map[string]registry.InstructionEntry),
		expressions:  make(map[string]registry.ExpressionEntry),
	}
}

func (e *Extension) Name() string { return e.name }
func (e *Extension) FullName() string { return e.fullName }
func (e *Extension) Description() string { return e.description }
func (e *Extension) Author() string { return e.author }

func (e *Extension) SetDescription(d string) *Extension {
	e.description = d
	return e
}

func (e *Extension) SetAuthor(a string) *Extension {
	e.author = a
	return e
}

// AddCondition declares a condition reading arity parameters.
func (e *Extension) AddCondition(typ string, arity int, fn registry.InstructionFunc) *Extension {
	e.instructions[typ] = registry.InstructionEntry{Type: typ, Kind: registry.KindCondition, Arity: arity, Fn: fn, Extension: e.name}
	return e
}

// AddAction declares an action reading arity parameters.
func (e *Extension) AddAction(typ string, arity int, fn registry.InstructionFunc) *Extension {
	e.instructions[typ] = registry.InstructionEntry{Type: typ, Kind: registry.KindAction, Arity: arity, Fn: fn, Extension: e.name}
	return e
}

// AddExpression declares an expression handler.
func (e *Extension) AddExpression(typ string, returns expr.Kind, params []cty.Type, fn registry.ExpressionFunc) *Extension {
	e.expressions[typ] = registry.ExpressionEntry{Type: typ, Returns: returns, Params: params, Fn: fn, Extension: e.name}
	return e
}

// InstructionTypes returns the declared condition and action types, sorted.
func (e *Extension) InstructionTypes() []string {
	out := make([]string, 0, len(e.instructions))
	for typ := range e.instructions {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

// ExpressionTypes returns the declared expression types, sorted.
func (e *Extension) ExpressionTypes() []string {
	out := make([]string, 0, len(e.expressions))
	for typ := range e.expressions {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

// Contribute registers every handler of the extension into t, in sorted
// type order. Entries already in t from other extensions are only touched
// when overwritten by the same type.
func (e *Extension) Contribute(t *registry.Table) error {
	var errs []error
	for _, typ := range e.InstructionTypes() {
		if err := t.RegisterInstruction(e.instructions[typ]); err != nil {
			errs = append(errs, err)
		}
	}
	for _, typ := range e.ExpressionTypes() {
		if err := t.RegisterExpression(e.expressions[typ]); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("extension '%s': %w", e.name, errors.Join(errs...))
	}
	return nil
}
