package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/gdcore/internal/expr"
	"github.com/vk/gdcore/internal/scene"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
)

var (
	// ErrSealed is returned when registering into a sealed table.
	ErrSealed = errors.New("dispatch table is sealed")
	// ErrInvalidEntry is returned for entries that can never be dispatched.
	ErrInvalidEntry = errors.New("invalid dispatch entry")
)

// Module is implemented by anything that contributes handlers directly.
type Module interface {
	Register(t *Table) error
}

// Table maps instruction and expression types to their handlers.
type Table struct {
	mu           sync.RWMutex
	instructions map[string]InstructionEntry
	expressions  map[string]ExpressionEntry
	sealed       bool
	revision     uint64
	logger       *slog.Logger
}

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the logger overrides and sealing are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New creates an empty, unsealed table.
func New(opts ...Option) *Table {
	t := &Table{
		instructions: make(map[string]InstructionEntry),
		expressions:  make(map[string]ExpressionEntry),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RegisterInstruction adds or replaces a condition or action. The last
// registration of a type wins.
func (t *Table) RegisterInstruction(e InstructionEntry) error {
	switch {
	case e.Type == "":
		return fmt.Errorf("%w: empty instruction type", ErrInvalidEntry)
	case e.Fn == nil:
		return fmt.Errorf("%w: instruction '%s' has no handler", ErrInvalidEntry, e.Type)
	case e.Kind != KindCondition && e.Kind != KindAction:
		return fmt.Errorf("%w: instruction '%s' has unknown kind %s", ErrInvalidEntry, e.Type, e.Kind)
	case e.Arity < 0:
		return fmt.Errorf("%w: instruction '%s' has negative arity", ErrInvalidEntry, e.Type)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sealed {
		return fmt.Errorf("registering instruction '%s': %w", e.Type, ErrSealed)
	}
	if prev, exists := t.instructions[e.Type]; exists {
		t.logger.Debug("Overriding instruction handler.", "type", e.Type, "previous_extension", prev.Extension, "extension", e.Extension)
	}
	t.instructions[e.Type] = e
	t.revision++
	return nil
}

// RegisterExpression adds or replaces an expression handler. Its type must be
// callable from an expression, so it has to be an identifier, optionally
// namespaced with "::".
func (t *Table) RegisterExpression(e ExpressionEntry) error {
	switch {
	case e.Type == "":
		return fmt.Errorf("%w: empty expression type", ErrInvalidEntry)
	case !validFunctionName(e.Type):
		return fmt.Errorf("%w: expression '%s' is not a valid function name", ErrInvalidEntry, e.Type)
	case e.Fn == nil:
		return fmt.Errorf("%w: expression '%s' has no handler", ErrInvalidEntry, e.Type)
	case e.Returns != expr.KindNumber && e.Returns != expr.KindText:
		return fmt.Errorf("%w: expression '%s' has unknown return kind", ErrInvalidEntry, e.Type)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sealed {
		return fmt.Errorf("registering expression '%s': %w", e.Type, ErrSealed)
	}
	if prev, exists := t.expressions[e.Type]; exists {
		t.logger.Debug("Overriding expression handler.", "type", e.Type, "previous_extension", prev.Extension, "extension", e.Extension)
	}
	e.Params = append([]cty.Type(nil), e.Params...)
	t.expressions[e.Type] = e
	t.revision++
	return nil
}

func validFunctionName(name string) bool {
	for _, part := range strings.Split(name, "::") {
		if !hclsyntax.ValidIdentifier(part) {
			return false
		}
	}
	return true
}

// Instruction looks up a condition or action.
func (t *Table) Instruction(typ string) (InstructionEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.instructions[typ]
	return e, ok
}

// Expression looks up an expression handler.
func (t *Table) Expression(typ string) (ExpressionEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.expressions[typ]
	return e, ok
}

// InstructionTypes returns the registered instruction types, sorted.
func (t *Table) InstructionTypes() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.instructions))
	for typ := range t.instructions {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

// ExpressionTypes returns the registered expression types, sorted.
func (t *Table) ExpressionTypes() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.expressions))
	for typ := range t.expressions {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

// Seal forbids further registration. Sealing twice is a no-op.
func (t *Table) Seal() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.sealed {
		t.logger.Debug("Sealing dispatch table.", "instructions", len(t.instructions), "expressions", len(t.expressions), "revision", t.revision)
	}
	t.sealed = true
}

// Sealed reports whether Seal was called.
func (t *Table) Sealed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sealed
}

// Revision counts successful registrations.
func (t *Table) Revision() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.revision
}

// Functions returns the expression handlers as cty functions bound to ctx.
// The result is meant to be stored in ctx.Functions.
func (t *Table) Functions(ctx *scene.Context) map[string]function.Function {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]function.Function, len(t.expressions))
	for name, entry := range t.expressions {
		out[name] = bind(ctx, entry)
	}
	return out
}

func bind(ctx *scene.Context, entry ExpressionEntry) function.Function {
	params := make([]function.Parameter, len(entry.Params))
	for i, typ := range entry.Params {
		params[i] = function.Parameter{Name: fmt.Sprintf("arg%d", i), Type: typ}
	}
	ret := entry.returnType()
	fn := entry.Fn
	return function.New(&function.Spec{
		Params: params,
		Type:   function.StaticReturnType(ret),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			v, err := fn(ctx, args)
			if err != nil {
				return cty.UnknownVal(ret), err
			}
			if v.IsNull() {
				return cty.NullVal(ret), nil
			}
			out, err := convert.Convert(v, ret)
			if err != nil {
				return cty.UnknownVal(ret), fmt.Errorf("expression '%s' returned %s: %w", entry.Type, v.Type().FriendlyName(), err)
			}
			return out, nil
		},
	})
}
