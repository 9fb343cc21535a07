package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/vk/gdcore/internal/common"
	"github.com/vk/gdcore/internal/events"
	"github.com/vk/gdcore/internal/registry"
	"github.com/vk/gdcore/internal/scene"
)

// Evaluator dispatches instructions through a dispatch table.
type Evaluator struct {
	table    *registry.Table
	observer Observer

	// Unknown types are reported once each.
	warned sync.Map
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithObserver attaches an observer. Passing nil keeps the current one.
func WithObserver(o Observer) Option {
	return func(e *Evaluator) {
		if o != nil {
			e.observer = o
		}
	}
}

// New creates an Evaluator reading handlers from table.
func New(table *registry.Table, opts ...Option) *Evaluator {
	e := &Evaluator{table: table, observer: nopObserver{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate evaluates a condition and returns its final truth value.
//
// An unregistered type is false. For condition handlers the instruction's
// negation flag is applied to the raw result; action handlers evaluated here
// return their success flag untouched.
func (e *Evaluator) Evaluate(ctx *scene.Context, instr *events.Instruction) bool {
	if events.IsCompound(instr.Type()) {
		result := e.compound(ctx, instr)
		if instr.IsInverted() {
			result = common.LogicalNegation(result)
		}
		e.observer.InstructionEvaluated(instr, registry.KindCondition, result)
		return result
	}

	entry, ok := e.lookup(ctx, instr)
	if !ok {
		e.observer.InstructionEvaluated(instr, registry.KindCondition, false)
		return false
	}

	result := e.call(ctx, entry, instr)
	if entry.Kind == registry.KindCondition && instr.IsInverted() {
		result = common.LogicalNegation(result)
	}
	e.observer.InstructionEvaluated(instr, entry.Kind, result)
	return result
}

// Execute runs an action and returns the handler's success flag. Negation
// never applies to actions.
func (e *Evaluator) Execute(ctx *scene.Context, instr *events.Instruction) bool {
	entry, ok := e.lookup(ctx, instr)
	if !ok {
		e.observer.InstructionEvaluated(instr, registry.KindAction, false)
		return false
	}
	result := e.call(ctx, entry, instr)
	e.observer.InstructionEvaluated(instr, registry.KindAction, result)
	return result
}

// EvaluateConditions is the conjunction of list, evaluated in order and
// stopping at the first false condition. An empty list is true.
func (e *Evaluator) EvaluateConditions(ctx *scene.Context, list []*events.Instruction) bool {
	for _, instr := range list {
		if !e.Evaluate(ctx, instr) {
			return false
		}
	}
	return true
}

// RunActions executes every action of list in order.
func (e *Evaluator) RunActions(ctx *scene.Context, list []*events.Instruction) {
	for _, instr := range list {
		e.Execute(ctx, instr)
	}
}

func (e *Evaluator) lookup(ctx *scene.Context, instr *events.Instruction) (registry.InstructionEntry, bool) {
	entry, ok := e.table.Instruction(instr.Type())
	if !ok {
		if _, seen := e.warned.LoadOrStore(instr.Type(), struct{}{}); !seen {
			loggerOf(ctx).Warn("Unknown instruction type, treating it as a no-op.", "type", instr.Type())
		}
	}
	return entry, ok
}

// call invokes a handler. A panicking handler is a bug in its extension; the
// tick goes on with a false result.
func (e *Evaluator) call(ctx *scene.Context, entry registry.InstructionEntry, instr *events.Instruction) (result bool) {
	defer func() {
		if r := recover(); r != nil {
			loggerOf(ctx).Error("Instruction handler panicked.",
				"type", entry.Type, "extension", entry.Extension, "panic", fmt.Sprint(r))
			result = false
		}
	}()
	return entry.Fn(ctx, instr)
}

func loggerOf(ctx *scene.Context) *slog.Logger {
	if ctx == nil || ctx.Logger == nil {
		return slog.Default()
	}
	return ctx.Logger
}

// compound evaluates Or, And and Not over the sub-instructions.
//
// And picks like a plain condition list. Or evaluates every branch on its
// own copy of the picks and keeps, per object name, the union of what the
// branches that held picked. A held branch that never filtered a name admits
// all of its instances, so that name is left as it was. Not is true when the
// sub-conditions do not all hold, and never picks.
func (e *Evaluator) compound(ctx *scene.Context, instr *events.Instruction) bool {
	if ctx == nil {
		ctx = &scene.Context{}
	}
	if ctx.Objects == nil {
		ctx.Objects = scene.NewObjectsConcerned(ctx.Scene)
	}
	subs := instr.SubInstructions()
	switch instr.Type() {
	case events.AndCondition:
		return e.EvaluateConditions(ctx, subs)

	case events.NotCondition:
		scratch := ctx.Objects.Clone()
		prev := ctx.SwapObjects(scratch)
		all := e.EvaluateConditions(ctx, subs)
		ctx.SwapObjects(prev)
		return common.LogicalNegation(all)

	case events.OrCondition:
		base := ctx.Objects
		merged := scene.NewObjectsConcerned(ctx.Scene)
		var held []*scene.ObjectsConcerned
		for _, sub := range subs {
			branch := base.Clone()
			prev := ctx.SwapObjects(branch)
			ok := e.Evaluate(ctx, sub)
			ctx.SwapObjects(prev)
			if ok {
				held = append(held, branch)
				merged.Merge(branch)
			}
		}
	names:
		for _, name := range merged.Names() {
			for _, branch := range held {
				if !branch.IsPicked(name) {
					continue names
				}
			}
			base.Restrict(name, merged.Get(name))
		}
		return len(held) > 0
	}
	return false
}
