package engine

import (
	"github.com/vk/gdcore/internal/events"
	"github.com/vk/gdcore/internal/scene"
)

// RunEvents evaluates list in order. Every event starts from a copy of the
// objects picked by its parent, so picks flow down into sub-events but never
// back up or across to siblings.
func (e *Evaluator) RunEvents(ctx *scene.Context, list events.List) {
	for _, ev := range list {
		if ev.IsDisabled() {
			continue
		}
		switch ev := ev.(type) {
		case *events.StandardEvent:
			e.withObjects(ctx, ctx.Objects.Clone(), func() {
				e.runBody(ctx, ev.Conditions, ev.Actions, ev.SubEvents)
			})
		case *events.ForEachEvent:
			e.runForEach(ctx, ev)
		default:
			ctx.Logger.Debug("Skipping unsupported event.", "event", ev)
		}
	}
}

func (e *Evaluator) runBody(ctx *scene.Context, conditions, actions []*events.Instruction, subs events.List) {
	if !e.EvaluateConditions(ctx, conditions) {
		return
	}
	e.RunActions(ctx, actions)
	if len(subs) > 0 {
		e.RunEvents(ctx, subs)
	}
}

// runForEach repeats the event body once per concerned instance, each time
// with only that instance picked.
func (e *Evaluator) runForEach(ctx *scene.Context, ev *events.ForEachEvent) {
	instances := append([]*scene.Object(nil), ctx.Objects.Get(ev.Object)...)
	for _, obj := range instances {
		iteration := ctx.Objects.Clone()
		iteration.Restrict(ev.Object, []*scene.Object{obj})
		e.withObjects(ctx, iteration, func() {
			e.runBody(ctx, ev.Conditions, ev.Actions, ev.SubEvents)
		})
	}
}

func (e *Evaluator) withObjects(ctx *scene.Context, oc *scene.ObjectsConcerned, fn func()) {
	prev := ctx.SwapObjects(oc)
	defer ctx.SwapObjects(prev)
	fn()
}
