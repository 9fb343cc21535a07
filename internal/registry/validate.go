package registry

import (
	"context"
	"fmt"

	"github.com/vk/gdcore/internal/ctxlog"
	"github.com/vk/gdcore/internal/events"
)

// ValidateInstructions checks an event list against the table. Unknown types,
// conditions registered as actions (or the other way round) and instructions
// with fewer parameters than their handler reads are reported. None of these
// stop a run: the evaluator tolerates all of them, so findings are warnings.
func (t *Table) ValidateInstructions(ctx context.Context, list events.List) []error {
	logger := ctxlog.FromContext(ctx)
	v := &validator{table: t}
	v.events(list)

	for _, err := range v.errs {
		logger.Warn("Event validation finding.", "error", err)
	}
	return v.errs
}

type validator struct {
	table *Table
	errs  []error
}

func (v *validator) events(list events.List) {
	for _, ev := range list {
		switch e := ev.(type) {
		case *events.StandardEvent:
			v.instructions(e.Conditions, KindCondition)
			v.instructions(e.Actions, KindAction)
			v.events(e.SubEvents)
		case *events.ForEachEvent:
			v.instructions(e.Conditions, KindCondition)
			v.instructions(e.Actions, KindAction)
			v.events(e.SubEvents)
		}
	}
}

func (v *validator) instructions(list []*events.Instruction, want Kind) {
	for _, instr := range list {
		if want == KindCondition && events.IsCompound(instr.Type()) {
			v.instructions(instr.SubInstructions(), KindCondition)
			continue
		}

		entry, ok := v.table.Instruction(instr.Type())
		if !ok {
			v.errs = append(v.errs, fmt.Errorf("unknown %s type '%s'", want, instr.Type()))
			continue
		}
		if entry.Kind != want {
			v.errs = append(v.errs, fmt.Errorf("'%s' is registered as %s but used as %s", instr.Type(), entry.Kind, want))
		}
		if instr.ParameterCount() < entry.Arity {
			v.errs = append(v.errs, fmt.Errorf("'%s' expects %d parameters, got %d", instr.Type(), entry.Arity, instr.ParameterCount()))
		}
	}
}
