package engine

import (
	"github.com/vk/gdcore/internal/events"
	"github.com/vk/gdcore/internal/registry"
)

// Observer is notified of evaluation progress. Implementations run on the
// tick path and must not block.
type Observer interface {
	TickStarted(tick uint64)
	// InstructionEvaluated is called after every dispatched instruction with
	// the final result, negation included.
	InstructionEvaluated(instr *events.Instruction, kind registry.Kind, result bool)
	TickFinished(tick uint64)
}

type nopObserver struct{}

func (nopObserver) TickStarted(uint64) {}
func (nopObserver) InstructionEvaluated(*events.Instruction, registry.Kind, bool) {}
func (nopObserver) TickFinished(uint64) {}

// Observers fans notifications out to several observers in order.
type Observers []Observer

func (o Observers) TickStarted(tick uint64) {
	for _, obs := range o {
		obs.TickStarted(tick)
	}
}

func (o Observers) InstructionEvaluated(instr *events.Instruction, kind registry.Kind, result bool) {
	for _, obs := range o {
		obs.InstructionEvaluated(instr, kind, result)
	}
}

func (o Observers) TickFinished(tick uint64) {
	for _, obs := range o {
		obs.TickFinished(tick)
	}
}
