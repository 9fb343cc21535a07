// Package events defines the pre-parsed event program: instructions
// (conditions and actions) grouped into events.
package events

import (
	"log/slog"
	"sync/atomic"

	"github.com/vk/gdcore/internal/expr"
)

// Instruction is one condition or action: a type identifier resolved through
// the dispatch table, its positional parameters and a negation flag.
//
// The instruction only stores Inverted. Applying it is the evaluator's job,
// so handlers never see negation.
type Instruction struct {
	typ        string
	parameters []*expr.Expression
	inverted   bool
	subs       []*Instruction
	logger     *slog.Logger

	outOfRangeReported atomic.Bool
}

// NewInstruction builds an instruction. The parameter slice is copied.
func NewInstruction(typ string, params []*expr.Expression, inverted bool) *Instruction {
	return &Instruction{
		typ:        typ,
		parameters: append([]*expr.Expression(nil), params...),
		inverted:   inverted,
	}
}

// SetLogger sets where parameter misuse is reported. Nil means
// slog.Default.
func (i *Instruction) SetLogger(logger *slog.Logger) {
	i.logger = logger
}

func (i *Instruction) log() *slog.Logger {
	if i.logger == nil {
		return slog.Default()
	}
	return i.logger
}

// Type returns the type identifier.
func (i *Instruction) Type() string {
	return i.typ
}

// IsInverted reports whether a condition result must be negated.
func (i *Instruction) IsInverted() bool {
	return i.inverted
}

// SetInverted sets the negation flag.
func (i *Instruction) SetInverted(inverted bool) {
	i.inverted = inverted
}

// ParameterCount returns the number of parameters actually present.
func (i *Instruction) ParameterCount() int {
	return len(i.parameters)
}

// Parameters returns a copy of the parameters.
func (i *Instruction) Parameters() []*expr.Expression {
	return append([]*expr.Expression(nil), i.parameters...)
}

// GetParameter returns parameter index, or expr.Invalid when index is out
// of range. Only the first out-of-range access of an instruction is logged.
func (i *Instruction) GetParameter(index int) *expr.Expression {
	if index < 0 || index >= len(i.parameters) {
		if i.outOfRangeReported.CompareAndSwap(false, true) {
			i.log().Warn("Instruction parameter out of range, using invalid expression.",
				"type", i.typ, "index", index, "count", len(i.parameters))
		}
		return expr.Invalid
	}
	return i.parameters[index]
}

// SetParameter replaces parameter index in place. Writing out of range is a
// caller bug: it is logged and ignored.
func (i *Instruction) SetParameter(index int, e *expr.Expression) {
	if index < 0 || index >= len(i.parameters) {
		i.log().Warn("Trying to write an out of bound parameter, ignoring.",
			"type", i.typ, "index", index, "count", len(i.parameters))
		return
	}
	i.parameters[index] = e
}

// SubInstructions returns the nested instructions used by compound
// conditions such as Or, And and Not.
func (i *Instruction) SubInstructions() []*Instruction {
	return i.subs
}

// SetSubInstructions replaces the nested instructions.
func (i *Instruction) SetSubInstructions(subs []*Instruction) {
	i.subs = subs
}
