package registry

import (
	"fmt"

	"github.com/vk/gdcore/internal/events"
	"github.com/vk/gdcore/internal/expr"
	"github.com/vk/gdcore/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

// Kind tells conditions and actions apart.
type Kind int

const (
	KindCondition Kind = iota + 1
	KindAction
)

func (k Kind) String() string {
	switch k {
	case KindCondition:
		return "condition"
	case KindAction:
		return "action"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// InstructionFunc implements a condition or an action. For actions the
// result is ignored. Handlers never see the instruction's negation flag
// applied: that is done by the evaluator.
type InstructionFunc func(ctx *scene.Context, instr *events.Instruction) bool

// InstructionEntry is a registered condition or action.
type InstructionEntry struct {
	Type string
	Kind Kind
	// Arity is the number of parameters the handler reads. Instructions with
	// fewer parameters still run; missing ones evaluate to defaults.
	Arity     int
	Fn        InstructionFunc
	Extension string
}

// ExpressionFunc implements an expression handler callable from parameter
// expressions.
type ExpressionFunc func(ctx *scene.Context, args []cty.Value) (cty.Value, error)

// ExpressionEntry is a registered expression handler.
type ExpressionEntry struct {
	Type      string
	Returns   expr.Kind
	Params    []cty.Type
	Fn        ExpressionFunc
	Extension string
}

func (e ExpressionEntry) returnType() cty.Type {
	if e.Returns == expr.KindText {
		return cty.String
	}
	return cty.Number
}
