// Package common is the extension with the generic comparison conditions
// and the numeric and text conversion expressions.
package common

import (
	"math"
	"strconv"
	"strings"

	core "github.com/vk/gdcore/internal/common"
	"github.com/vk/gdcore/internal/events"
	"github.com/vk/gdcore/internal/expr"
	"github.com/vk/gdcore/internal/platform"
	"github.com/vk/gdcore/internal/registry"
	"github.com/vk/gdcore/internal/scene"
	"github.com/zclconf/go-cty/cty"
)

// ExtensionName is the name the extension registers its handlers under.
const ExtensionName = "BuiltinCommonInstructions"

// Module implements the platform.Module interface for this package.
type Module struct{}

// Extension builds the extension.
func (m *Module) Extension() *platform.Extension {
	num := []cty.Type{cty.Number}
	return platform.NewExtension(ExtensionName, "Standard conditions and expressions").
		SetAuthor("gdcore").
		AddCondition("CompareNumbers", 3, CompareNumbers).
		AddCondition("CompareStrings", 3, CompareStrings).
		AddExpression("Random", expr.KindNumber, num, Random).
		AddExpression("RandomInRange", expr.KindNumber, []cty.Type{cty.Number, cty.Number}, RandomInRange).
		AddExpression("ToString", expr.KindText, num, ToString).
		AddExpression("ToNumber", expr.KindNumber, []cty.Type{cty.String}, ToNumber).
		AddExpression("Abs", expr.KindNumber, num, Abs)
}

// Register contributes the extension directly to a table.
func (m *Module) Register(t *registry.Table) error {
	return m.Extension().Contribute(t)
}

// CompareNumbers(a, op, b) tests "a op b".
func CompareNumbers(ctx *scene.Context, instr *events.Instruction) bool {
	a := instr.GetParameter(0).Number(ctx)
	op := instr.GetParameter(1).Text(ctx)
	b := instr.GetParameter(2).Number(ctx)
	return core.RelationTest(a, b, op)
}

// CompareStrings(a, op, b) tests "a op b" on text.
func CompareStrings(ctx *scene.Context, instr *events.Instruction) bool {
	a := instr.GetParameter(0).Text(ctx)
	op := instr.GetParameter(1).Text(ctx)
	b := instr.GetParameter(2).Text(ctx)
	return core.StringRelationTest(a, b, op)
}

// Random(max) is an integer in [0, max]. Negative or fractional bounds are
// truncated towards zero first.
func Random(ctx *scene.Context, args []cty.Value) (cty.Value, error) {
	return cty.NumberUIntVal(core.Random(ctx.Rand, bound(number(args[0])))), nil
}

// RandomInRange(min, max) is an integer in [min, max].
func RandomInRange(ctx *scene.Context, args []cty.Value) (cty.Value, error) {
	lo, hi := math.Trunc(number(args[0])), math.Trunc(number(args[1]))
	if hi < lo {
		lo, hi = hi, lo
	}
	return cty.NumberFloatVal(lo + float64(core.Random(ctx.Rand, bound(hi-lo)))), nil
}

// ToString formats a number the shortest way that reads back the same.
func ToString(_ *scene.Context, args []cty.Value) (cty.Value, error) {
	return cty.StringVal(strconv.FormatFloat(number(args[0]), 'f', -1, 64)), nil
}

// ToNumber parses text, yielding 0 when it is not a number.
func ToNumber(_ *scene.Context, args []cty.Value) (cty.Value, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(args[0].AsString()), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return cty.Zero, nil
	}
	return cty.NumberFloatVal(f), nil
}

// Abs is the absolute value.
func Abs(_ *scene.Context, args []cty.Value) (cty.Value, error) {
	return cty.NumberFloatVal(math.Abs(number(args[0]))), nil
}

func number(v cty.Value) float64 {
	f, _ := v.AsBigFloat().Float64()
	return f
}

func bound(f float64) uint64 {
	if f <= 0 || math.IsNaN(f) {
		return 0
	}
	if f >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(f)
}
