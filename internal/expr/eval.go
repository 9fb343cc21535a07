package expr

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/gdcore/internal/scene"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Evaluate resolves e against ctx. Numbers and bools (as 1 or 0) produce a
// numeric result, strings a text result. Anything else, including any
// evaluation diagnostic, produces the zero Result.
func (e *Expression) Evaluate(ctx *scene.Context) Result {
	val, ok := e.value(ctx)
	if !ok {
		return Result{}
	}
	switch val.Type() {
	case cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return Result{Kind: KindNumber, Num: f}
	case cty.String:
		return Result{Kind: KindText, Str: val.AsString()}
	case cty.Bool:
		if val.True() {
			return Result{Kind: KindNumber, Num: 1}
		}
		return Result{Kind: KindNumber, Num: 0}
	default:
		debug(ctx, "Expression produced an unsupported value type, using default.", "expression", e.String(), "type", val.Type().FriendlyName())
		return Result{}
	}
}

// Number evaluates e as a number. Text is converted when it parses as a
// number; anything unresolvable is 0.
func (e *Expression) Number(ctx *scene.Context) float64 {
	val, ok := e.value(ctx)
	if !ok {
		return 0
	}
	f, ok := ToNumber(val)
	if !ok {
		return 0
	}
	return f
}

// Text evaluates e as text. Numbers are converted to their shortest decimal
// form; anything unresolvable is the empty string.
func (e *Expression) Text(ctx *scene.Context) string {
	val, ok := e.value(ctx)
	if !ok {
		return ""
	}
	str, ok := ToText(val)
	if !ok {
		return ""
	}
	return str
}

// Value evaluates e to its raw cty value. The second result is false when
// the expression could not be resolved.
func (e *Expression) Value(ctx *scene.Context) (cty.Value, bool) {
	return e.value(ctx)
}

func (e *Expression) value(ctx *scene.Context) (cty.Value, bool) {
	if e.IsInvalid() {
		return cty.NilVal, false
	}

	var val cty.Value
	if e.folded {
		val = e.literal
	} else {
		var diags hcl.Diagnostics
		val, diags = e.hclExpr.Value(e.evalContext(ctx))
		if diags.HasErrors() {
			debug(ctx, "Expression evaluation failed, using default.", "expression", e.String(), "error", diags.Error())
			return cty.NilVal, false
		}
	}

	if val.IsNull() || !val.IsWhollyKnown() {
		return cty.NilVal, false
	}
	val, _ = val.Unmark()
	if val.Type() == cty.DynamicPseudoType {
		return cty.NilVal, false
	}
	return val, true
}

// evalContext builds the evaluation scope for e. Scene state is only
// materialised when e actually references it.
func (e *Expression) evalContext(ctx *scene.Context) *hcl.EvalContext {
	if ctx == nil {
		return nil
	}
	evalCtx := &hcl.EvalContext{Functions: ctx.Functions}
	if len(e.refs) == 0 || ctx.Scene == nil {
		return evalCtx
	}

	s := ctx.Scene
	evalCtx.Variables = map[string]cty.Value{
		"var": s.Variables.Value(),
		"scene": cty.ObjectVal(map[string]cty.Value{
			"name": cty.StringVal(s.Name),
			"tick": cty.NumberUIntVal(s.Tick()),
		}),
		"obj": objectsValue(ctx),
	}
	return evalCtx
}

// objectsValue exposes, for every object name the concerned set can see,
// the variables of its first concerned instance.
func objectsValue(ctx *scene.Context) cty.Value {
	if ctx.Objects == nil {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value)
	for _, name := range ctx.Scene.ObjectNames() {
		objs := ctx.Objects.Get(name)
		if len(objs) == 0 {
			continue
		}
		attrs[name] = objs[0].Variables.Value()
	}
	if len(attrs) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(attrs)
}

// ToNumber converts a cty value to float64, returning false when the value
// is not convertible.
func ToNumber(v cty.Value) (float64, bool) {
	if v.IsNull() || !v.IsKnown() {
		return 0, false
	}
	if v.Type() == cty.Bool {
		if v.True() {
			return 1, true
		}
		return 0, true
	}
	num, err := convert.Convert(v, cty.Number)
	if err != nil || num.IsNull() {
		return 0, false
	}
	f, _ := num.AsBigFloat().Float64()
	return f, true
}

// ToText converts a cty value to a string, returning false when the value is
// not convertible.
func ToText(v cty.Value) (string, bool) {
	if v.IsNull() || !v.IsKnown() {
		return "", false
	}
	str, err := convert.Convert(v, cty.String)
	if err != nil || str.IsNull() {
		return "", false
	}
	return str.AsString(), true
}

func debug(ctx *scene.Context, msg string, args ...any) {
	if ctx == nil || ctx.Logger == nil {
		return
	}
	ctx.Logger.Debug(msg, args...)
}
