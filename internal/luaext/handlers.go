package luaext

import (
	"fmt"

	"github.com/vk/gdcore/internal/dynlib"
	"github.com/vk/gdcore/internal/events"
	"github.com/vk/gdcore/internal/expr"
	"github.com/vk/gdcore/internal/registry"
	"github.com/vk/gdcore/internal/scene"
	lua "github.com/yuin/gopher-lua"
	"github.com/zclconf/go-cty/cty"
)

func (l *library) instructionFunc(d declaration) registry.InstructionFunc {
	return func(ctx *scene.Context, instr *events.Instruction) bool {
		release, ok := l.enter(ctx)
		if !ok {
			return false
		}
		defer release()
		ret, err := l.call(d.fn, newParams(l.L, ctx, instr))
		if err != nil {
			ctx.Logger.Warn("Lua handler failed.", "script", l.path, "type", d.typ, "error", err)
			return false
		}
		return lua.LVAsBool(ret)
	}
}

func (l *library) expressionFunc(d declaration) registry.ExpressionFunc {
	return func(ctx *scene.Context, args []cty.Value) (cty.Value, error) {
		release, ok := l.enter(ctx)
		if !ok {
			return cty.NilVal, dynlib.ErrClosed
		}
		defer release()
		largs := make([]lua.LValue, 0, len(args)+1)
		largs = append(largs, newParams(l.L, ctx, nil))
		for _, a := range args {
			largs = append(largs, toLua(a))
		}
		ret, err := l.call(d.fn, largs...)
		if err != nil {
			return cty.NilVal, err
		}
		return fromLua(ret, paramType(d.returns))
	}
}

func (l *library) call(fn *lua.LFunction, args ...lua.LValue) (lua.LValue, error) {
	if err := l.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		return lua.LNil, err
	}
	ret := l.L.Get(-1)
	l.L.Pop(1)
	return ret, nil
}

// newParams builds the object handed to a handler. Its functions can be
// called with either p.f(...) or p:f(...). Parameter indices start at 1.
func newParams(L *lua.LState, ctx *scene.Context, instr *events.Instruction) *lua.LTable {
	p := L.NewTable()
	// arg returns the stack index of the n-th argument, skipping self.
	arg := func(L *lua.LState, n int) int {
		if L.Get(1) == p {
			return n + 1
		}
		return n
	}
	param := func(L *lua.LState) *expr.Expression {
		return instr.GetParameter(L.CheckInt(arg(L, 1)) - 1)
	}

	fns := map[string]lua.LGFunction{
		"variable": func(L *lua.LState) int {
			v, _ := ctx.Scene.Variables.Get(L.CheckString(arg(L, 1)))
			L.Push(toLua(v))
			return 1
		},
		"set_variable": func(L *lua.LState) int {
			name := L.CheckString(arg(L, 1))
			switch v := L.Get(arg(L, 2)).(type) {
			case lua.LNumber:
				ctx.Scene.Variables.SetNumber(name, float64(v))
			case lua.LString:
				ctx.Scene.Variables.SetText(name, string(v))
			default:
				L.ArgError(arg(L, 2), "number or string expected")
			}
			return 0
		},
		"layer_visible": func(L *lua.LState) int {
			layer, ok := ctx.Scene.Layer(L.CheckString(arg(L, 1)))
			L.Push(lua.LBool(ok && layer.Visible()))
			return 1
		},
		"set_layer_visible": func(L *lua.LState) int {
			ctx.Scene.GetLayer(L.CheckString(arg(L, 1))).SetVisibility(L.CheckBool(arg(L, 2)))
			return 0
		},
		"count": func(L *lua.LState) int {
			L.Push(lua.LNumber(len(ctx.Objects.Get(L.CheckString(arg(L, 1))))))
			return 1
		},
	}
	if instr != nil {
		fns["number"] = func(L *lua.LState) int {
			L.Push(lua.LNumber(param(L).Number(ctx)))
			return 1
		}
		fns["text"] = func(L *lua.LState) int {
			L.Push(lua.LString(param(L).Text(ctx)))
			return 1
		}
	}
	L.SetFuncs(p, fns)
	return p
}

func toLua(v cty.Value) lua.LValue {
	if v.IsNull() || !v.IsKnown() {
		return lua.LNil
	}
	switch ty := v.Type(); {
	case ty.Equals(cty.Number):
		f, _ := v.AsBigFloat().Float64()
		return lua.LNumber(f)
	case ty.Equals(cty.String):
		return lua.LString(v.AsString())
	case ty.Equals(cty.Bool):
		return lua.LBool(v.True())
	default:
		return lua.LNil
	}
}

func fromLua(v lua.LValue, want cty.Type) (cty.Value, error) {
	switch v := v.(type) {
	case lua.LNumber:
		return cty.NumberFloatVal(float64(v)), nil
	case lua.LString:
		return cty.StringVal(string(v)), nil
	case lua.LBool:
		return cty.BoolVal(bool(v)), nil
	}
	if v == lua.LNil {
		return cty.NullVal(want), nil
	}
	return cty.NilVal, fmt.Errorf("unsupported Lua result of type %s", v.Type())
}

func kindOf(kind string) expr.Kind {
	if kind == "text" {
		return expr.KindText
	}
	return expr.KindNumber
}

func paramType(kind string) cty.Type {
	if kind == "text" {
		return cty.String
	}
	return cty.Number
}

func paramTypes(kinds []string) []cty.Type {
	out := make([]cty.Type, len(kinds))
	for i, k := range kinds {
		out[i] = paramType(k)
	}
	return out
}
