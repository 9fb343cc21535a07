package luaext

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// registerAPI installs the globals a script declares its extension with.
func registerAPI(lib *library) {
	L := lib.L

	// extension(name, fullName [, description [, author]])
	L.SetGlobal("extension", L.NewFunction(func(L *lua.LState) int {
		lib.name = L.CheckString(1)
		lib.fullName = L.OptString(2, lib.name)
		lib.desc = L.OptString(3, "")
		lib.author = L.OptString(4, "")
		return 0
	}))

	// condition(type, arity, fn) and action(type, arity, fn)
	for _, kind := range []string{"condition", "action"} {
		L.SetGlobal(kind, L.NewFunction(func(L *lua.LState) int {
			arity := L.CheckInt(2)
			if arity < 0 {
				L.ArgError(2, "arity must not be negative")
			}
			lib.decls = append(lib.decls, declaration{
				typ:   L.CheckString(1),
				kind:  kind,
				arity: arity,
				fn:    L.CheckFunction(3),
			})
			return 0
		}))
	}

	// expression(type, returns, {param kinds}, fn)
	L.SetGlobal("expression", L.NewFunction(func(L *lua.LState) int {
		d := declaration{
			typ:     L.CheckString(1),
			kind:    "expression",
			returns: checkKind(L, 2, L.CheckString(2)),
			fn:      L.CheckFunction(4),
		}
		L.CheckTable(3).ForEach(func(_, v lua.LValue) {
			d.params = append(d.params, checkKind(L, 3, lua.LVAsString(v)))
		})
		lib.decls = append(lib.decls, d)
		return 0
	}))

	// print goes to the logger instead of stdout.
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
		}
		lib.logger.Info("Lua script output.", "message", strings.Join(parts, " "))
		return 0
	}))
}

func checkKind(L *lua.LState, arg int, kind string) string {
	if kind != "number" && kind != "text" {
		L.ArgError(arg, `kind must be "number" or "text"`)
	}
	return kind
}
