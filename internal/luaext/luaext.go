// Package luaext loads extensions written in Lua.
//
// A script declares one extension and its handlers through a few globals:
//
//	extension("Greeter", "Greets the player")
//	action("Greet", 1, function(p)
//	  p.set_variable("greeting", "Hello " .. p.text(1))
//	  return true
//	end)
//
// Opening a script yields a dynlib.Library exporting the usual extension
// entry points, so Lua extensions go through the same loader as native
// ones. Each library owns its own sandboxed interpreter.
package luaext

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/vk/gdcore/internal/dynlib"
	"github.com/vk/gdcore/internal/platform"
	"github.com/vk/gdcore/internal/scene"
	lua "github.com/yuin/gopher-lua"
)

// Suffix is the file suffix of Lua extensions.
const Suffix = ".lua"

// Opener opens Lua scripts as extension libraries.
type Opener struct {
	// Logger receives script output and handler errors. Nil means
	// slog.Default.
	Logger *slog.Logger
}

// Open runs the script at path and returns the library it declares. A script
// that never calls extension() opens fine but exports no entry points.
func (o Opener) Open(path string) (dynlib.Library, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = dynlib.ErrNotFound
		}
		return nil, &dynlib.OpenError{Path: path, Err: err}
	}

	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	lib := &library{path: path, logger: logger.With("script", path)}
	lib.L = newState()
	registerAPI(lib)

	if err := lib.L.DoFile(path); err != nil {
		lib.L.Close()
		return nil, &dynlib.OpenError{Path: path, Err: fmt.Errorf("executing script: %w", err)}
	}
	return lib, nil
}

// newState creates an interpreter with only the safe standard libraries.
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "collectgarbage"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

type declaration struct {
	typ     string
	kind    string
	arity   int
	returns string
	params  []string
	fn      *lua.LFunction
}

// library is an opened script. The interpreter is not safe for concurrent
// use, so every entry into it holds mu. A handler may re-enter the
// interpreter while evaluating its parameters; owner is the context of the
// call holding mu, and calls made on that context run without locking again.
type library struct {
	path   string
	logger *slog.Logger

	mu       sync.Mutex
	owner    atomic.Pointer[scene.Context]
	L        *lua.LState
	closed   bool
	name     string
	fullName string
	desc     string
	author   string
	decls    []declaration
}

func (l *library) Path() string { return l.path }

// enter takes the interpreter for a handler running on ctx. It returns false
// once the library is closed; otherwise the caller must call the returned
// release.
func (l *library) enter(ctx *scene.Context) (release func(), ok bool) {
	if ctx != nil && l.owner.Load() == ctx {
		return func() {}, !l.closed
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, false
	}
	l.owner.Store(ctx)
	return func() {
		l.owner.Store(nil)
		l.mu.Unlock()
	}, true
}

func (l *library) Lookup(symbol string) (any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, &dynlib.SymbolError{Path: l.path, Symbol: symbol, Err: dynlib.ErrClosed}
	}
	if l.name != "" {
		switch symbol {
		case platform.CreateExtensionSymbol:
			return platform.CreateExtensionFunc(l.createExtension), nil
		case platform.DestroyExtensionSymbol:
			return platform.DestroyExtensionFunc(func(*platform.Extension) {}), nil
		}
	}
	return nil, &dynlib.SymbolError{Path: l.path, Symbol: symbol, Err: dynlib.ErrNotFound}
}

func (l *library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return dynlib.ErrClosed
	}
	l.closed = true
	l.L.Close()
	return nil
}

// createExtension builds a fresh extension from the declarations collected
// while the script ran.
func (l *library) createExtension() *platform.Extension {
	l.mu.Lock()
	defer l.mu.Unlock()

	ext := platform.NewExtension(l.name, l.fullName).
		SetDescription(l.desc).
		SetAuthor(l.author)
	for _, d := range l.decls {
		switch d.kind {
		case "condition":
			ext.AddCondition(d.typ, d.arity, l.instructionFunc(d))
		case "action":
			ext.AddAction(d.typ, d.arity, l.instructionFunc(d))
		case "expression":
			ext.AddExpression(d.typ, kindOf(d.returns), paramTypes(d.params), l.expressionFunc(d))
		}
	}
	return ext
}
