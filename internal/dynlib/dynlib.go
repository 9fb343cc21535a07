// Package dynlib opens libraries by path and resolves exported symbols from
// them. Native shared objects go through the Go plugin package; Static
// serves libraries compiled into the binary under a path; other openers
// (see luaext) plug in through the Opener interface.
package dynlib

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrClosed is returned by lookups on a closed library.
	ErrClosed = errors.New("library is closed")
	// ErrNotFound is returned when a library or symbol does not exist.
	ErrNotFound = errors.New("not found")
)

// Library is an open library.
type Library interface {
	Path() string
	// Lookup returns the exported symbol. Functions are returned as function
	// values, variables as pointers.
	Lookup(symbol string) (any, error)
	// Close releases the library. Objects created from it must be released
	// first.
	Close() error
}

// Opener opens libraries.
type Opener interface {
	Open(path string) (Library, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(path string) (Library, error)

// Open implements Opener.
func (f OpenerFunc) Open(path string) (Library, error) { return f(path) }

// OpenError reports a library that could not be opened.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open library '%s': %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// SymbolError reports a symbol that is missing or has the wrong type.
type SymbolError struct {
	Path   string
	Symbol string
	Err    error
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("symbol '%s' in '%s': %v", e.Symbol, e.Path, e.Err)
}

func (e *SymbolError) Unwrap() error { return e.Err }

// Resolve looks up symbol and converts it to T. A function symbol whose
// signature matches T but is not declared with T's named type is converted.
func Resolve[T any](lib Library, symbol string) (T, error) {
	var zero T
	sym, err := lib.Lookup(symbol)
	if err != nil {
		var symErr *SymbolError
		if errors.As(err, &symErr) {
			return zero, err
		}
		return zero, &SymbolError{Path: lib.Path(), Symbol: symbol, Err: err}
	}
	if v, ok := sym.(T); ok {
		return v, nil
	}

	target := reflect.TypeFor[T]()
	rv := reflect.ValueOf(sym)
	if rv.IsValid() && rv.Kind() == target.Kind() && rv.Type().ConvertibleTo(target) {
		return rv.Convert(target).Interface().(T), nil
	}
	return zero, &SymbolError{
		Path:   lib.Path(),
		Symbol: symbol,
		Err:    fmt.Errorf("has type %T, want %s", sym, target),
	}
}
