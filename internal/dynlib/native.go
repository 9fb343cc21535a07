package dynlib

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"plugin"
	"sync/atomic"
)

// Native opens Go plugins built with -buildmode=plugin.
type Native struct{}

// Open implements Opener.
func (Native) Open(path string) (Library, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &OpenError{Path: path, Err: fmt.Errorf("%w: %w", ErrNotFound, err)}
		}
		return nil, &OpenError{Path: path, Err: err}
	}
	p, err := plugin.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}
	return &nativeLibrary{path: path, plugin: p}, nil
}

// nativeLibrary cannot actually be unloaded: the Go runtime never unmaps a
// plugin. Close only invalidates the handle.
type nativeLibrary struct {
	path   string
	plugin *plugin.Plugin
	closed atomic.Bool
}

func (l *nativeLibrary) Path() string { return l.path }

func (l *nativeLibrary) Lookup(symbol string) (any, error) {
	if l.closed.Load() {
		return nil, &SymbolError{Path: l.path, Symbol: symbol, Err: ErrClosed}
	}
	sym, err := l.plugin.Lookup(symbol)
	if err != nil {
		return nil, &SymbolError{Path: l.path, Symbol: symbol, Err: fmt.Errorf("%w: %w", ErrNotFound, err)}
	}
	return sym, nil
}

func (l *nativeLibrary) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return nil
}
