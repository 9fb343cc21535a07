package dynlib

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
)

// Symbols is the export table of a static library.
type Symbols map[string]any

// Static serves libraries linked into the binary. Each is registered under
// the path it stands in for, so loaders treat it exactly like a file.
type Static struct {
	mu   sync.RWMutex
	libs map[string]Symbols
}

// NewStatic returns an empty set of static libraries.
func NewStatic() *Static {
	return &Static{libs: make(map[string]Symbols)}
}

// Add registers symbols under path, replacing any previous entry.
func (s *Static) Add(path string, symbols Symbols) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(Symbols, len(symbols))
	for name, sym := range symbols {
		copied[name] = sym
	}
	s.libs[filepath.Clean(path)] = copied
}

// Paths returns the registered paths, sorted.
func (s *Static) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.libs))
	for p := range s.libs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Open implements Opener. Every call returns an independent handle.
func (s *Static) Open(path string) (Library, error) {
	s.mu.RLock()
	symbols, ok := s.libs[filepath.Clean(path)]
	s.mu.RUnlock()
	if !ok {
		return nil, &OpenError{Path: path, Err: fmt.Errorf("static library %w", ErrNotFound)}
	}
	return &staticLibrary{path: path, symbols: symbols}, nil
}

type staticLibrary struct {
	path    string
	symbols Symbols
	closed  atomic.Bool
}

func (l *staticLibrary) Path() string { return l.path }

func (l *staticLibrary) Lookup(symbol string) (any, error) {
	if l.closed.Load() {
		return nil, &SymbolError{Path: l.path, Symbol: symbol, Err: ErrClosed}
	}
	sym, ok := l.symbols[symbol]
	if !ok || sym == nil {
		return nil, &SymbolError{Path: l.path, Symbol: symbol, Err: ErrNotFound}
	}
	return sym, nil
}

func (l *staticLibrary) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return nil
}
