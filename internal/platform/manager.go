package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vk/gdcore/internal/dynlib"
)

// ErrDuplicatePlatform is returned when adding a second platform with the
// same name.
var ErrDuplicatePlatform = errors.New("platform already loaded")

type extensionRecord struct {
	ext     *Extension
	destroy DestroyExtensionFunc
	lib     dynlib.Library
}

// Handle ties a loaded platform to the library it came from and to the
// extensions loaded for it, so they can be torn down in a safe order.
type Handle struct {
	Platform Platform
	Destroy  DestroyPlatformFunc
	Library  dynlib.Library

	extensions []extensionRecord
}

// AttachExtension adds ext to the platform and records how to release it.
// lib may be nil for extensions that did not come from their own library.
func (h *Handle) AttachExtension(ext *Extension, destroy DestroyExtensionFunc, lib dynlib.Library) {
	h.Platform.AddExtension(ext)
	h.extensions = append(h.extensions, extensionRecord{ext: ext, destroy: destroy, lib: lib})
}

// Release tears the handle down: extensions are destroyed, then the
// platform, and only then are the libraries closed, extension libraries
// first. Objects never outlive the library that created them.
func (h *Handle) Release() error {
	var errs []error
	for i := len(h.extensions) - 1; i >= 0; i-- {
		rec := h.extensions[i]
		if rec.destroy != nil {
			if err := guard(func() { rec.destroy(rec.ext) }); err != nil {
				errs = append(errs, fmt.Errorf("destroy extension '%s': %w", rec.ext.Name(), err))
			}
		}
	}
	if h.Destroy != nil {
		if err := guard(func() { h.Destroy(h.Platform) }); err != nil {
			errs = append(errs, fmt.Errorf("destroy platform '%s': %w", h.Platform.Name(), err))
		}
	}
	for i := len(h.extensions) - 1; i >= 0; i-- {
		if lib := h.extensions[i].lib; lib != nil {
			if err := lib.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if h.Library != nil {
		if err := h.Library.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	h.extensions = nil
	return errors.Join(errs...)
}

// guard runs code from a plugin, turning a panic into an error.
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	fn()
	return nil
}

// Manager owns every loaded platform for the lifetime of the process.
type Manager struct {
	mu      sync.RWMutex
	handles []*Handle
	closed  bool
	logger  *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger platform bookkeeping is reported to.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager returns an empty manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add takes ownership of h.
func (m *Manager) Add(h *Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.handles {
		if existing.Platform.Name() == h.Platform.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicatePlatform, h.Platform.Name())
		}
	}
	m.handles = append(m.handles, h)
	m.logger.Debug("Platform added to manager.", "platform", h.Platform.Name(), "extensions", len(h.Platform.Extensions()))
	return nil
}

// Platforms returns the loaded platforms in load order.
func (m *Manager) Platforms() []Platform {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Platform, 0, len(m.handles))
	for _, h := range m.handles {
		out = append(out, h.Platform)
	}
	return out
}

// Get returns the named platform.
func (m *Manager) Get(name string) (Platform, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, h := range m.handles {
		if h.Platform.Name() == name {
			return h.Platform, true
		}
	}
	return nil, false
}

// Len returns the number of loaded platforms.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handles)
}

// Close releases every platform, most recently loaded first. It is safe to
// call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	var errs []error
	for i := len(m.handles) - 1; i >= 0; i-- {
		h := m.handles[i]
		m.logger.Debug("Releasing platform.", "platform", h.Platform.Name())
		if err := h.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	m.handles = nil
	return errors.Join(errs...)
}
