// Package loader discovers platform and extension libraries, takes each
// through Discovered, Opened, Validated, Instantiated and Registered, and
// populates the dispatch table with what survives.
//
// A library failing any stage is Rejected as a whole and reported; loading
// always goes on with the next candidate.
package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/vk/gdcore/internal/ctxlog"
	"github.com/vk/gdcore/internal/dynlib"
	"github.com/vk/gdcore/internal/platform"
	"github.com/vk/gdcore/internal/registry"
)

var errNilPlatform = errors.New("platform factory returned nil")

// Source is a platform library and the root directory of that platform.
type Source struct {
	Library string
	Root    string
}

// ExtensionsDir is where the extension libraries of the platform live. It is
// empty when the source has no root.
func (s Source) ExtensionsDir() string {
	if s.Root == "" {
		return ""
	}
	return filepath.Join(s.Root, "Extensions")
}

// PlatformLoader loads platforms into a manager and a dispatch table.
type PlatformLoader struct {
	opener     dynlib.Opener
	manager    *platform.Manager
	table      *registry.Table
	reporter   Reporter
	extensions *ExtensionsLoader
	suffixes   []string
}

// Option configures a PlatformLoader.
type Option func(*PlatformLoader)

// WithReporter sets where rejected candidates are reported. By default they
// are logged through the logger carried by the load context.
func WithReporter(r Reporter) Option {
	return func(l *PlatformLoader) { l.reporter = r }
}

// WithExtensionSuffixes sets the suffixes scanned in Extensions directories.
func WithExtensionSuffixes(suffixes ...string) Option {
	return func(l *PlatformLoader) { l.suffixes = suffixes }
}

// New creates a loader opening libraries with opener.
func New(opener dynlib.Opener, manager *platform.Manager, table *registry.Table, opts ...Option) *PlatformLoader {
	l := &PlatformLoader{
		opener:   opener,
		manager:  manager,
		table:    table,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.extensions = NewExtensionsLoader(opener, l.reporter, l.suffixes...)
	return l
}

// LoadPlatform opens the platform library at path and instantiates the
// platform. On success the returned handle owns the platform and the
// library but nothing has been registered yet; the caller either hands it to
// the manager or releases it.
func (l *PlatformLoader) LoadPlatform(ctx context.Context, path string) (*platform.Handle, *Candidate) {
	c := newCandidate(path, PlatformLibrary)

	lib, err := l.opener.Open(path)
	if err != nil {
		c.reject(Opened, err)
		return nil, c
	}
	c.advance(Opened)

	create, destroy, err := platformEntryPoints(lib)
	if err != nil {
		closeQuietly(ctx, lib)
		c.reject(Validated, err)
		return nil, c
	}
	c.advance(Validated)

	var p platform.Platform
	err = guard(func() { p = create() })
	if err != nil || p == nil {
		if err == nil {
			err = errNilPlatform
		}
		closeQuietly(ctx, lib)
		c.reject(Instantiated, err)
		return nil, c
	}
	c.Name = p.Name()
	c.advance(Instantiated)

	return &platform.Handle{Platform: p, Destroy: destroy, Library: lib}, c
}

// LoadAll loads every source in order: the platform, then its extension
// libraries, then contributes everything to the dispatch table and hands the
// platform to the manager. The table is sealed once all sources are done.
func (l *PlatformLoader) LoadAll(ctx context.Context, sources []Source) *Report {
	logger := ctxlog.FromContext(ctx)
	report := &Report{}

	for _, src := range sources {
		report.Candidates = append(report.Candidates, l.loadSource(ctx, src)...)
	}

	l.table.Seal()
	logger.Info("🧩 Extensions loading done.",
		"platforms", l.manager.Len(),
		"registered", len(report.Registered()),
		"rejected", len(report.Rejected()),
		"instructions", len(l.table.InstructionTypes()),
		"expressions", len(l.table.ExpressionTypes()))
	return report
}

func (l *PlatformLoader) loadSource(ctx context.Context, src Source) []*Candidate {
	logger := ctxlog.FromContext(ctx).With("library", src.Library)

	handle, pc := l.LoadPlatform(ctx, src.Library)
	if handle == nil {
		report(ctx, l.reporter, pc)
		return []*Candidate{pc}
	}

	if _, exists := l.manager.Get(handle.Platform.Name()); exists {
		l.rejectHandle(ctx, pc, handle, fmt.Errorf("%w: %s", platform.ErrDuplicatePlatform, handle.Platform.Name()))
		return []*Candidate{pc}
	}
	if err := platform.Contribute(handle.Platform, registry.New(registry.WithLogger(logger))); err != nil {
		l.rejectHandle(ctx, pc, handle, err)
		return []*Candidate{pc}
	}

	candidates := []*Candidate{pc}
	if dir := src.ExtensionsDir(); dir != "" {
		candidates = append(candidates, l.extensions.LoadAllExtensions(ctx, dir, handle)...)
	}

	// Contributing can only fail here if the table was sealed under us.
	err := platform.Contribute(handle.Platform, l.table)
	if err == nil {
		err = l.manager.Add(handle)
	}
	if err != nil {
		l.rejectHandle(ctx, pc, handle, err)
		for _, c := range candidates[1:] {
			if c.State == Instantiated {
				c.reject(Registered, err)
			}
		}
		return candidates
	}

	for _, c := range candidates {
		if c.State == Instantiated {
			c.advance(Registered)
		}
	}
	logger.Info("Platform loaded.", "platform", handle.Platform.Name(), "extensions", len(handle.Platform.Extensions()))
	return candidates
}

func (l *PlatformLoader) rejectHandle(ctx context.Context, c *Candidate, h *platform.Handle, err error) {
	if rerr := h.Release(); rerr != nil {
		ctxlog.FromContext(ctx).Debug("Releasing rejected platform failed.", "platform", h.Platform.Name(), "error", rerr)
	}
	c.reject(Registered, err)
	report(ctx, l.reporter, c)
}

func platformEntryPoints(lib dynlib.Library) (platform.CreatePlatformFunc, platform.DestroyPlatformFunc, error) {
	if err := platform.CheckABI(lib); err != nil {
		return nil, nil, err
	}
	return platform.PlatformEntryPoints(lib)
}

// guard runs a plugin factory, turning a panic into an error.
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	fn()
	return nil
}

func destroyQuietly(ctx context.Context, fn func()) {
	if err := guard(fn); err != nil {
		ctxlog.FromContext(ctx).Debug("Destroying rejected object failed.", "error", err)
	}
}

func closeQuietly(ctx context.Context, lib dynlib.Library) {
	if err := lib.Close(); err != nil {
		ctxlog.FromContext(ctx).Debug("Closing rejected library failed.", "path", lib.Path(), "error", err)
	}
}
