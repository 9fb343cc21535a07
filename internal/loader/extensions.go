package loader

import (
	"context"
	"errors"

	"github.com/vk/gdcore/internal/ctxlog"
	"github.com/vk/gdcore/internal/dynlib"
	"github.com/vk/gdcore/internal/fsutil"
	"github.com/vk/gdcore/internal/platform"
	"github.com/vk/gdcore/internal/registry"
)

// DefaultSuffixes are the file suffixes scanned in Extensions directories.
var DefaultSuffixes = []string{".so", ".lua"}

// errNilExtension is the rejection reason for a factory returning nil.
var errNilExtension = errors.New("extension factory returned nil")

// ExtensionsLoader loads the extension libraries of one platform.
type ExtensionsLoader struct {
	opener   dynlib.Opener
	suffixes []string
	reporter Reporter
}

// NewExtensionsLoader creates a loader scanning for suffixes, or
// DefaultSuffixes when none are given. A nil reporter logs rejections
// through the logger carried by the load context.
func NewExtensionsLoader(opener dynlib.Opener, reporter Reporter, suffixes ...string) *ExtensionsLoader {
	if len(suffixes) == 0 {
		suffixes = DefaultSuffixes
	}
	return &ExtensionsLoader{opener: opener, suffixes: suffixes, reporter: reporter}
}

// LoadAllExtensions loads every extension library directly inside dir and
// attaches the ones that load to handle. Nothing is registered into the
// dispatch table yet: loaded candidates are left Instantiated until the
// platform itself is registered.
func (l *ExtensionsLoader) LoadAllExtensions(ctx context.Context, dir string, handle *platform.Handle) []*Candidate {
	logger := ctxlog.FromContext(ctx).With("platform", handle.Platform.Name())
	paths, err := fsutil.ListFilesByExtension(dir, l.suffixes...)
	if err != nil {
		logger.Warn("Unable to scan extensions directory.", "dir", dir, "error", err)
		return nil
	}
	if len(paths) == 0 {
		logger.Debug("No extension libraries found.", "dir", dir)
		return nil
	}

	candidates := make([]*Candidate, 0, len(paths))
	for _, path := range paths {
		c := l.load(ctx, path, handle)
		if c.State == Rejected {
			report(ctx, l.reporter, c)
		}
		candidates = append(candidates, c)
	}
	return candidates
}

func (l *ExtensionsLoader) load(ctx context.Context, path string, handle *platform.Handle) *Candidate {
	logger := ctxlog.FromContext(ctx)
	c := newCandidate(path, ExtensionLibrary)

	lib, err := l.opener.Open(path)
	if err != nil {
		c.reject(Opened, err)
		return c
	}
	c.advance(Opened)

	create, destroy, err := extensionEntryPoints(lib)
	if err != nil {
		closeQuietly(ctx, lib)
		c.reject(Validated, err)
		return c
	}
	c.advance(Validated)

	var ext *platform.Extension
	err = guard(func() { ext = create() })
	if err != nil || ext == nil {
		if err == nil {
			err = errNilExtension
		}
		closeQuietly(ctx, lib)
		c.reject(Instantiated, err)
		return c
	}
	c.Name = ext.Name()
	c.advance(Instantiated)

	// Contributions are checked on a scratch table so a broken extension
	// never leaves half of its handlers behind.
	if err := ext.Contribute(registry.New(registry.WithLogger(logger))); err != nil {
		destroyQuietly(ctx, func() { destroy(ext) })
		closeQuietly(ctx, lib)
		c.reject(Registered, err)
		return c
	}

	handle.AttachExtension(ext, destroy, lib)
	logger.Debug("Extension loaded.", "extension", ext.Name(), "path", path)
	return c
}

func extensionEntryPoints(lib dynlib.Library) (platform.CreateExtensionFunc, platform.DestroyExtensionFunc, error) {
	if err := platform.CheckABI(lib); err != nil {
		return nil, nil, err
	}
	return platform.ExtensionEntryPoints(lib)
}
