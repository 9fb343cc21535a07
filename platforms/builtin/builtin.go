// Package builtin provides the platforms compiled into the binary. They are
// exported through a dynlib.Static opener under the same paths a native
// build would use, so they go through the regular loader.
package builtin

import (
	"path/filepath"

	"github.com/vk/gdcore/internal/dynlib"
	"github.com/vk/gdcore/internal/loader"
	"github.com/vk/gdcore/internal/platform"
	"github.com/vk/gdcore/modules/common"
	"github.com/vk/gdcore/modules/env_vars"
	"github.com/vk/gdcore/modules/layer"
	"github.com/vk/gdcore/modules/objects"
	"github.com/vk/gdcore/modules/print"
	"github.com/vk/gdcore/modules/variables"
)

const (
	NativeName = "GDCpp"
	WebName    = "GDJS"
)

// Library describes where a built-in platform is found.
type Library struct {
	Root   string
	Path   string
	Create platform.CreatePlatformFunc
}

// Libraries lists the built-in platforms, relative to the base directory.
func Libraries() []Library {
	return []Library{
		{Root: "CppPlatform", Path: filepath.Join("CppPlatform", "libGDCpp.so"), Create: Native},
		{Root: "JsPlatform", Path: filepath.Join("JsPlatform", "libGDJS.so"), Create: Web},
	}
}

// Native is the platform carrying every built-in extension.
func Native() platform.Platform {
	return platform.New(NativeName,
		&common.Module{},
		&layer.Module{},
		&variables.Module{},
		&objects.Module{},
		&print.Module{},
		&env_vars.Module{},
	)
}

// Web is the platform for sandboxed targets: no object or environment
// access.
func Web() platform.Platform {
	return platform.New(WebName,
		&common.Module{},
		&layer.Module{},
		&variables.Module{},
		&print.Module{},
	)
}

// Register exports the built-in platforms into static under baseDir and
// returns the sources to load them from.
func Register(static *dynlib.Static, baseDir string) []loader.Source {
	libs := Libraries()
	sources := make([]loader.Source, 0, len(libs))
	for _, lib := range libs {
		path := filepath.Join(baseDir, lib.Path)
		static.Add(path, platform.Exports(lib.Create, func(platform.Platform) {}))
		sources = append(sources, loader.Source{Library: path, Root: filepath.Join(baseDir, lib.Root)})
	}
	return sources
}
