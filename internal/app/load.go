package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/vk/gdcore/internal/ctxlog"
	"github.com/vk/gdcore/internal/dynlib"
	"github.com/vk/gdcore/internal/loader"
	"github.com/vk/gdcore/internal/luaext"
	"github.com/vk/gdcore/platforms/builtin"
)

// Load loads every platform with its extensions into the dispatch table,
// then reads the project, if one is configured. Libraries failing to load
// are reported and skipped; only an unreadable project is an error.
func (a *App) Load(ctx context.Context) error {
	if a.report != nil {
		return errors.New("app is already loaded")
	}
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Load method started.")

	static := dynlib.NewStatic()
	sources := a.platformSources(static)
	opener := dynlib.ByExtension(
		map[string]dynlib.Opener{luaext.Suffix: luaext.Opener{Logger: a.logger}},
		dynlib.Chain(static, dynlib.Native{}),
	)

	pl := loader.New(opener, a.manager, a.table, loader.WithReporter(loader.ReporterFunc(a.reportFailure)))
	a.report = pl.LoadAll(ctx, sources)

	if a.config.EventsPath == "" {
		a.logger.Debug("No events path configured, skipping project.")
		return nil
	}

	model, err := a.loader.Load(ctx, a.config.EventsPath)
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}
	a.model = model

	findings := a.table.ValidateInstructions(ctx, model.Events)
	a.logger.Info("Project loaded.",
		"path", a.config.EventsPath,
		"events", model.Events.Count(),
		"findings", len(findings))
	return nil
}

// platformSources exports the built-in platforms into static and returns
// what to load: the configured platforms if any, the built-ins otherwise.
func (a *App) platformSources(static *dynlib.Static) []loader.Source {
	builtins := builtin.Register(static, a.config.BaseDir)
	if len(a.config.Platforms) == 0 {
		return builtins
	}

	sources := make([]loader.Source, 0, len(a.config.Platforms))
	for _, src := range a.config.Platforms {
		sources = append(sources, loader.Source{
			Library: a.resolve(src.Library),
			Root:    a.resolve(src.Root),
		})
	}
	return sources
}

func (a *App) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.config.BaseDir, path)
}

func (a *App) reportFailure(c *loader.Candidate) {
	a.logger.Error("Unable to load library, skipping it.", "candidate", c)
}
