package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/vk/gdcore/internal/config"
	"github.com/vk/gdcore/internal/ctxlog"
	"github.com/vk/gdcore/internal/debugger"
	"github.com/vk/gdcore/internal/loader"
	"github.com/vk/gdcore/internal/platform"
	"github.com/vk/gdcore/internal/registry"
	"github.com/vk/gdcore/internal/scene"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	ctx    context.Context
	logger *slog.Logger
	config *Config
	loader config.Loader

	table   *registry.Table
	manager *platform.Manager
	report  *loader.Report
	model   *config.Model
	scene   *scene.RuntimeScene

	debugger   *debugger.Client
	httpServer *http.Server
	closeOnce  sync.Once
}

// NewApp is the constructor for the main application. The App owns an
// isolated logger writing to outW, its own dispatch table and its own
// platform manager. Nothing is loaded until Load.
func NewApp(outW io.Writer, cfg *Config, projectLoader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:    outW,
		ctx:     ctxlog.WithLogger(context.Background(), logger),
		logger:  logger,
		config:  cfg,
		loader:  projectLoader,
		table:   registry.New(registry.WithLogger(logger)),
		manager: platform.NewManager(platform.WithLogger(logger)),
	}
}

// Table returns the dispatch table.
func (a *App) Table() *registry.Table {
	return a.table
}

// Manager returns the loaded platforms.
func (a *App) Manager() *platform.Manager {
	return a.manager
}

// Report returns the outcome of loading libraries, nil before Load.
func (a *App) Report() *loader.Report {
	return a.report
}

// Model returns the loaded project, nil when no events path is configured.
func (a *App) Model() *config.Model {
	return a.model
}

// Scene returns the scene of the last run, nil before Run.
func (a *App) Scene() *scene.RuntimeScene {
	return a.scene
}

// Close disconnects the debugger and releases every platform, calling the
// destroy entry points. It is safe to call more than once.
func (a *App) Close() error {
	var err error
	a.closeOnce.Do(func() {
		var errs []error
		if a.debugger != nil {
			errs = append(errs, a.debugger.Close())
		}
		errs = append(errs, a.manager.Close())
		err = errors.Join(errs...)
		a.logger.Debug("App closed.", "error", err)
	})
	return err
}
