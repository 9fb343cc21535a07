package app

import (
	"context"
	"errors"

	"github.com/vk/gdcore/internal/ctxlog"
	"github.com/vk/gdcore/internal/debugger"
	"github.com/vk/gdcore/internal/engine"
)

// Run builds the scene of the loaded project and ticks its events. A run
// with no tick limit ends when ctx is cancelled, which is not an error.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	if a.model == nil {
		return errors.New("no project loaded: an events path is required to run")
	}

	var observer engine.Observer
	if a.config.DebuggerURL != "" {
		client, err := debugger.Connect(ctx, a.config.DebuggerURL, debugger.Options{})
		if err != nil {
			a.logger.Warn("Debugger unavailable, running without it.", "url", a.config.DebuggerURL, "error", err)
		} else {
			a.debugger = client
			client.SendLoadReport(a.report)
			observer = client
		}
	}

	a.healthCheckServer()
	defer a.closeHealthCheckServer()

	opts := []engine.RunnerOption{engine.WithLogger(a.logger)}
	if a.config.Seed != 0 {
		opts = append(opts, engine.WithSeed(a.config.Seed))
	}
	a.scene = a.model.BuildScene()
	runner := engine.NewRunner(engine.New(a.table, engine.WithObserver(observer)), a.table, a.scene, a.model.Events, opts...)

	err := runner.Run(ctx, a.config.Ticks, a.config.TickInterval)
	if errors.Is(err, context.Canceled) {
		a.logger.Info("Run interrupted.", "scene_tick", a.scene.Tick())
		return nil
	}

	a.logger.Debug("App.Run method finished.")
	return err
}
