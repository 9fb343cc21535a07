package engine

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/vk/gdcore/internal/common"
	"github.com/vk/gdcore/internal/ctxlog"
	"github.com/vk/gdcore/internal/events"
	"github.com/vk/gdcore/internal/registry"
	"github.com/vk/gdcore/internal/scene"
)

// Runner evaluates a fixed event list against one scene, one tick at a time.
type Runner struct {
	evaluator *Evaluator
	table     *registry.Table
	scene     *scene.RuntimeScene
	events    events.List

	ctx      *scene.Context
	revision uint64

	rand   *rand.Rand
	logger *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRand sets the random source handlers draw from.
func WithRand(r *rand.Rand) RunnerOption {
	return func(rn *Runner) { rn.rand = r }
}

// WithSeed seeds a deterministic random source.
func WithSeed(seed uint64) RunnerOption {
	return func(rn *Runner) { rn.rand = common.NewRand(seed) }
}

// WithLogger sets the logger handed to handlers.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(rn *Runner) { rn.logger = l }
}

// NewRunner prepares a runner. Expression handlers of table are bound to the
// runner's context once, and rebound whenever the table revision changes.
func NewRunner(ev *Evaluator, table *registry.Table, s *scene.RuntimeScene, list events.List, opts ...RunnerOption) *Runner {
	r := &Runner{
		evaluator: ev,
		table:     table,
		scene:     s,
		events:    list,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rand == nil {
		r.rand = common.NewRand(uint64(time.Now().UnixNano()))
	}
	r.ctx = scene.NewContext(s, r.rand, r.logger)
	r.bind()
	return r
}

func (r *Runner) bind() {
	r.revision = r.table.Revision()
	r.ctx.Functions = r.table.Functions(r.ctx)
}

// Context returns the evaluation context the runner ticks with.
func (r *Runner) Context() *scene.Context {
	return r.ctx
}

// Tick evaluates the event list once. It only fails when ctx is already
// done; nothing that happens while evaluating is an error.
func (r *Runner) Tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.table.Revision() != r.revision {
		r.bind()
	}

	tick := r.scene.Tick()
	r.evaluator.observer.TickStarted(tick)

	r.ctx.Objects = scene.NewObjectsConcerned(r.scene)
	r.evaluator.RunEvents(r.ctx, r.events)
	r.scene.Advance()

	r.evaluator.observer.TickFinished(tick)
	return nil
}

// Run ticks until ticks have been evaluated, or until ctx is cancelled when
// ticks is zero or negative. With a positive interval ticks are paced by a
// ticker; cancellation is only observed between ticks.
func (r *Runner) Run(ctx context.Context, ticks int, interval time.Duration) error {
	logger := ctxlog.FromContext(ctx)
	logger.Info("▶️ Running scene.", "scene", r.scene.Name, "ticks", ticks, "interval", interval)

	var pace <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		pace = ticker.C
	}

	for n := 0; ticks <= 0 || n < ticks; n++ {
		if pace != nil && n > 0 {
			select {
			case <-ctx.Done():
				logger.Info("Scene run cancelled.", "scene", r.scene.Name, "ticks_done", n)
				return ctx.Err()
			case <-pace:
			}
		}
		if err := r.Tick(ctx); err != nil {
			logger.Info("Scene run cancelled.", "scene", r.scene.Name, "ticks_done", n)
			return err
		}
	}

	logger.Info("✅ Scene run finished.", "scene", r.scene.Name, "scene_tick", r.scene.Tick())
	return nil
}
