package main

import (
	"context"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"codefacts/internal/core/app"
	"codefacts/internal/core/config"
	"codefacts/internal/core/watcher"
	"codefacts/internal/shared/observability"
	"codefacts/internal/shared/util"
	"codefacts/internal/ui/cli"
)

// watchRuntime keeps the engine resident: file changes re-run the full
// pipeline (rate limited), artifacts are rewritten in place, and the
// optional TUI mirrors the latest changeset.
type watchRuntime struct {
	engine  *app.App
	cfg     *config.Config
	req     app.RunRequest
	limiter *util.Limiter
	watcher *watcher.Watcher
	obs     *cli.ObservabilityServer

	mu         sync.Mutex
	last       app.RunResult
	teaProgram *tea.Program
}

func newWatchRuntime(engine *app.App, cfg *config.Config, req app.RunRequest, root string) (*watchRuntime, error) {
	rt := &watchRuntime{
		engine:  engine,
		cfg:     cfg,
		req:     req,
		limiter: util.NewLimiter(cfg.Watch.RebuildsPerSecond, cfg.Watch.RebuildBurst),
	}

	w, err := watcher.New(cfg.Watch.Debounce, cfg.Exclude.Dirs, cfg.Exclude.Files, rt.handleChanges)
	if err != nil {
		return nil, err
	}
	w.SetLanguageFilters(engine.Parser().SupportedExtensions(), nil)
	if err := w.Watch(root); err != nil {
		_ = w.Close()
		return nil, err
	}
	rt.watcher = w

	if cfg.Metrics.Enabled {
		rt.obs = cli.NewObservabilityServer(cfg.Metrics.Address, app.NewHealthService(engine))
		if err := rt.obs.Start(context.Background()); err != nil {
			slog.Warn("metrics server failed to start", "addr", cfg.Metrics.Address, "error", err)
			rt.obs = nil
		}
	}

	return rt, nil
}

func (rt *watchRuntime) seed(result app.RunResult) {
	rt.mu.Lock()
	rt.last = result
	rt.mu.Unlock()
}

// handleChanges re-runs the pipeline after the watcher's debounce
// window. The limiter caps rebuild frequency under sustained churn.
func (rt *watchRuntime) handleChanges(paths []string) {
	if err := rt.limiter.Wait(context.Background(), 1); err != nil {
		return
	}
	observability.WatcherRebuildsTotal.Inc()
	slog.Debug("rebuilding after change", "changed", len(paths))

	result, err := rt.engine.Run(context.Background(), rt.req)
	if err != nil {
		slog.Error("rebuild failed", "error", err)
		return
	}

	rt.mu.Lock()
	rt.last = result
	program := rt.teaProgram
	rt.mu.Unlock()

	if program != nil {
		program.Send(newUpdateMsg(result))
	}
}

func (rt *watchRuntime) RunUI() error {
	p := tea.NewProgram(initialModel(rt.req.CurrentRevision), tea.WithAltScreen())

	rt.mu.Lock()
	rt.teaProgram = p
	last := rt.last
	rt.mu.Unlock()

	go p.Send(newUpdateMsg(last))

	_, err := p.Run()
	return err
}

func (rt *watchRuntime) Close() error {
	if rt.obs != nil {
		_ = rt.obs.Stop(context.Background())
	}
	if rt.watcher != nil {
		return rt.watcher.Close()
	}
	return nil
}
