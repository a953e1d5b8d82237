package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"codefacts/internal/core/app"
	"codefacts/internal/core/config"
	"codefacts/internal/core/ports"
	"codefacts/internal/data/history"
	"codefacts/internal/data/source"
	"codefacts/internal/shared/observability"
)

var (
	outFull     = flag.String("out-full", "", "Path for the full-facts artifact (required)")
	outDelta    = flag.String("out-delta", "", "Path for the delta artifact (required)")
	baselineRev = flag.String("baseline-rev", "HEAD~1", "Label for the baseline revision")
	baselineDir = flag.String("baseline-dir", "", "Root of the materialized baseline tree (empty = empty baseline)")
	baselineGit = flag.Bool("baseline-git", false, "Read the baseline tree from git at -baseline-rev instead of a directory")
	rev         = flag.String("rev", "HEAD", "Label for the current revision")
	root        = flag.String("root", ".", "Root of the current source tree")
	configPath  = flag.String("config", "", "Path to TOML config file")
	workers     = flag.Int("workers", 0, "Parse worker count (0 = config default)")
	watch       = flag.Bool("watch", false, "Stay resident and re-extract on file changes")
	ui          = flag.Bool("ui", false, "Terminal UI delta monitor (watch mode)")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	version     = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("codefacts v%s\n", VERSION)
		os.Exit(0)
	}

	if *outFull == "" || *outDelta == "" {
		fmt.Fprintln(os.Stderr, "-out-full and -out-delta are required")
		flag.Usage()
		os.Exit(2)
	}

	setupLogging()

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	ctx := context.Background()

	if cfg.Tracing.Enabled {
		shutdown, err := observability.SetupTracing(ctx, cfg.Tracing.Endpoint)
		if err != nil {
			slog.Warn("tracing disabled", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					slog.Warn("trace exporter shutdown failed", "error", err)
				}
			}()
		}
	}

	var recorder ports.RunRecorder
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			slog.Warn("run history disabled", "path", cfg.History.Path, "error", err)
		} else {
			defer store.Close()
			recorder = store
		}
	}

	opts := []app.Option{}
	if recorder != nil {
		opts = append(opts, app.WithRecorder(recorder))
	}
	engine, err := app.New(cfg, opts...)
	if err != nil {
		slog.Error("failed to initialize engine", "error", err)
		os.Exit(1)
	}

	currentSrc, err := source.NewDirSource(*root, cfg.Exclude.Dirs, cfg.Exclude.Files)
	if err != nil {
		slog.Error("invalid source root", "root", *root, "error", err)
		os.Exit(1)
	}

	var baselineSrc ports.FileSource = source.Empty{}
	switch {
	case *baselineDir != "":
		baselineSrc, err = source.NewDirSource(*baselineDir, cfg.Exclude.Dirs, cfg.Exclude.Files)
		if err != nil {
			slog.Error("invalid baseline root", "root", *baselineDir, "error", err)
			os.Exit(1)
		}
	case *baselineGit:
		baselineSrc, err = source.NewGitSource(*root, *baselineRev, cfg.Exclude.Dirs, cfg.Exclude.Files)
		if err != nil {
			slog.Error("baseline revision unavailable", "rev", *baselineRev, "error", err)
			os.Exit(1)
		}
	}

	req := app.RunRequest{
		BaselineRevision: *baselineRev,
		CurrentRevision:  *rev,
		Baseline:         baselineSrc,
		Current:          currentSrc,
		OutFull:          *outFull,
		OutDelta:         *outDelta,
	}

	result, err := engine.Run(ctx, req)
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}

	if !*watch {
		os.Exit(0)
	}

	rt, err := newWatchRuntime(engine, cfg, req, *root)
	if err != nil {
		slog.Error("failed to start watch mode", "error", err)
		os.Exit(1)
	}
	defer rt.Close()
	rt.seed(result)

	if *ui {
		if err := rt.RunUI(); err != nil {
			slog.Error("failed to run UI", "error", err)
			os.Exit(1)
		}
		return
	}

	// Block forever; the watcher drives everything.
	select {}
}

func setupLogging() {
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stderr
	if *ui {
		// In UI mode, avoid terminal logs corrupting the TUI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600); err == nil {
			output = f
		} else {
			fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}

func loadConfig() (*config.Config, error) {
	if *configPath == "" {
		return config.Default(), nil
	}
	return config.Load(*configPath)
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "codefacts", "codefacts.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "codefacts", "codefacts.log")
	}

	return "codefacts.log"
}
