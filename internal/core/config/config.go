package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

type Config struct {
	Version   int                 `toml:"version"`
	Workers   int                 `toml:"workers"`
	Languages map[string]Language `toml:"languages"`
	Exclude   Exclude             `toml:"exclude"`
	Watch     Watch               `toml:"watch"`
	History   History             `toml:"history"`
	Metrics   Metrics             `toml:"metrics"`
	Tracing   Tracing             `toml:"tracing"`
}

type Language struct {
	Enabled    *bool    `toml:"enabled"`
	Extensions []string `toml:"extensions"`
	Filenames  []string `toml:"filenames"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	// RebuildsPerSecond caps how often watch mode recomputes the delta.
	RebuildsPerSecond float64 `toml:"rebuilds_per_second"`
	RebuildBurst      int     `toml:"rebuild_burst"`
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Metrics struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
}

type Tracing struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
}

func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{".*", "node_modules", "vendor", "__pycache__", "dist", "build"}
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.RebuildsPerSecond <= 0 {
		cfg.Watch.RebuildsPerSecond = 2
	}
	if cfg.Watch.RebuildBurst <= 0 {
		cfg.Watch.RebuildBurst = 1
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "codefacts-history.db"
	}
	if strings.TrimSpace(cfg.Metrics.Address) == "" {
		cfg.Metrics.Address = "127.0.0.1:9187"
	}
	if strings.TrimSpace(cfg.Tracing.Endpoint) == "" {
		cfg.Tracing.Endpoint = "127.0.0.1:4317"
	}
}

func validate(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d", cfg.Version)
	}
	for langID, override := range cfg.Languages {
		if strings.TrimSpace(langID) == "" {
			return fmt.Errorf("language override with empty name")
		}
		for _, ext := range override.Extensions {
			if strings.TrimSpace(ext) == "" {
				return fmt.Errorf("language %q has an empty extension override", langID)
			}
		}
	}
	if cfg.Metrics.Enabled && strings.TrimSpace(cfg.Metrics.Address) == "" {
		return fmt.Errorf("metrics enabled but no address configured")
	}
	return nil
}
