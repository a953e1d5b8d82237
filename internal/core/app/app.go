package app

import (
	"os"
	"strconv"
	"time"

	"codefacts/internal/core/config"
	"codefacts/internal/core/errors"
	"codefacts/internal/core/ports"
	"codefacts/internal/engine/facts"
	"codefacts/internal/engine/parser"
)

// App wires the parser, extractor and delta pipeline together. One App
// serves any number of runs; all of its state is read-only after New.
type App struct {
	Config *config.Config

	codeParser *parser.Parser
	extractor  *facts.Extractor
	recorder   ports.RunRecorder
	now        func() time.Time
}

type Option func(*App)

// WithRecorder attaches a run-history recorder. Recording failures are
// logged, never fatal.
func WithRecorder(r ports.RunRecorder) Option {
	return func(a *App) { a.recorder = r }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	overrides := make(map[string]parser.LanguageOverride, len(cfg.Languages))
	for id, lang := range cfg.Languages {
		overrides[id] = parser.LanguageOverride{
			Enabled:    lang.Enabled,
			Extensions: lang.Extensions,
			Filenames:  lang.Filenames,
		}
	}
	registry, err := parser.BuildLanguageRegistry(overrides)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation, "build language registry")
	}
	loader, err := parser.NewGrammarLoaderWithRegistry(registry)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:     cfg,
		codeParser: parser.NewParser(loader),
		extractor:  facts.NewExtractor(),
		now:        defaultClock(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *App) Parser() *parser.Parser { return a.codeParser }

// defaultClock honors SOURCE_DATE_EPOCH so CI pipelines that need
// byte-identical artifacts across re-runs can pin generated_at.
func defaultClock() func() time.Time {
	if raw := os.Getenv("SOURCE_DATE_EPOCH"); raw != "" {
		if epoch, err := strconv.ParseInt(raw, 10, 64); err == nil {
			fixed := time.Unix(epoch, 0).UTC()
			return func() time.Time { return fixed }
		}
	}
	return time.Now
}
