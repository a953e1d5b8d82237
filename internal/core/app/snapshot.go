package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"codefacts/internal/core/ports"
	"codefacts/internal/engine/delta"
	"codefacts/internal/engine/facts"
	"codefacts/internal/shared/observability"
)

// BuildSnapshot parses every listed file and aggregates the extracted
// facts into a snapshot for one revision. Per-file read and parse
// failures degrade that file only; the single fatal condition is an
// identity collision across files, detected at the fan-in point.
func (a *App) BuildSnapshot(ctx context.Context, revision string, src ports.FileSource) (*delta.Snapshot, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.BuildSnapshot",
		trace.WithAttributes(attribute.String("revision", revision)))
	defer span.End()

	paths, err := src.List()
	if err != nil {
		return nil, err
	}

	workers := a.Config.Workers
	if workers > len(paths) {
		workers = len(paths)
	}
	if workers < 1 {
		workers = 1
	}

	workCh := make(chan string, len(paths))
	for _, p := range paths {
		workCh <- p
	}
	close(workCh)

	resultCh := make(chan delta.FileResult, len(paths))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range workCh {
				if ctx.Err() != nil {
					return
				}
				resultCh <- a.processFile(path, src)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]delta.FileResult, 0, len(paths))
	for res := range resultCh {
		results = append(results, res)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return delta.Build(revision, a.now(), results)
}

// processFile runs the pure parse/extract path for one file. Unsupported
// files stay in the scanned bookkeeping with zero facts; read and parse
// failures mark the file failed.
func (a *App) processFile(path string, src ports.FileSource) delta.FileResult {
	content, err := src.Read(path)
	if err != nil {
		slog.Debug("file unreadable", "path", path, "error", err)
		return delta.FileResult{Path: path, Failed: true}
	}

	lang := a.codeParser.Resolve(path, content)
	if lang == "" {
		return delta.FileResult{Path: path}
	}

	start := time.Now()
	tree, err := a.codeParser.Parse(lang, content)
	observability.ParsingDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
	if err != nil {
		slog.Debug("parse failed", "path", path, "language", lang, "error", err)
		return delta.FileResult{Path: path, Failed: true}
	}
	defer tree.Close()

	start = time.Now()
	extracted := facts.Stamp(a.extractor.Extract(tree.RootNode(), content, path, lang))
	observability.ExtractionDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())

	return delta.FileResult{Path: path, Facts: extracted}
}
