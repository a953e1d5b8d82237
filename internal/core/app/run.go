package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"codefacts/internal/core/ports"
	"codefacts/internal/engine/delta"
	"codefacts/internal/shared/observability"
	"codefacts/internal/ui/report"
)

// RunRequest names the two revisions, the sources that materialize
// them, and where the artifacts go.
type RunRequest struct {
	BaselineRevision string
	CurrentRevision  string
	Baseline         ports.FileSource
	Current          ports.FileSource
	OutFull          string
	OutDelta         string
}

type RunResult struct {
	Current   *delta.Snapshot
	Changeset *delta.Changeset
	Summary   ports.RunSummary
}

// Run executes one full extraction: both snapshots build concurrently,
// the delta is computed, and both artifacts are written atomically.
func (a *App) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Run")
	defer span.End()

	started := time.Now()

	var (
		wg                sync.WaitGroup
		baseline, current *delta.Snapshot
		baseErr, currErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		baseline, baseErr = a.BuildSnapshot(ctx, req.BaselineRevision, req.Baseline)
	}()
	go func() {
		defer wg.Done()
		current, currErr = a.BuildSnapshot(ctx, req.CurrentRevision, req.Current)
	}()
	wg.Wait()

	if baseErr != nil {
		observability.RunsTotal.WithLabelValues("error").Inc()
		return RunResult{}, baseErr
	}
	if currErr != nil {
		observability.RunsTotal.WithLabelValues("error").Inc()
		return RunResult{}, currErr
	}

	changeset := delta.Diff(baseline, current)

	fullDoc, err := report.RenderFull(current)
	if err != nil {
		observability.RunsTotal.WithLabelValues("error").Inc()
		return RunResult{}, err
	}
	deltaDoc, err := report.RenderDelta(changeset)
	if err != nil {
		observability.RunsTotal.WithLabelValues("error").Inc()
		return RunResult{}, err
	}
	if err := report.WriteArtifacts(req.OutFull, fullDoc, req.OutDelta, deltaDoc); err != nil {
		observability.RunsTotal.WithLabelValues("error").Inc()
		return RunResult{}, err
	}

	summary := ports.RunSummary{
		RunID:            uuid.NewString(),
		BaselineRevision: req.BaselineRevision,
		CurrentRevision:  req.CurrentRevision,
		FilesScanned:     len(current.FilesScanned),
		FilesFailed:      len(current.FilesFailed),
		FactCount:        len(current.Facts),
		Added:            len(changeset.Added),
		Removed:          len(changeset.Removed),
		Modified:         len(changeset.Modified),
		DurationMillis:   time.Since(started).Milliseconds(),
	}
	a.publishMetrics(current, changeset, started)
	if a.recorder != nil {
		if err := a.recorder.RecordRun(summary); err != nil {
			slog.Warn("failed to record run history", "run_id", summary.RunID, "error", err)
		}
	}

	slog.Info("run complete",
		"run_id", summary.RunID,
		"files_scanned", summary.FilesScanned,
		"files_failed", summary.FilesFailed,
		"facts", summary.FactCount,
		"added", summary.Added,
		"removed", summary.Removed,
		"modified", summary.Modified,
		"duration_ms", summary.DurationMillis,
	)

	return RunResult{Current: current, Changeset: changeset, Summary: summary}, nil
}

func (a *App) publishMetrics(current *delta.Snapshot, cs *delta.Changeset, started time.Time) {
	byKind := make(map[string]int)
	for _, fact := range current.Facts {
		byKind[string(fact.Kind)]++
	}
	observability.FactsExtracted.Reset()
	for kind, n := range byKind {
		observability.FactsExtracted.WithLabelValues(kind).Set(float64(n))
	}
	observability.FilesScanned.Set(float64(len(current.FilesScanned)))
	observability.FilesFailed.Set(float64(len(current.FilesFailed)))
	observability.DeltaAdded.Set(float64(len(cs.Added)))
	observability.DeltaRemoved.Set(float64(len(cs.Removed)))
	observability.DeltaModified.Set(float64(len(cs.Modified)))
	observability.RunDuration.Observe(time.Since(started).Seconds())
	observability.RunsTotal.WithLabelValues("ok").Inc()
}
