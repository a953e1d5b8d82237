package history

import (
	"path/filepath"
	"testing"

	"codefacts/internal/core/ports"
)

func TestStore_OpenInitializesSchemaAndRecordList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	first := ports.RunSummary{
		RunID:            "run-1",
		BaselineRevision: "HEAD~1",
		CurrentRevision:  "HEAD",
		FilesScanned:     12,
		FilesFailed:      1,
		FactCount:        340,
		Added:            4,
		Removed:          2,
		Modified:         7,
		DurationMillis:   812,
	}
	second := ports.RunSummary{
		RunID:            "run-2",
		BaselineRevision: "HEAD",
		CurrentRevision:  "worktree",
		FilesScanned:     12,
		FactCount:        344,
		Added:            1,
		DurationMillis:   95,
	}

	if err := store.RecordRun(first); err != nil {
		t.Fatalf("record first run: %v", err)
	}
	if err := store.RecordRun(second); err != nil {
		t.Fatalf("record second run: %v", err)
	}

	runs, err := store.ListRuns(0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	// Newest first; run-2 was recorded later.
	if runs[0].RunID != "run-2" {
		t.Fatalf("expected run-2 first, got %q", runs[0].RunID)
	}
	if runs[1].FactCount != 340 || runs[1].Modified != 7 {
		t.Fatalf("expected run-1 counters to roundtrip, got %+v", runs[1])
	}
}

func TestStore_RecordRunUpsertsByID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	run := ports.RunSummary{RunID: "run-1", CurrentRevision: "HEAD", FactCount: 10}
	if err := store.RecordRun(run); err != nil {
		t.Fatalf("record run: %v", err)
	}
	run.FactCount = 11
	if err := store.RecordRun(run); err != nil {
		t.Fatalf("record run again: %v", err)
	}

	runs, err := store.ListRuns(5)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected upsert to keep a single row, got %d", len(runs))
	}
	if runs[0].FactCount != 11 {
		t.Fatalf("expected updated fact_count=11, got %d", runs[0].FactCount)
	}
}

func TestStore_RejectsEmptyRunID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	if err := store.RecordRun(ports.RunSummary{}); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestStore_OpenRejectsDirectoryPath(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatal("expected error when history path is a directory")
	}
}
