package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codefacts/internal/engine/delta"
	"codefacts/internal/engine/facts"
)

func sampleSnapshot(t *testing.T) *delta.Snapshot {
	t.Helper()
	results := []delta.FileResult{
		{
			Path: "pkg/a.py",
			Facts: []facts.Fact{
				{Identity: "bbbb000011112222", Kind: facts.KindDefinition, QualifiedName: "pkg.a.foo", FilePath: "pkg/a.py", Language: "python", Span: facts.Span{StartLine: 1, StartCol: 1, EndLine: 2, EndCol: 9}, SignatureHash: "1212121212121212"},
				{Identity: "aaaa000011112222", Kind: facts.KindImport, QualifiedName: "pkg.a.os", FilePath: "pkg/a.py", Language: "python", Span: facts.Span{StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 10}, SignatureHash: "3434343434343434"},
			},
		},
		{Path: "pkg/broken.py", Failed: true},
	}
	snap, err := delta.Build("HEAD", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), results)
	if err != nil {
		t.Fatalf("build snapshot: %v", err)
	}
	return snap
}

func TestRenderFull_SchemaAndOrdering(t *testing.T) {
	out, err := RenderFull(sampleSnapshot(t))
	if err != nil {
		t.Fatalf("render full: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal rendered document: %v", err)
	}
	if doc["revision"] != "HEAD" {
		t.Fatalf("expected revision HEAD, got %v", doc["revision"])
	}
	if doc["generated_at"] != "2026-03-01T12:00:00Z" {
		t.Fatalf("expected RFC3339 UTC generated_at, got %v", doc["generated_at"])
	}

	factList, ok := doc["facts"].([]any)
	if !ok || len(factList) != 2 {
		t.Fatalf("expected 2 facts, got %v", doc["facts"])
	}
	first := factList[0].(map[string]any)
	if first["identity"] != "aaaa000011112222" {
		t.Fatalf("expected facts sorted by identity, first was %v", first["identity"])
	}
	span := first["span"].(map[string]any)
	if span["start_line"] != float64(1) || span["end_col"] != float64(10) {
		t.Fatalf("unexpected span encoding: %v", span)
	}

	failed, ok := doc["files_failed"].([]any)
	if !ok || len(failed) != 1 || failed[0] != "pkg/broken.py" {
		t.Fatalf("expected files_failed=[pkg/broken.py], got %v", doc["files_failed"])
	}
}

func TestRenderFull_Deterministic(t *testing.T) {
	a, err := RenderFull(sampleSnapshot(t))
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	b, err := RenderFull(sampleSnapshot(t))
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("expected byte-identical output across renders")
	}
}

func TestRenderDelta_EmptyCollectionsAreArrays(t *testing.T) {
	cs := &delta.Changeset{BaselineRevision: "HEAD~1", CurrentRevision: "HEAD"}
	out, err := RenderDelta(cs)
	if err != nil {
		t.Fatalf("render delta: %v", err)
	}
	text := string(out)
	for _, key := range []string{`"added": []`, `"removed": []`, `"modified": []`, `"degraded_files": []`} {
		if !strings.Contains(text, key) {
			t.Fatalf("expected %s in output, got:\n%s", key, text)
		}
	}
	if strings.Contains(text, "null") {
		t.Fatalf("expected no null collections, got:\n%s", text)
	}
}

func TestRenderDelta_ModifiedEntries(t *testing.T) {
	before := facts.Fact{Identity: "cafe000011112222", Kind: facts.KindDefinition, QualifiedName: "a.foo", FilePath: "a.py", Language: "python", SignatureHash: "1111111111111111"}
	after := before
	after.SignatureHash = "2222222222222222"

	cs := &delta.Changeset{
		BaselineRevision: "HEAD~1",
		CurrentRevision:  "HEAD",
		Modified:         []delta.Modified{{Identity: before.Identity, Before: before, After: after}},
	}
	out, err := RenderDelta(cs)
	if err != nil {
		t.Fatalf("render delta: %v", err)
	}

	var doc struct {
		Modified []struct {
			Identity string     `json:"identity"`
			Before   facts.Fact `json:"before"`
			After    facts.Fact `json:"after"`
		} `json:"modified"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unmarshal delta: %v", err)
	}
	if len(doc.Modified) != 1 {
		t.Fatalf("expected 1 modified entry, got %d", len(doc.Modified))
	}
	got := doc.Modified[0]
	if got.Identity != before.Identity || got.Before.SignatureHash == got.After.SignatureHash {
		t.Fatalf("unexpected modified entry: %+v", got)
	}
}

func TestWriteArtifacts_WritesBoth(t *testing.T) {
	dir := t.TempDir()
	fullPath := filepath.Join(dir, "out", "code_facts_full.json")
	deltaPath := filepath.Join(dir, "out", "code_facts_delta.json")

	if err := WriteArtifacts(fullPath, []byte(`{"a":1}`), deltaPath, []byte(`{"b":2}`)); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	full, err := os.ReadFile(fullPath)
	if err != nil {
		t.Fatalf("read full artifact: %v", err)
	}
	if string(full) != `{"a":1}` {
		t.Fatalf("unexpected full artifact content: %s", full)
	}
	if _, err := os.Stat(deltaPath); err != nil {
		t.Fatalf("delta artifact missing: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("read artifact dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected no leftover temp files, got %d entries", len(entries))
	}
}

func TestWriteArtifacts_StageFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	fullPath := filepath.Join(dir, "code_facts_full.json")

	// Parent of the delta path is a regular file, so staging it fails.
	blocker := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("create blocker: %v", err)
	}
	deltaPath := filepath.Join(blocker, "code_facts_delta.json")

	if err := WriteArtifacts(fullPath, []byte("{}"), deltaPath, []byte("{}")); err == nil {
		t.Fatal("expected write failure")
	}
	if _, err := os.Stat(fullPath); !os.IsNotExist(err) {
		t.Fatalf("expected full artifact to be absent after failure, stat err: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the blocker file to remain, got %d entries", len(entries))
	}
}
