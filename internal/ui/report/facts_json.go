package report

import (
	"encoding/json"
	"time"

	"codefacts/internal/engine/delta"
	"codefacts/internal/engine/facts"
)

// fullDocument is the on-disk shape of the full-facts artifact. Field
// order and fact ordering are fixed so identical inputs produce
// byte-identical output.
type fullDocument struct {
	Revision     string       `json:"revision"`
	GeneratedAt  string       `json:"generated_at"`
	FilesScanned []string     `json:"files_scanned"`
	FilesFailed  []string     `json:"files_failed"`
	Facts        []facts.Fact `json:"facts"`
}

type modifiedEntry struct {
	Identity string     `json:"identity"`
	Before   facts.Fact `json:"before"`
	After    facts.Fact `json:"after"`
}

type deltaDocument struct {
	BaselineRevision string          `json:"baseline_revision"`
	CurrentRevision  string          `json:"current_revision"`
	Added            []facts.Fact    `json:"added"`
	Removed          []facts.Fact    `json:"removed"`
	Modified         []modifiedEntry `json:"modified"`
	DegradedFiles    []string        `json:"degraded_files"`
}

// RenderFull serializes a snapshot to the full-facts document.
func RenderFull(snap *delta.Snapshot) ([]byte, error) {
	doc := fullDocument{
		Revision:     snap.Revision,
		GeneratedAt:  snap.GeneratedAt.UTC().Format(time.RFC3339),
		FilesScanned: emptyNotNil(snap.FilesScanned),
		FilesFailed:  emptyNotNil(snap.FilesFailed),
		Facts:        emptyNotNil(snap.SortedFacts()),
	}
	return marshal(doc)
}

// RenderDelta serializes a changeset to the delta document.
func RenderDelta(cs *delta.Changeset) ([]byte, error) {
	modified := make([]modifiedEntry, 0, len(cs.Modified))
	for _, m := range cs.Modified {
		modified = append(modified, modifiedEntry{
			Identity: m.Identity,
			Before:   m.Before,
			After:    m.After,
		})
	}
	doc := deltaDocument{
		BaselineRevision: cs.BaselineRevision,
		CurrentRevision:  cs.CurrentRevision,
		Added:            emptyNotNil(cs.Added),
		Removed:          emptyNotNil(cs.Removed),
		Modified:         modified,
		DegradedFiles:    emptyNotNil(cs.DegradedFiles),
	}
	return marshal(doc)
}

func marshal(doc any) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// emptyNotNil keeps empty collections rendering as [] instead of null.
func emptyNotNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
