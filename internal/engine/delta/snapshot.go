package delta

import (
	"fmt"
	"time"

	"codefacts/internal/core/errors"
	"codefacts/internal/engine/facts"
	"codefacts/internal/shared/util"
)

// FileResult is one file's contribution to a snapshot: its stamped facts,
// or a failure marker when the file could not be read or parsed.
type FileResult struct {
	Path   string
	Facts  []facts.Fact
	Failed bool
}

// Snapshot is the full fact set for one revision of the tree, indexed by
// identity. Snapshots are read-only once built.
type Snapshot struct {
	Revision     string
	GeneratedAt  time.Time
	FilesScanned []string
	FilesFailed  []string
	Facts        map[string]facts.Fact
}

// Build aggregates per-file results into a snapshot. A duplicate identity
// across files indicates an identity-stamping defect, not a normal input
// condition, and fails the build.
func Build(revision string, generatedAt time.Time, results []FileResult) (*Snapshot, error) {
	snap := &Snapshot{
		Revision:    revision,
		GeneratedAt: generatedAt.UTC(),
		Facts:       make(map[string]facts.Fact),
	}

	owner := make(map[string]string)
	for _, res := range results {
		if res.Failed {
			snap.FilesFailed = append(snap.FilesFailed, res.Path)
			continue
		}
		snap.FilesScanned = append(snap.FilesScanned, res.Path)
		for _, fact := range res.Facts {
			if existing, ok := owner[fact.Identity]; ok && existing != fact.FilePath {
				err := errors.New(errors.CodeConflict,
					fmt.Sprintf("identity %q emitted by both %s and %s", fact.Identity, existing, fact.FilePath))
				return nil, errors.AddContext(err, errors.CtxIdentity, fact.Identity)
			}
			owner[fact.Identity] = fact.FilePath
			snap.Facts[fact.Identity] = fact
		}
	}

	snap.FilesScanned = util.SortedStringSet(snap.FilesScanned)
	snap.FilesFailed = util.SortedStringSet(snap.FilesFailed)
	return snap, nil
}

// SortedFacts returns the snapshot's facts ordered by identity, the
// iteration order the serializer requires.
func (s *Snapshot) SortedFacts() []facts.Fact {
	out := make([]facts.Fact, 0, len(s.Facts))
	for _, id := range util.SortedStringKeys(s.Facts) {
		out = append(out, s.Facts[id])
	}
	return out
}
