package delta

import (
	"sort"

	"codefacts/internal/engine/facts"
	"codefacts/internal/shared/util"
)

// Modified pairs the baseline and current renditions of a fact whose
// signature hash changed while its identity did not.
type Modified struct {
	Identity string
	Before   facts.Fact
	After    facts.Fact
}

// Changeset is the minimal add/remove/modify reduction between two
// snapshots. The three identity sets are pairwise disjoint; unchanged
// facts never appear. Changesets are derived, never mutated.
type Changeset struct {
	BaselineRevision string
	CurrentRevision  string
	Added            []facts.Fact
	Removed          []facts.Fact
	Modified         []Modified
	// DegradedFiles lists files that failed to parse or read in either
	// revision, so callers can tell "no changes" from "could not tell".
	DegradedFiles []string
}

// Diff reduces two snapshots to a changeset via identity-keyed map
// lookups: O(n) over the combined fact count, no pairwise comparison.
// Ordering is by (file path, qualified name, identity) throughout.
func Diff(baseline, current *Snapshot) *Changeset {
	cs := &Changeset{
		BaselineRevision: baseline.Revision,
		CurrentRevision:  current.Revision,
	}

	for id, after := range current.Facts {
		before, ok := baseline.Facts[id]
		if !ok {
			cs.Added = append(cs.Added, after)
			continue
		}
		if before.SignatureHash != after.SignatureHash {
			cs.Modified = append(cs.Modified, Modified{Identity: id, Before: before, After: after})
		}
	}
	for id, before := range baseline.Facts {
		if _, ok := current.Facts[id]; !ok {
			cs.Removed = append(cs.Removed, before)
		}
	}

	sortFacts(cs.Added)
	sortFacts(cs.Removed)
	sort.Slice(cs.Modified, func(i, j int) bool {
		return factLess(cs.Modified[i].After, cs.Modified[j].After)
	})

	cs.DegradedFiles = util.SortedStringSet(append(
		append([]string(nil), baseline.FilesFailed...),
		current.FilesFailed...))

	return cs
}

// Empty reports whether the changeset carries no fact-level changes.
func (cs *Changeset) Empty() bool {
	return len(cs.Added) == 0 && len(cs.Removed) == 0 && len(cs.Modified) == 0
}

func sortFacts(fs []facts.Fact) {
	sort.Slice(fs, func(i, j int) bool { return factLess(fs[i], fs[j]) })
}

func factLess(a, b facts.Fact) bool {
	if a.FilePath != b.FilePath {
		return a.FilePath < b.FilePath
	}
	if a.QualifiedName != b.QualifiedName {
		return a.QualifiedName < b.QualifiedName
	}
	return a.Identity < b.Identity
}
