package delta

import (
	"testing"
	"time"

	"codefacts/internal/core/errors"
	"codefacts/internal/engine/facts"
)

func mkFact(path, qn, hash string) facts.Fact {
	f := facts.Fact{
		Kind:          facts.KindDefinition,
		QualifiedName: qn,
		FilePath:      path,
		Language:      "python",
		SignatureHash: hash,
	}
	return facts.Stamp([]facts.Fact{f})[0]
}

func mkSnapshot(t *testing.T, revision string, results []FileResult) *Snapshot {
	t.Helper()
	snap, err := Build(revision, time.Unix(0, 0), results)
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func TestBuildRejectsCrossFileCollision(t *testing.T) {
	dup := facts.Fact{Identity: "deadbeef", FilePath: "a.py"}
	other := facts.Fact{Identity: "deadbeef", FilePath: "b.py"}

	_, err := Build("rev", time.Now(), []FileResult{
		{Path: "a.py", Facts: []facts.Fact{dup}},
		{Path: "b.py", Facts: []facts.Fact{other}},
	})
	if err == nil {
		t.Fatal("expected collision error")
	}
	if !errors.IsCode(err, errors.CodeConflict) {
		t.Errorf("expected CONFLICT, got %v", err)
	}
}

func TestBuildSortsBookkeeping(t *testing.T) {
	snap := mkSnapshot(t, "rev", []FileResult{
		{Path: "b.py", Facts: []facts.Fact{mkFact("b.py", "b.x", "h1")}},
		{Path: "a.py", Facts: []facts.Fact{mkFact("a.py", "a.x", "h2")}},
		{Path: "broken.py", Failed: true},
	})

	if len(snap.FilesScanned) != 2 || snap.FilesScanned[0] != "a.py" {
		t.Errorf("unexpected files scanned: %v", snap.FilesScanned)
	}
	if len(snap.FilesFailed) != 1 || snap.FilesFailed[0] != "broken.py" {
		t.Errorf("unexpected files failed: %v", snap.FilesFailed)
	}
}

func TestDiffAddedFile(t *testing.T) {
	foo := mkFact("a.py", "a.foo", "h1")
	bar := mkFact("b.py", "b.bar", "h2")

	baseline := mkSnapshot(t, "base", []FileResult{
		{Path: "a.py", Facts: []facts.Fact{foo}},
	})
	current := mkSnapshot(t, "head", []FileResult{
		{Path: "a.py", Facts: []facts.Fact{foo}},
		{Path: "b.py", Facts: []facts.Fact{bar}},
	})

	cs := Diff(baseline, current)
	if len(cs.Added) != 1 || cs.Added[0].QualifiedName != "b.bar" {
		t.Errorf("unexpected added: %v", cs.Added)
	}
	if len(cs.Removed) != 0 || len(cs.Modified) != 0 {
		t.Errorf("expected only additions, got removed=%v modified=%v", cs.Removed, cs.Modified)
	}
}

func TestDiffRenameIsRemoveAndAdd(t *testing.T) {
	render := mkFact("w.py", "w.Widget.render", "h1")
	draw := mkFact("w.py", "w.Widget.draw", "h1")

	baseline := mkSnapshot(t, "base", []FileResult{{Path: "w.py", Facts: []facts.Fact{render}}})
	current := mkSnapshot(t, "head", []FileResult{{Path: "w.py", Facts: []facts.Fact{draw}}})

	cs := Diff(baseline, current)
	if len(cs.Removed) != 1 || cs.Removed[0].QualifiedName != "w.Widget.render" {
		t.Errorf("unexpected removed: %v", cs.Removed)
	}
	if len(cs.Added) != 1 || cs.Added[0].QualifiedName != "w.Widget.draw" {
		t.Errorf("unexpected added: %v", cs.Added)
	}
	if len(cs.Modified) != 0 {
		t.Errorf("rename must never produce modified entries: %v", cs.Modified)
	}
}

func TestDiffModification(t *testing.T) {
	before := mkFact("a.py", "a.foo", "h1")
	after := mkFact("a.py", "a.foo", "h2")

	baseline := mkSnapshot(t, "base", []FileResult{{Path: "a.py", Facts: []facts.Fact{before}}})
	current := mkSnapshot(t, "head", []FileResult{{Path: "a.py", Facts: []facts.Fact{after}}})

	cs := Diff(baseline, current)
	if len(cs.Modified) != 1 {
		t.Fatalf("expected one modification, got %v", cs.Modified)
	}
	m := cs.Modified[0]
	if m.Identity != before.Identity {
		t.Error("modified entry must keep the shared identity")
	}
	if m.Before.SignatureHash == m.After.SignatureHash {
		t.Error("modified entry must carry differing hashes")
	}
	if len(cs.Added) != 0 || len(cs.Removed) != 0 {
		t.Error("modification must not leak into added/removed")
	}
}

func TestDiffUnchangedFactsOmitted(t *testing.T) {
	foo := mkFact("a.py", "a.foo", "h1")
	baseline := mkSnapshot(t, "base", []FileResult{{Path: "a.py", Facts: []facts.Fact{foo}}})
	current := mkSnapshot(t, "head", []FileResult{{Path: "a.py", Facts: []facts.Fact{foo}}})

	cs := Diff(baseline, current)
	if !cs.Empty() {
		t.Errorf("expected empty changeset, got %+v", cs)
	}
}

func TestDiffParseFailureInCurrent(t *testing.T) {
	foo := mkFact("a.py", "a.foo", "h1")

	baseline := mkSnapshot(t, "base", []FileResult{{Path: "a.py", Facts: []facts.Fact{foo}}})
	current := mkSnapshot(t, "head", []FileResult{{Path: "a.py", Failed: true}})

	cs := Diff(baseline, current)
	if len(cs.Removed) != 1 || cs.Removed[0].QualifiedName != "a.foo" {
		t.Errorf("baseline facts of a degraded file must surface as removed: %v", cs.Removed)
	}
	if len(cs.DegradedFiles) != 1 || cs.DegradedFiles[0] != "a.py" {
		t.Errorf("unexpected degraded files: %v", cs.DegradedFiles)
	}
}

func TestDiffDisjointness(t *testing.T) {
	a := mkFact("a.py", "a.a", "h1")
	b := mkFact("a.py", "a.b", "h1")
	bMod := mkFact("a.py", "a.b", "h2")
	c := mkFact("a.py", "a.c", "h1")

	baseline := mkSnapshot(t, "base", []FileResult{{Path: "a.py", Facts: []facts.Fact{a, b}}})
	current := mkSnapshot(t, "head", []FileResult{{Path: "a.py", Facts: []facts.Fact{bMod, c}}})

	cs := Diff(baseline, current)
	seen := make(map[string]string)
	record := func(id, set string) {
		if prev, ok := seen[id]; ok {
			t.Errorf("identity %s appears in both %s and %s", id, prev, set)
		}
		seen[id] = set
	}
	for _, f := range cs.Added {
		record(f.Identity, "added")
	}
	for _, f := range cs.Removed {
		record(f.Identity, "removed")
	}
	for _, m := range cs.Modified {
		record(m.Identity, "modified")
	}
}

func TestDiffOrdering(t *testing.T) {
	z := mkFact("z.py", "z.z", "h1")
	a := mkFact("a.py", "a.a", "h1")
	m := mkFact("m.py", "m.m", "h1")

	baseline := mkSnapshot(t, "base", nil)
	current := mkSnapshot(t, "head", []FileResult{
		{Path: "z.py", Facts: []facts.Fact{z}},
		{Path: "a.py", Facts: []facts.Fact{a}},
		{Path: "m.py", Facts: []facts.Fact{m}},
	})

	cs := Diff(baseline, current)
	if len(cs.Added) != 3 {
		t.Fatalf("expected 3 added, got %d", len(cs.Added))
	}
	for i := 1; i < len(cs.Added); i++ {
		if cs.Added[i-1].FilePath > cs.Added[i].FilePath {
			t.Error("added facts not ordered by file path")
		}
	}
}
