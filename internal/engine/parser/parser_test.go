package parser

import (
	"testing"

	"codefacts/internal/core/errors"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	loader, err := NewGrammarLoader()
	if err != nil {
		t.Fatal(err)
	}
	return NewParser(loader)
}

func TestResolveByExtension(t *testing.T) {
	p := newTestParser(t)

	cases := map[string]string{
		"a.py":          "python",
		"src/b.go":      "go",
		"c.js":          "javascript",
		"d.ts":          "typescript",
		"e.tsx":         "tsx",
		"F.Java":        "java",
		"g.rs":          "rust",
		"README.md":     "",
		"style.css":     "", // registered but disabled by default
		"index.html":    "",
		"Makefile":      "",
		"noextension":   "",
		"dir/other.txt": "",
	}
	for path, want := range cases {
		if got := p.Resolve(path, nil); got != want {
			t.Errorf("Resolve(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestResolveShebang(t *testing.T) {
	p := newTestParser(t)

	if got := p.Resolve("scripts/run", []byte("#!/usr/bin/env python3\nprint(1)\n")); got != "python" {
		t.Errorf("expected python for env shebang, got %q", got)
	}
	if got := p.Resolve("scripts/run", []byte("#!/usr/bin/python\n")); got != "python" {
		t.Errorf("expected python for direct shebang, got %q", got)
	}
	if got := p.Resolve("scripts/run", []byte("#!/bin/sh\n")); got != "" {
		t.Errorf("expected unsupported for sh shebang, got %q", got)
	}
	if got := p.Resolve("scripts/run", []byte("no shebang here")); got != "" {
		t.Errorf("expected unsupported without shebang, got %q", got)
	}
}

func TestParseProducesTree(t *testing.T) {
	p := newTestParser(t)

	tree, err := p.Parse("python", []byte("def foo():\n    return 1\n"))
	if err != nil {
		t.Fatal(err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.Kind() != "module" {
		t.Errorf("expected module root, got %s", root.Kind())
	}
}

func TestParseRejectsBrokenSource(t *testing.T) {
	p := newTestParser(t)

	_, err := p.Parse("python", []byte("def broken(:::\n"))
	if err == nil {
		t.Fatal("expected parse failure")
	}
	if !errors.IsCode(err, errors.CodeParseFailed) {
		t.Errorf("expected PARSE_FAILED, got %v", err)
	}
}

func TestParseUnknownLanguage(t *testing.T) {
	p := newTestParser(t)

	_, err := p.Parse("cobol", []byte(""))
	if !errors.IsCode(err, errors.CodeNotSupported) {
		t.Errorf("expected NOT_SUPPORTED, got %v", err)
	}
}

func TestParseDeterminism(t *testing.T) {
	p := newTestParser(t)
	src := []byte("package main\n\nfunc main() {}\n")

	first, err := p.Parse("go", src)
	if err != nil {
		t.Fatal(err)
	}
	defer first.Close()
	second, err := p.Parse("go", src)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	if first.RootNode().ToSexp() != second.RootNode().ToSexp() {
		t.Error("expected structurally identical trees for identical input")
	}
}

func TestBuildLanguageRegistryOverrides(t *testing.T) {
	disabled := false
	registry, err := BuildLanguageRegistry(map[string]LanguageOverride{
		"rust":   {Enabled: &disabled},
		"python": {Extensions: []string{".py", "pyi"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if registry["rust"].Enabled {
		t.Error("expected rust to be disabled")
	}
	got := registry["python"].Extensions
	if len(got) != 2 || got[0] != ".py" || got[1] != ".pyi" {
		t.Errorf("unexpected python extensions: %v", got)
	}
}

func TestBuildLanguageRegistryRejectsUnknown(t *testing.T) {
	if _, err := BuildLanguageRegistry(map[string]LanguageOverride{"cobol": {}}); err == nil {
		t.Error("expected error for unknown language override")
	}
}

func TestParserPoolReuse(t *testing.T) {
	loader, err := NewGrammarLoader()
	if err != nil {
		t.Fatal(err)
	}
	pool := NewParserPool(loader.Language("go"))

	sp := pool.Get()
	if pool.Stats() != 1 {
		t.Errorf("expected 1 active lease, got %d", pool.Stats())
	}
	pool.Put(sp)
	if pool.Stats() != 0 {
		t.Errorf("expected 0 active leases, got %d", pool.Stats())
	}
}
