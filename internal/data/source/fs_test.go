package source

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDirSourceListAndRead(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "x = 1\n")
	writeFile(t, root, "pkg/b.go", "package pkg\n")
	writeFile(t, root, "node_modules/dep/index.js", "ignored")
	writeFile(t, root, "c.gen.go", "generated")

	s, err := NewDirSource(root, []string{"node_modules"}, []string{"*.gen.go"})
	if err != nil {
		t.Fatal(err)
	}

	files, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.py", "pkg/b.go"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("got %v, want %v", files, want)
	}

	content, err := s.Read("pkg/b.go")
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "package pkg\n" {
		t.Errorf("unexpected content: %q", content)
	}
}

func TestDirSourceRejectsBadPattern(t *testing.T) {
	if _, err := NewDirSource(t.TempDir(), []string{"["}, nil); err == nil {
		t.Error("expected error for invalid glob")
	}
}

func TestEmptySource(t *testing.T) {
	var s Empty
	files, err := s.List()
	if err != nil || len(files) != 0 {
		t.Errorf("expected no files, got %v, %v", files, err)
	}
	if _, err := s.Read("a.py"); err == nil {
		t.Error("expected read error from empty source")
	}
}
