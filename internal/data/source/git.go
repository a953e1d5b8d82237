package source

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"codefacts/internal/core/errors"
	"codefacts/internal/shared/util"
)

// GitSource reads one revision's tree directly from the object store of
// a git repository, so the baseline never needs a checkout.
type GitSource struct {
	repo      string
	rev       string
	dirGlobs  []glob.Glob
	fileGlobs []glob.Glob
}

func NewGitSource(repo, rev string, excludeDirs, excludeFiles []string) (*GitSource, error) {
	s := &GitSource{repo: filepath.Clean(repo), rev: rev}

	for _, p := range excludeDirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		s.dirGlobs = append(s.dirGlobs, g)
	}
	for _, p := range excludeFiles {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
		s.fileGlobs = append(s.fileGlobs, g)
	}

	if _, err := s.git("rev-parse", "--verify", rev+"^{commit}"); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidation,
			fmt.Sprintf("revision %q not found in %s", rev, s.repo))
	}
	return s, nil
}

func (s *GitSource) List() ([]string, error) {
	out, err := s.git("ls-tree", "-r", "--name-only", "-z", s.rev)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, fmt.Sprintf("list tree of %q", s.rev))
	}

	var paths []string
	for _, raw := range strings.Split(string(out), "\x00") {
		if raw == "" {
			continue
		}
		path := util.NormalizePath(raw)
		if s.excluded(path) {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *GitSource) Read(path string) ([]byte, error) {
	out, err := s.git("show", s.rev+":"+util.NormalizePath(path))
	if err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeIO, fmt.Sprintf("read %q at %q", path, s.rev)),
			errors.CtxPath, path)
	}
	return out, nil
}

func (s *GitSource) excluded(path string) bool {
	segments := strings.Split(path, "/")
	for _, segment := range segments[:len(segments)-1] {
		for _, g := range s.dirGlobs {
			if g.Match(segment) {
				return true
			}
		}
	}
	base := segments[len(segments)-1]
	for _, g := range s.fileGlobs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (s *GitSource) git(args ...string) ([]byte, error) {
	cmd := exec.Command("git", append([]string{"-C", s.repo}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("git %s: %s", args[0], msg)
		}
		return nil, fmt.Errorf("git %s: %w", args[0], err)
	}
	return stdout.Bytes(), nil
}
