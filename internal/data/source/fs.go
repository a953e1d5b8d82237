package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"

	"codefacts/internal/shared/util"
)

// DirSource reads one revision's tree from a directory on disk,
// applying the configured exclude patterns while listing.
type DirSource struct {
	root      string
	dirGlobs  []glob.Glob
	fileGlobs []glob.Glob
}

func NewDirSource(root string, excludeDirs, excludeFiles []string) (*DirSource, error) {
	s := &DirSource{root: filepath.Clean(root)}

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
	return s, nil
}

func (s *DirSource) Root() string { return s.root }

func (s *DirSource) List() ([]string, error) {
	var files []string

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		base := filepath.Base(path)
		if d.IsDir() {
			if path != s.root {
				for _, g := range s.dirGlobs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		for _, g := range s.fileGlobs {
			if g.Match(base) {
				return nil
			}
		}

		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return relErr
		}
		files = append(files, util.NormalizePath(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (s *DirSource) Read(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, filepath.FromSlash(path)))
}

// Empty is a FileSource with no files, used when no baseline tree is
// available: every current fact then reports as added.
type Empty struct{}

func (Empty) List() ([]string, error) { return nil, nil }

func (Empty) Read(path string) ([]byte, error) {
	return nil, fmt.Errorf("no baseline content for %s", path)
}
