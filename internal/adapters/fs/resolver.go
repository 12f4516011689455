package fs

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileResolver = (*Resolver)(nil)

// Resolver expands fileset patterns by walking the base directory.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{walker: NewWalker()}
}

// Resolve returns the sorted absolute paths of the files below baseDir that
// match an include pattern and no exclude pattern. A missing base directory
// yields no files.
func (r *Resolver) Resolve(baseDir string, includes, excludes []string) ([]string, error) {
	inc, err := compileAll(includes)
	if err != nil {
		return nil, err
	}
	exc, err := compileAll(excludes)
	if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve directory"), "path", baseDir)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, nil
	}

	skip := func(path string, d fs.DirEntry) bool {
		if !d.IsDir() {
			return false
		}
		rel := relSlash(root, path)
		for _, p := range exc {
			if p.MatchesDir(rel) {
				return true
			}
		}
		return false
	}

	var files []string
	for path := range r.walker.walk(root, skip) {
		rel := relSlash(root, path)
		if matchAny(inc, rel) && !matchAny(exc, rel) {
			files = append(files, path)
		}
	}
	slices.Sort(files)
	return files, nil
}

func compileAll(raw []string) ([]*pattern, error) {
	out := make([]*pattern, 0, len(raw))
	for _, r := range raw {
		p, err := compilePattern(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func matchAny(patterns []*pattern, rel string) bool {
	for _, p := range patterns {
		if p.Match(rel) {
			return true
		}
	}
	return false
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
