// Package fs provides file system adapters for walking, matching and hashing files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields the path of every regular file below root. Directories
// and files whose base name matches one of ignores are skipped, as are
// version control metadata directories.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return w.walk(root, func(_ string, d fs.DirEntry) bool {
		return (d.IsDir() && isVCSDir(d.Name())) || matchesAny(d.Name(), ignores)
	})
}

// WalkDirs yields root and every directory below it, with the same skipping
// rules as WalkFiles.
func (w *Walker) WalkDirs(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable entries are skipped
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && (isVCSDir(d.Name()) || matchesAny(d.Name(), ignores)) {
				return filepath.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

// walk yields regular files below root. skip is consulted for every entry
// except root itself.
func (w *Walker) walk(root string, skip func(path string, d fs.DirEntry) bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable entries are skipped
			}
			if path != root {
				if skip(path, d) {
					if d.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func isVCSDir(name string) bool {
	return name == ".git" || name == ".jj"
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if matched, _ := filepath.Match(p, name); matched {
			return true
		}
	}
	return false
}
