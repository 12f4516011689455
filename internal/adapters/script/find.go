package script

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	// DefaultFileName is preferred when a directory holds more than one script.
	DefaultFileName = "default.yaml"
	// Suffix identifies build scripts.
	Suffix = ".build.yaml"
)

// Find locates the build script in dir: default.yaml if present, otherwise
// the only *.build.yaml file. With findInParent the search walks up until a
// directory holds a script.
func (l *Loader) Find(dir string, findInParent bool) (string, error) {
	start, err := filepath.Abs(dir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve directory"), "dir", dir)
	}

	current := start
	for {
		path, err := findInDir(current)
		if err != nil || path != "" {
			return path, err
		}

		parent := filepath.Dir(current)
		if !findInParent || parent == current {
			break
		}
		current = parent
	}

	msg := fmt.Sprintf("could not find a '%s' or '*%s' file in '%s'", DefaultFileName, Suffix, start)
	if findInParent {
		msg += " or its parent directories"
	}
	return "", zerr.With(zerr.Wrap(domain.ErrScriptNotFound, msg), "dir", start)
}

func findInDir(dir string) (string, error) {
	defaultPath := filepath.Join(dir, DefaultFileName)
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", nil //nolint:nilerr // unreadable directories hold no script
	}

	var candidates []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), Suffix) {
			candidates = append(candidates, e.Name())
		}
	}

	switch len(candidates) {
	case 0:
		return "", nil
	case 1:
		return filepath.Join(dir, candidates[0]), nil
	default:
		slices.Sort(candidates)
		msg := fmt.Sprintf("more than one '*%s' file found in '%s' (%s); use --buildfile to choose one",
			Suffix, dir, strings.Join(candidates, ", "))
		return "", zerr.With(zerr.Wrap(domain.ErrAmbiguousScript, msg), "dir", dir)
	}
}
