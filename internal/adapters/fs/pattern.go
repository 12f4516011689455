package fs

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/zerr"
)

// pattern is a compiled fileset pattern in doublestar syntax: '**' matches
// zero or more directories and '{a,b}' selects alternatives.
type pattern struct {
	raw  string
	glob string
	// dir is glob without its trailing "/**", set only for patterns that
	// select whole directory trees.
	dir   string
	prune bool
}

func compilePattern(raw string) (*pattern, error) {
	p := strings.TrimSpace(strings.ReplaceAll(raw, "\\", "/"))
	p = strings.TrimPrefix(p, "./")
	if p == "" {
		return nil, zerr.New("empty pattern")
	}
	// A trailing slash selects everything below the directory.
	if strings.HasSuffix(p, "/") {
		p += "**"
	}
	p = strings.Trim(p, "/")
	if _, err := doublestar.Match(p, ""); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "malformed pattern"), "pattern", raw)
	}

	c := &pattern{raw: raw, glob: p}
	switch {
	case p == "**":
		c.prune = true
	case strings.HasSuffix(p, "/**"):
		c.dir, c.prune = strings.TrimSuffix(p, "/**"), true
	}
	return c, nil
}

// Match reports whether the slash-separated relative path matches.
func (p *pattern) Match(rel string) bool {
	ok, err := doublestar.Match(p.glob, rel)
	return err == nil && ok
}

// MatchesDir reports whether every path below dir matches, which lets the
// resolver prune excluded directories.
func (p *pattern) MatchesDir(dir string) bool {
	if !p.prune {
		return false
	}
	if p.dir == "" {
		return true
	}
	ok, err := doublestar.Match(p.dir, dir)
	return err == nil && ok
}
