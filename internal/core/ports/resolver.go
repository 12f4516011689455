package ports

// FileResolver expands include and exclude patterns into concrete files.
//
//go:generate mockgen -destination=mocks/resolver_mock.go -package=mocks -source=resolver.go
type FileResolver interface {
	// Resolve returns the sorted absolute paths of the regular files under
	// baseDir that match at least one include pattern and no exclude pattern.
	Resolve(baseDir string, includes, excludes []string) ([]string, error)
}
