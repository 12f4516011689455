package ports

// Hasher defines the interface for computing content hashes.
//
//go:generate mockgen -destination=mocks/hasher_mock.go -package=mocks -source=hasher.go
type Hasher interface {
	// ComputeFileHash computes the hash of a file's content.
	ComputeFileHash(path string) (uint64, error)

	// ComputeTreeHash computes a fingerprint over the paths and contents of
	// every file below root, skipping entries whose name matches ignores.
	ComputeTreeHash(root string, ignores []string) (string, error)
}
