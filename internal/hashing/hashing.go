// Package hashing names the digest primitives the service can build
// trees with.
package hashing

import (
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/joseferreira/Merkle-Digest-Service/internal/merkle"
)

const (
	SHA256 = "sha256"
	Blake3 = "blake3"

	DefaultAlgorithm = SHA256
)

// ForAlgorithm resolves an algorithm name to a hash primitive. An empty
// name resolves to the default.
func ForAlgorithm(name string) (merkle.Hash, error) {
	switch name {
	case SHA256, "":
		return merkle.SHA256, nil
	case Blake3:
		return blake3Hash, nil
	default:
		return nil, fmt.Errorf("hashing: unknown algorithm %q", name)
	}
}

func blake3Hash(data []byte) merkle.Fingerprint {
	sum := blake3.Sum256(data)
	return sum[:]
}
