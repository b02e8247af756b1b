package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/joseferreira/Merkle-Digest-Service/internal/domain"
	"github.com/joseferreira/Merkle-Digest-Service/internal/hashing"
	"github.com/joseferreira/Merkle-Digest-Service/internal/merkle"
	"github.com/joseferreira/Merkle-Digest-Service/internal/persistence"
)

// DigestService builds Merkle trees over submitted items, persists the
// resulting records and re-derives roots for verification.
type DigestService struct {
	repo      *persistence.TreeRepository
	algorithm string
	hash      merkle.Hash
	workers   int
}

func NewDigestService(repo *persistence.TreeRepository, algorithm string, workers int) (*DigestService, error) {
	if algorithm == "" {
		algorithm = hashing.DefaultAlgorithm
	}
	hash, err := hashing.ForAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}

	return &DigestService{
		repo:      repo,
		algorithm: algorithm,
		hash:      hash,
		workers:   workers,
	}, nil
}

// BuildTree reduces items to a tree, records metrics and persists the
// result. Returns merkle.ErrEmptyInput when there is nothing to digest.
func (s *DigestService) BuildTree(items []domain.Item) (*persistence.TreeRecord, error) {
	startTime := time.Now()

	tree, err := merkle.New(items, merkle.WithHash(s.hash), merkle.WithWorkers(s.workers))
	if err != nil {
		return nil, err
	}

	duration := time.Since(startTime)
	domain.TreeBuildTime.Observe(duration.Seconds())
	domain.TreesBuilt.Inc()
	domain.LeavesPerTree.Observe(float64(len(items)))

	record := &persistence.TreeRecord{
		Root:      tree.Root().String(),
		Algorithm: s.algorithm,
		LeafCount: len(items),
		Depth:     tree.Depth(),
		Layers:    layersToHex(tree.Layers()),
		CreatedAt: time.Now().Unix(),
	}

	if err := s.repo.SaveTree(record); err != nil {
		return nil, fmt.Errorf("failed to persist tree %s: %w", record.Root, err)
	}

	logrus.WithFields(logrus.Fields{
		"root":       record.Root,
		"depth":      record.Depth,
		"leaf_count": record.LeafCount,
		"algorithm":  record.Algorithm,
		"duration":   duration,
	}).Info("Tree built")

	return record, nil
}

// GetTree returns the stored record for a root.
func (s *DigestService) GetTree(root string) (*persistence.TreeRecord, error) {
	return s.repo.GetTree(root)
}

// ListRoots returns the roots of every stored tree.
func (s *DigestService) ListRoots() ([]string, error) {
	return s.repo.ListRoots()
}

// VerifyTree rebuilds the tree from items with the stored record's
// algorithm and reports whether the recomputed root matches.
func (s *DigestService) VerifyTree(root string, items []domain.Item) (bool, error) {
	record, err := s.repo.GetTree(root)
	if err != nil {
		return false, err
	}

	hash, err := hashing.ForAlgorithm(record.Algorithm)
	if err != nil {
		return false, err
	}

	tree, err := merkle.New(items, merkle.WithHash(hash), merkle.WithWorkers(s.workers))
	if err != nil {
		return false, err
	}

	isValid := tree.Root().String() == record.Root
	if isValid {
		domain.Verifications.WithLabelValues("valid").Inc()
		logrus.WithField("root", root).Info("Tree verification successful")
	} else {
		domain.Verifications.WithLabelValues("invalid").Inc()
		logrus.WithFields(logrus.Fields{
			"expected_root": record.Root,
			"actual_root":   tree.Root().String(),
		}).Warn("Tree verification failed: root mismatch")
	}

	return isValid, nil
}

func layersToHex(layers []merkle.Layer) [][]string {
	out := make([][]string, len(layers))
	for i, layer := range layers {
		out[i] = make([]string, len(layer))
		for j, fp := range layer {
			out[i][j] = fp.String()
		}
	}
	return out
}
