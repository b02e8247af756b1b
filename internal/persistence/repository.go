package persistence

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	treesBucket = "trees"
)

// ErrTreeNotFound is returned when no record exists for a root.
var ErrTreeNotFound = errors.New("persistence: tree not found")

// TreeRecord is the stored form of a built tree: the root, the full
// layer sequence in hex, and how it was produced.
type TreeRecord struct {
	Root      string     `cbor:"root" json:"root"`
	Algorithm string     `cbor:"algorithm" json:"algorithm"`
	LeafCount int        `cbor:"leaf_count" json:"leaf_count"`
	Depth     int        `cbor:"depth" json:"depth"`
	Layers    [][]string `cbor:"layers" json:"layers"`
	CreatedAt int64      `cbor:"created_at" json:"created_at"`
}

type TreeRepository struct {
	db *bolt.DB
}

func NewTreeRepository(dbPath string) (*TreeRepository, error) {
	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", dbPath, err)
	}

	logrus.WithField("db_path", dbPath).Info("Database opened")

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(treesBucket))
		if err != nil {
			return fmt.Errorf("failed to create trees bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &TreeRepository{
		db: db,
	}, nil
}

func (r *TreeRepository) SaveTree(record *TreeRecord) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(treesBucket))
		if bucket == nil {
			return fmt.Errorf("trees bucket not found")
		}
		encoded, err := cbor.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal tree record: %w", err)
		}
		return bucket.Put([]byte(record.Root), encoded)
	})
}

func (r *TreeRepository) GetTree(root string) (*TreeRecord, error) {
	var record *TreeRecord

	err := r.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(treesBucket))
		if bucket == nil {
			return fmt.Errorf("trees bucket not found")
		}
		encoded := bucket.Get([]byte(root))
		if encoded == nil {
			return ErrTreeNotFound
		}
		var rec TreeRecord
		if err := cbor.Unmarshal(encoded, &rec); err != nil {
			return fmt.Errorf("failed to unmarshal tree record: %w", err)
		}
		record = &rec
		return nil
	})

	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *TreeRepository) ListRoots() ([]string, error) {
	roots := make([]string, 0)

	err := r.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(treesBucket))
		if bucket == nil {
			return fmt.Errorf("trees bucket not found")
		}
		c := bucket.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			roots = append(roots, string(k))
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list roots: %w", err)
	}
	return roots, nil
}

func (r *TreeRepository) Close() {
	logrus.Info("Closing database")
	if err := r.db.Close(); err != nil {
		logrus.WithError(err).Error("Failed to close database")
	}
}
