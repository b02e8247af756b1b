// Package merkle builds a Merkle tree as a funnel: an ordered sequence of
// layers, each produced by pairwise-hashing the layer below, ending in a
// single root digest. The tree keeps every intermediate layer so the full
// reduction can be inspected and recomputed for verification.
package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrEmptyInput is returned by New when there are no items to reduce.
// There is no default root; callers must handle this explicitly.
var ErrEmptyInput = errors.New("merkle: cannot build a tree from zero items")

// Fingerprint is a fixed-length digest produced by the hash primitive.
// It renders as a lowercase hex string.
type Fingerprint []byte

func (f Fingerprint) String() string {
	return hex.EncodeToString(f)
}

// Layer is one level of the reduction, ordered left to right.
// Layer 0 holds the leaf fingerprints, one per input item.
type Layer []Fingerprint

// Hashable is the contract an item must satisfy to be reducible:
// yield the bytes that identify its content.
type Hashable interface {
	HashInput() []byte
}

// Hash is the pluggable digest primitive. It must be deterministic and
// pure; the reducer never depends on its block size or padding.
type Hash func(data []byte) Fingerprint

// SHA256 is the default hash primitive.
func SHA256(data []byte) Fingerprint {
	sum := sha256.Sum256(data)
	return sum[:]
}

// Tree is the full layer sequence, from leaf layer to singleton root
// layer. A Tree is built once and never modified.
type Tree struct {
	layers []Layer
}

type builder struct {
	hash    Hash
	workers int
}

// Option configures tree construction.
type Option func(*builder)

// WithHash substitutes the hash primitive. Defaults to SHA256.
func WithHash(h Hash) Option {
	return func(b *builder) { b.hash = h }
}

// WithWorkers hashes the leaves and the pairs within a layer across n
// goroutines. Layers are still produced strictly one after another, and
// the resulting root is identical to the serial computation.
func WithWorkers(n int) Option {
	return func(b *builder) { b.workers = n }
}

// New reduces items to a Tree. The leaf layer preserves input order
// exactly; each further layer pairs consecutive fingerprints and hashes
// left||right, duplicating a trailing unpaired element against itself.
// The loop stops when a layer holds a single fingerprint, the root.
func New[T Hashable](items []T, opts ...Option) (*Tree, error) {
	if len(items) == 0 {
		return nil, ErrEmptyInput
	}

	b := &builder{hash: SHA256}
	for _, opt := range opts {
		opt(b)
	}

	leaves := make(Layer, len(items))
	b.forEach(len(items), func(i int) {
		leaves[i] = b.hash(items[i].HashInput())
	})

	layers := []Layer{leaves}
	for current := leaves; len(current) > 1; {
		next := b.reduce(current)
		layers = append(layers, next)
		current = next
	}

	return &Tree{layers: layers}, nil
}

// reduce produces the next layer up from current, left to right.
func (b *builder) reduce(current Layer) Layer {
	next := make(Layer, (len(current)+1)/2)
	b.forEach(len(next), func(i int) {
		chunk := current[2*i : min(2*i+2, len(current))]
		switch len(chunk) {
		case 2:
			next[i] = b.hashPair(chunk[0], chunk[1])
		case 1:
			// Odd trailing element: hash it with itself so it still
			// contributes to the root.
			next[i] = b.hashPair(chunk[0], chunk[0])
		default:
			panic(fmt.Sprintf("merkle: impossible chunk of %d fingerprints", len(chunk)))
		}
	})
	return next
}

// hashPair concatenates the raw digest bytes, left then right. The
// concatenation order is part of the contract: swapping it changes every
// root.
func (b *builder) hashPair(left, right Fingerprint) Fingerprint {
	buf := make([]byte, 0, len(left)+len(right))
	buf = append(buf, left...)
	buf = append(buf, right...)
	return b.hash(buf)
}

func (b *builder) forEach(n int, fn func(i int)) {
	if b.workers <= 1 || n < 2 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(b.workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait() // the hash primitive is infallible
}

// Root returns the single fingerprint in the final layer.
func (t *Tree) Root() Fingerprint {
	top := t.layers[len(t.layers)-1]
	return top[0]
}

// Depth returns the number of layers, leaf layer included.
func (t *Tree) Depth() int {
	return len(t.layers)
}

// Layers returns the layer sequence, leaf layer first. The returned
// slice is a copy; the tree itself stays immutable.
func (t *Tree) Layers() []Layer {
	out := make([]Layer, len(t.layers))
	copy(out, t.layers)
	return out
}
