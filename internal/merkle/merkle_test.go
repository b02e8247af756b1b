package merkle_test

import (
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseferreira/Merkle-Digest-Service/internal/merkle"
)

type testItem string

func (it testItem) HashInput() []byte { return []byte(it) }

func items(data ...string) []testItem {
	out := make([]testItem, len(data))
	for i, d := range data {
		out[i] = testItem(d)
	}
	return out
}

func sum(data []byte) []byte {
	s := sha256.Sum256(data)
	return s[:]
}

func pair(left, right []byte) []byte {
	return sum(append(append([]byte{}, left...), right...))
}

func TestKnownVectorTwoItems(t *testing.T) {
	tree, err := merkle.New(items("alice->bob:10", "bob->charlie:5"))
	require.NoError(t, err)

	ha := sum([]byte("alice->bob:10"))
	hb := sum([]byte("bob->charlie:5"))

	layers := tree.Layers()
	require.Len(t, layers, 2)
	require.Len(t, layers[0], 2)
	assert.Equal(t, merkle.Fingerprint(ha), layers[0][0])
	assert.Equal(t, merkle.Fingerprint(hb), layers[0][1])

	assert.Equal(t, merkle.Fingerprint(pair(ha, hb)), tree.Root())
	assert.Equal(t, 2, tree.Depth())
}

func TestKnownVectorThreeItems(t *testing.T) {
	tree, err := merkle.New(items("x", "y", "z"))
	require.NoError(t, err)

	hx, hy, hz := sum([]byte("x")), sum([]byte("y")), sum([]byte("z"))

	layers := tree.Layers()
	require.Len(t, layers, 3)
	require.Len(t, layers[0], 3)

	require.Len(t, layers[1], 2)
	assert.Equal(t, merkle.Fingerprint(pair(hx, hy)), layers[1][0])
	assert.Equal(t, merkle.Fingerprint(pair(hz, hz)), layers[1][1])

	assert.Equal(t, merkle.Fingerprint(pair(pair(hx, hy), pair(hz, hz))), tree.Root())
	assert.Equal(t, 3, tree.Depth())
}

func TestDeterminism(t *testing.T) {
	data := items("A", "B", "C", "D", "E")
	first, err := merkle.New(data)
	require.NoError(t, err)
	second, err := merkle.New(data)
	require.NoError(t, err)

	assert.Equal(t, first.Root().String(), second.Root().String())
}

func TestOrderSensitivity(t *testing.T) {
	forward, err := merkle.New(items("A", "B", "C"))
	require.NoError(t, err)
	reversed, err := merkle.New(items("C", "B", "A"))
	require.NoError(t, err)

	assert.NotEqual(t, forward.Root().String(), reversed.Root().String())
}

func TestSingleItem(t *testing.T) {
	tree, err := merkle.New(items("only"))
	require.NoError(t, err)

	assert.Equal(t, merkle.Fingerprint(sum([]byte("only"))), tree.Root())
	assert.Equal(t, 1, tree.Depth())
	require.Len(t, tree.Layers(), 1)
	assert.Equal(t, tree.Root(), tree.Layers()[0][0])
}

func TestEmptyInput(t *testing.T) {
	tree, err := merkle.New([]testItem{})
	require.ErrorIs(t, err, merkle.ErrEmptyInput)
	assert.Nil(t, tree)
}

func TestDepthGrowth(t *testing.T) {
	// Each halving, rounding up, adds a layer until a singleton remains.
	wantDepths := []int{1, 2, 3, 3, 4}
	for n := 1; n <= len(wantDepths); n++ {
		data := make([]testItem, n)
		for i := range data {
			data[i] = testItem(fmt.Sprintf("leaf-%d", i))
		}
		tree, err := merkle.New(data)
		require.NoError(t, err)
		assert.Equal(t, wantDepths[n-1], tree.Depth(), "n=%d", n)
	}
}

func TestOddLayerDuplication(t *testing.T) {
	data := items("a", "b", "c", "d", "e")
	tree, err := merkle.New(data)
	require.NoError(t, err)

	layers := tree.Layers()
	require.Len(t, layers[0], 5)
	require.Len(t, layers[1], 3)

	lastLeaf := layers[0][4]
	assert.Equal(t, merkle.Fingerprint(pair(lastLeaf, lastLeaf)), layers[1][2])
}

func TestLayerInvariants(t *testing.T) {
	data := items("1", "2", "3", "4", "5", "6", "7")
	tree, err := merkle.New(data)
	require.NoError(t, err)

	layers := tree.Layers()
	assert.Len(t, layers[0], len(data))
	assert.Len(t, layers[len(layers)-1], 1)
	for i := 0; i < len(layers)-1; i++ {
		assert.Equal(t, (len(layers[i])+1)/2, len(layers[i+1]), "layer %d", i+1)
	}
	assert.Equal(t, len(layers), tree.Depth())
}

func TestWorkersMatchSerial(t *testing.T) {
	data := make([]testItem, 33)
	for i := range data {
		data[i] = testItem(fmt.Sprintf("item-%d", i))
	}

	serial, err := merkle.New(data)
	require.NoError(t, err)
	parallel, err := merkle.New(data, merkle.WithWorkers(4))
	require.NoError(t, err)

	assert.Equal(t, serial.Root().String(), parallel.Root().String())
	assert.Equal(t, serial.Depth(), parallel.Depth())
}

func TestCustomHash(t *testing.T) {
	salted := func(data []byte) merkle.Fingerprint {
		return merkle.SHA256(append([]byte{0xff}, data...))
	}

	plain, err := merkle.New(items("a", "b"))
	require.NoError(t, err)
	custom, err := merkle.New(items("a", "b"), merkle.WithHash(salted))
	require.NoError(t, err)

	assert.NotEqual(t, plain.Root().String(), custom.Root().String())
	assert.Equal(t, plain.Depth(), custom.Depth())
}

func TestFingerprintString(t *testing.T) {
	tree, err := merkle.New(items("hex me"))
	require.NoError(t, err)

	root := tree.Root().String()
	assert.Len(t, root, 64)
	assert.Regexp(t, "^[0-9a-f]+$", root)
}
