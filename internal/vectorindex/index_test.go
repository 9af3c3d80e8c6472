// File path: internal/vectorindex/index_test.go
package vectorindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndex(t *testing.T, vectors [][]float32) *FlatIndex {
	t.Helper()
	index, err := NewFlatIndex(vectors)
	require.NoError(t, err)
	return index
}

func TestNewFlatIndexRejectsEmpty(t *testing.T) {
	_, err := NewFlatIndex(nil)
	assert.ErrorIs(t, err, ErrEmptyIndex)
}

func TestNewFlatIndexRejectsRaggedDimensions(t *testing.T) {
	_, err := NewFlatIndex([][]float32{{1, 0}, {1, 0, 0}})
	assert.Error(t, err)
}

func TestSearchOrdersByDistance(t *testing.T) {
	index := testIndex(t, [][]float32{
		{0, 0}, // ordinal 0, distance 2 from (1,1)
		{1, 1}, // ordinal 1, distance 0
		{2, 1}, // ordinal 2, distance 1
	})
	results, err := index.Search([]float32{1, 1}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 1, results[0].Ordinal)
	assert.Equal(t, 2, results[1].Ordinal)
	assert.Equal(t, 0, results[2].Ordinal)
	assert.Equal(t, 0.0, results[0].Distance)
	assert.Equal(t, 1.0, results[1].Distance)
	assert.Equal(t, 2.0, results[2].Distance)
}

func TestSearchBreaksTiesByOrdinal(t *testing.T) {
	// All four vectors are equidistant from the origin query.
	index := testIndex(t, [][]float32{
		{0, 1},
		{1, 0},
		{0, -1},
		{-1, 0},
	})
	results, err := index.Search([]float32{0, 0}, 4)
	require.NoError(t, err)
	for i, res := range results {
		assert.Equal(t, i, res.Ordinal)
		assert.Equal(t, 1.0, res.Distance)
	}
}

func TestSearchDeterministic(t *testing.T) {
	index := testIndex(t, [][]float32{
		{0.5, 0.5}, {0.5, 0.5}, {0.1, 0.9}, {0.9, 0.1},
	})
	query := []float32{0.4, 0.6}
	first, err := index.Search(query, 4)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := index.Search(query, 4)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSearchKBounds(t *testing.T) {
	index := testIndex(t, [][]float32{{0}, {1}, {2}})

	results, err := index.Search([]float32{0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 3, "k beyond corpus size returns all vectors")

	results, err = index.Search([]float32{0}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	_, err = index.Search([]float32{0}, 0)
	assert.ErrorIs(t, err, ErrInvalidK)

	_, err = index.Search([]float32{0}, -3)
	assert.ErrorIs(t, err, ErrInvalidK)
}

func TestSearchDimensionMismatch(t *testing.T) {
	index := testIndex(t, [][]float32{{0, 0, 0}})
	_, err := index.Search([]float32{0, 0}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
