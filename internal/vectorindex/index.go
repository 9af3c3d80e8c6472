// File path: internal/vectorindex/index.go

// Package vectorindex provides exact nearest-neighbor search over message
// embeddings. The index is built once from a corpus snapshot and is immutable
// afterwards; refreshing the corpus means building a new index and swapping
// it in wholesale.
package vectorindex

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDimensionMismatch indicates a query vector whose width differs
	// from the index dimension, usually an index/embedding-model version
	// skew.
	ErrDimensionMismatch = errors.New("query dimension mismatch")

	// ErrInvalidK rejects searches with k < 1.
	ErrInvalidK = errors.New("k must be at least 1")

	// ErrEmptyIndex rejects construction over zero vectors.
	ErrEmptyIndex = errors.New("index requires at least one vector")
)

// SearchResult pairs the ordinal of an indexed message with its squared L2
// distance from the query. Results are ordered ascending by distance, ties
// broken by ascending ordinal.
type SearchResult struct {
	Ordinal  int     `json:"ordinal"`
	Distance float64 `json:"distance"`
}

// FlatIndex is an exact squared-L2 nearest-neighbor index. Every stored
// vector is compared on each search. The index is immutable after
// construction and safe for concurrent use.
type FlatIndex struct {
	dim     int
	vectors [][]float32
}

// NewFlatIndex builds an index over the given vectors. The position of a
// vector in the slice becomes its ordinal. All vectors must share one
// dimension and at least one vector is required.
func NewFlatIndex(vectors [][]float32) (*FlatIndex, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyIndex
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("vector 0 has zero dimension")
	}
	stored := make([][]float32, len(vectors))
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(vec), dim)
		}
		cp := make([]float32, dim)
		copy(cp, vec)
		stored[i] = cp
	}
	return &FlatIndex{dim: dim, vectors: stored}, nil
}

// Dim returns the vector dimension fixed at build time.
func (f *FlatIndex) Dim() int { return f.dim }

// Len returns the number of indexed vectors.
func (f *FlatIndex) Len() int { return len(f.vectors) }

// Vectors returns the stored vectors in ordinal order. The returned slices
// must not be mutated.
func (f *FlatIndex) Vectors() [][]float32 { return f.vectors }

// Search returns the min(k, Len) nearest vectors to the query, ordered
// ascending by squared L2 distance with ties broken by ascending ordinal.
func (f *FlatIndex) Search(query []float32, k int) ([]SearchResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(query), f.dim)
	}
	results := make([]SearchResult, len(f.vectors))
	for i, vec := range f.vectors {
		results[i] = SearchResult{Ordinal: i, Distance: squaredL2(query, vec)}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Ordinal < results[j].Ordinal
	})
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
