// Package knn provides an exact brute-force nearest-neighbour index over the
// fitted listing vectors of a bundle.
//
// Stored vectors are float32; they are widened once at build time and every
// distance is computed in float64.
package knn

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/internrec/internal/core/domain"
	"github.com/custodia-labs/internrec/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// cancelCheckEvery is how many rows are scored between context checks.
const cancelCheckEvery = 1024

// Index scores every row against the query. Immutable after New.
type Index struct {
	metric  domain.Metric
	dim     int
	vectors [][]float64
	norms   []float64
}

// New builds an index from fitted vectors. Norms are precomputed for cosine.
func New(params domain.IndexParams) (*Index, error) {
	if !params.Metric.IsValid() {
		return nil, fmt.Errorf("knn: %w: %q", domain.ErrUnsupportedMetric, params.Metric)
	}
	idx := &Index{
		metric:  params.Metric,
		vectors: make([][]float64, len(params.Vectors)),
		norms:   make([]float64, len(params.Vectors)),
	}
	if len(params.Vectors) > 0 {
		idx.dim = len(params.Vectors[0])
	}
	for j, v := range params.Vectors {
		if len(v) != idx.dim {
			return nil, fmt.Errorf("knn: %w: vector %d has %d dimensions, want %d",
				domain.ErrBundleInvalid, j, len(v), idx.dim)
		}
		wide := make([]float64, len(v))
		for d, x := range v {
			wide[d] = float64(x)
		}
		idx.vectors[j] = wide
		idx.norms[j] = norm(wide)
	}
	return idx, nil
}

// Len returns the number of indexed rows.
func (i *Index) Len() int {
	return len(i.vectors)
}

// Metric returns the distance metric.
func (i *Index) Metric() domain.Metric {
	return i.metric
}

// KNeighbors returns the k closest rows by ascending distance, ties by ascending row.
func (i *Index) KNeighbors(ctx context.Context, query []float64, k int) ([]driven.Neighbor, error) {
	if k <= 0 {
		return nil, fmt.Errorf("knn: %w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	if k > len(i.vectors) {
		return nil, fmt.Errorf("knn: %w: expected k <= rows, but rows = %d, k = %d",
			domain.ErrInsufficientListings, len(i.vectors), k)
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("knn: %w: query has %d dimensions, index has %d",
			domain.ErrInvalidInput, len(query), i.dim)
	}

	qn := norm(query)

	neighbors := make([]driven.Neighbor, len(i.vectors))
	for j, v := range i.vectors {
		if j%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		neighbors[j] = driven.Neighbor{Row: j, Distance: i.distance(query, qn, v, i.norms[j])}
	}

	sort.SliceStable(neighbors, func(a, b int) bool {
		return neighbors[a].Distance < neighbors[b].Distance
	})
	return neighbors[:k], nil
}

func (i *Index) distance(q []float64, qn float64, v []float64, vn float64) float64 {
	if i.metric == domain.MetricEuclidean {
		var sum float64
		for d := range q {
			diff := q[d] - v[d]
			sum += diff * diff
		}
		return math.Sqrt(sum)
	}

	// A zero vector has no direction; treat it as orthogonal to everything.
	if qn == 0 || vn == 0 {
		return 1
	}
	var dot float64
	for d := range q {
		dot += q[d] * v[d]
	}
	// Clamp rounding error so identical vectors sit at exactly 0.
	return math.Min(math.Max(1-dot/(qn*vn), 0), 2)
}

func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
