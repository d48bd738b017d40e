package driven

import (
	"context"

	"github.com/custodia-labs/internrec/internal/core/domain"
)

// Vectorizer turns text into a vector using fitted state.
type Vectorizer interface {
	// Transform vectorizes a single document.
	Transform(text string) ([]float64, error)

	// Dimensions returns the vector size (the vocabulary size).
	Dimensions() int
}

// VectorIndex answers exact k-nearest-neighbour queries over fitted vectors.
type VectorIndex interface {
	// KNeighbors returns the k closest rows ordered by ascending distance.
	// Returns ErrInsufficientListings if k exceeds the number of rows.
	KNeighbors(ctx context.Context, query []float64, k int) ([]Neighbor, error)

	// Len returns the number of indexed rows.
	Len() int

	// Metric returns the distance metric.
	Metric() domain.Metric
}

// Neighbor is a kNN result.
type Neighbor struct {
	// Row is the position of the matched listing in the reference table.
	Row int

	// Distance is the metric distance to the query.
	Distance float64
}

// PipelineBuilder constructs the vectorizer and index from a loaded bundle.
type PipelineBuilder interface {
	Build(bundle *domain.Bundle) (Vectorizer, VectorIndex, error)
}
