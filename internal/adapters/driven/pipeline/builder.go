// Package pipeline assembles the fitted vectorizer and nearest-neighbour index
// stored in a bundle into working driven ports.
package pipeline

import (
	"fmt"

	"github.com/custodia-labs/internrec/internal/adapters/driven/knn"
	"github.com/custodia-labs/internrec/internal/adapters/driven/tfidf"
	"github.com/custodia-labs/internrec/internal/core/domain"
	"github.com/custodia-labs/internrec/internal/core/ports/driven"
)

// Ensure Builder implements the interface.
var _ driven.PipelineBuilder = (*Builder)(nil)

// Builder creates a tfidf.Vectorizer and knn.Index from a bundle.
type Builder struct{}

// NewBuilder creates a pipeline builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build validates the bundle and returns its vectorizer and index.
// The index dimension must match the vectorizer's vocabulary size.
func (b *Builder) Build(bundle *domain.Bundle) (driven.Vectorizer, driven.VectorIndex, error) {
	if err := bundle.Validate(); err != nil {
		return nil, nil, fmt.Errorf("validating bundle: %w", err)
	}

	vectorizer, err := tfidf.New(bundle.Vectorizer)
	if err != nil {
		return nil, nil, fmt.Errorf("building vectorizer: %w", err)
	}

	index, err := knn.New(bundle.Index)
	if err != nil {
		return nil, nil, fmt.Errorf("building index: %w", err)
	}

	return vectorizer, index, nil
}
