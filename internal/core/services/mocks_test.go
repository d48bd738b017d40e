package services

import (
	"context"

	"github.com/custodia-labs/internrec/internal/core/domain"
	"github.com/custodia-labs/internrec/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockBundleStore implements driven.BundleStore for testing.
type mockBundleStore struct {
	bundle  *domain.Bundle
	info    *domain.BundleInfo
	loadErr error
	infoErr error
	saved   *domain.Bundle
}

func (m *mockBundleStore) Load(_ context.Context) (*domain.Bundle, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.bundle, nil
}

func (m *mockBundleStore) Info(_ context.Context) (*domain.BundleInfo, error) {
	if m.infoErr != nil {
		return nil, m.infoErr
	}
	return m.info, nil
}

func (m *mockBundleStore) Save(_ context.Context, bundle *domain.Bundle) error {
	m.saved = bundle
	return nil
}

// mockPipelineBuilder implements driven.PipelineBuilder for testing.
type mockPipelineBuilder struct {
	vectorizer driven.Vectorizer
	index      driven.VectorIndex
	err        error
}

func (m *mockPipelineBuilder) Build(_ *domain.Bundle) (driven.Vectorizer, driven.VectorIndex, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.vectorizer, m.index, nil
}

// mockVectorizer implements driven.Vectorizer for testing.
type mockVectorizer struct {
	vec      []float64
	err      error
	lastText string
}

func (m *mockVectorizer) Transform(text string) ([]float64, error) {
	m.lastText = text
	if m.err != nil {
		return nil, m.err
	}
	return m.vec, nil
}

func (m *mockVectorizer) Dimensions() int {
	return len(m.vec)
}

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	neighbors []driven.Neighbor
	err       error
	lastK     int
}

func (m *mockVectorIndex) KNeighbors(_ context.Context, _ []float64, k int) ([]driven.Neighbor, error) {
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	return m.neighbors, nil
}

func (m *mockVectorIndex) Len() int {
	return len(m.neighbors)
}

func (m *mockVectorIndex) Metric() domain.Metric {
	return domain.MetricCosine
}

// mockRecommender implements driving.RecommendService for testing.
type mockRecommender struct {
	results   []domain.Recommendation
	err       error
	calls     int
	lastQuery domain.Query
}

func (m *mockRecommender) Recommend(_ context.Context, query domain.Query) ([]domain.Recommendation, error) {
	m.calls++
	m.lastQuery = query
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// mockListingSource implements driven.ListingSource for testing.
type mockListingSource struct {
	err error
}

func (m *mockListingSource) Listings(_ context.Context) ([]domain.Record, error) {
	return nil, m.err
}
