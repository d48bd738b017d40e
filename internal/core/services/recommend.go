package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/internrec/internal/core/domain"
	"github.com/custodia-labs/internrec/internal/core/ports/driven"
	"github.com/custodia-labs/internrec/internal/core/ports/driving"
	"github.com/custodia-labs/internrec/internal/logger"
)

// Ensure RecommendService implements the interface.
var _ driving.RecommendService = (*RecommendService)(nil)

// RecommendService ranks the bundle's reference listings by vector similarity.
type RecommendService struct {
	bundles   driven.BundleStore
	builder   driven.PipelineBuilder
	fallback  driving.RecommendService
	neighbors int
}

// NewRecommendService creates a recommend service returning neighbors results.
// fallback may be nil; when set it answers queries the bundle cannot.
func NewRecommendService(
	bundles driven.BundleStore,
	builder driven.PipelineBuilder,
	fallback driving.RecommendService,
	neighbors int,
) *RecommendService {
	return &RecommendService{
		bundles:   bundles,
		builder:   builder,
		fallback:  fallback,
		neighbors: neighbors,
	}
}

// Recommend loads the bundle, vectorizes the query and returns the nearest listings.
// If the bundle cannot be loaded and a fallback is configured, the fallback's
// results are returned instead.
func (s *RecommendService) Recommend(ctx context.Context, query domain.Query) ([]domain.Recommendation, error) {
	logger.Section("Recommendation")
	logger.Debug("Query: sector=%q location=%q tech=%q", query.Sector, query.Location, query.Tech)

	if s.neighbors <= 0 {
		return nil, fmt.Errorf("%w: neighbors must be positive, got %d", domain.ErrInvalidInput, s.neighbors)
	}

	done := logger.Stage("load bundle")
	bundle, err := s.bundles.Load(ctx)
	done()
	if err != nil {
		if s.fallback == nil {
			return nil, fmt.Errorf("loading bundle: %w", err)
		}
		logger.Warn("Bundle unavailable (%v), using keyword fallback", err)
		return s.fallback.Recommend(ctx, query)
	}
	logger.Debug("Bundle %s: %d listings, %d terms, metric=%s",
		bundle.Info.ID, len(bundle.Listings), bundle.Vectorizer.Features(), bundle.Index.Metric)

	vectorizer, index, err := s.builder.Build(bundle)
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}

	text := query.Text()
	logger.Debug("Query text: %q", text)

	done = logger.Stage("vectorize")
	vec, err := vectorizer.Transform(text)
	done()
	if err != nil {
		return nil, fmt.Errorf("vectorizing query: %w", err)
	}

	done = logger.Stage("nearest neighbours")
	neighbors, err := index.KNeighbors(ctx, vec, s.neighbors)
	done()
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	results := make([]domain.Recommendation, 0, len(neighbors))
	for _, n := range neighbors {
		if n.Row < 0 || n.Row >= len(bundle.Listings) {
			return nil, fmt.Errorf("%w: neighbour row %d outside reference table of %d",
				domain.ErrBundleInvalid, n.Row, len(bundle.Listings))
		}
		results = append(results, domain.NewRecommendation(bundle.Listings[n.Row], n.Row, n.Distance))
	}

	logger.Info("Returning %d recommendations", len(results))
	return results, nil
}
