package driven

import (
	"context"

	"github.com/custodia-labs/internrec/internal/core/domain"
)

// ListingSource provides raw listings for the keyword fallback recommender.
type ListingSource interface {
	// Listings returns every listing in source order.
	Listings(ctx context.Context) ([]domain.Record, error)
}
