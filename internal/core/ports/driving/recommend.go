package driving

import (
	"context"

	"github.com/custodia-labs/internrec/internal/core/domain"
)

// RecommendService ranks reference internships against a query.
type RecommendService interface {
	// Recommend returns up to the configured number of listings closest to the query,
	// ordered by descending similarity.
	Recommend(ctx context.Context, query domain.Query) ([]domain.Recommendation, error)
}
