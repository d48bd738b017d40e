package driving

import (
	"context"

	"github.com/custodia-labs/internrec/internal/core/domain"
)

// BundleService exposes read-only information about the configured bundle.
type BundleService interface {
	// Inspect returns the bundle's metadata and counts without building the pipeline.
	Inspect(ctx context.Context) (*domain.BundleInfo, error)
}
