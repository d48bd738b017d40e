package driven

import (
	"context"

	"github.com/custodia-labs/internrec/internal/core/domain"
)

// BundleStore persists the fitted pipeline and reference table.
// Backed by a SQLite file; an in-memory implementation exists for tests.
type BundleStore interface {
	// Load reads and validates the full bundle.
	// Returns ErrBundleNotFound if there is no bundle, ErrBundleInvalid if it is inconsistent.
	Load(ctx context.Context) (*domain.Bundle, error)

	// Info reads the bundle metadata and counts without loading vectors.
	Info(ctx context.Context) (*domain.BundleInfo, error)

	// Save writes the bundle, replacing any previous contents.
	Save(ctx context.Context, bundle *domain.Bundle) error
}
