package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/internrec/internal/core/domain"
	"github.com/custodia-labs/internrec/internal/core/ports/driven"
	"github.com/custodia-labs/internrec/internal/core/ports/driving"
)

// Ensure BundleService implements the interface.
var _ driving.BundleService = (*BundleService)(nil)

// BundleService reports on the configured bundle.
type BundleService struct {
	bundles driven.BundleStore
}

// NewBundleService creates a new bundle service.
func NewBundleService(bundles driven.BundleStore) *BundleService {
	return &BundleService{bundles: bundles}
}

// Inspect returns the bundle's metadata and counts.
func (s *BundleService) Inspect(ctx context.Context) (*domain.BundleInfo, error) {
	info, err := s.bundles.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("inspecting bundle: %w", err)
	}
	return info, nil
}
