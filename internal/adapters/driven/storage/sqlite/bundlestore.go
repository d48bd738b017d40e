package sqlite

import (
	"context"

	"github.com/custodia-labs/internrec/internal/core/domain"
	"github.com/custodia-labs/internrec/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.BundleStore = (*BundleStore)(nil)

// BundleStore implements driven.BundleStore over a bundle file path.
// Each call opens the file and closes it on return, so a bundle replaced
// between runs is always read fresh.
type BundleStore struct {
	path string
}

// NewBundleStore creates a store for the bundle at path.
func NewBundleStore(path string) *BundleStore {
	return &BundleStore{path: path}
}

// Path returns the bundle file path.
func (b *BundleStore) Path() string {
	return b.path
}

// Load reads and validates the bundle.
func (b *BundleStore) Load(ctx context.Context) (*domain.Bundle, error) {
	s, err := Open(b.path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Load(ctx)
}

// Info reads the bundle metadata and counts.
func (b *BundleStore) Info(ctx context.Context) (*domain.BundleInfo, error) {
	s, err := Open(b.path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Info(ctx)
}

// Save writes the bundle, creating the file if needed.
func (b *BundleStore) Save(ctx context.Context, bundle *domain.Bundle) error {
	s, err := Create(b.path)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Save(ctx, bundle)
}
