package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/internrec/internal/core/domain"
	"github.com/custodia-labs/internrec/internal/core/ports/driven"
)

// Ensure BundleStore implements the interface.
var _ driven.BundleStore = (*BundleStore)(nil)

// BundleStore is an in-memory implementation of driven.BundleStore.
type BundleStore struct {
	mu     sync.RWMutex
	bundle *domain.Bundle
}

// NewBundleStore creates an empty in-memory bundle store.
func NewBundleStore() *BundleStore {
	return &BundleStore{}
}

// Load returns the saved bundle.
func (s *BundleStore) Load(_ context.Context) (*domain.Bundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bundle == nil {
		return nil, domain.ErrBundleNotFound
	}
	b := *s.bundle
	b.Info = b.Describe()
	return &b, nil
}

// Info returns the saved bundle's metadata.
func (s *BundleStore) Info(_ context.Context) (*domain.BundleInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bundle == nil {
		return nil, domain.ErrBundleNotFound
	}
	info := s.bundle.Describe()
	return &info, nil
}

// Save validates and stores the bundle.
func (s *BundleStore) Save(_ context.Context, bundle *domain.Bundle) error {
	if err := bundle.Validate(); err != nil {
		return err
	}
	if bundle.Info.ID == "" {
		bundle.Info.ID = uuid.New().String()
	}
	if bundle.Info.CreatedAt.IsZero() {
		bundle.Info.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b := *bundle
	s.bundle = &b
	return nil
}
