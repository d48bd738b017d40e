package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/internrec/internal/core/domain"
	"github.com/custodia-labs/internrec/internal/core/ports/driven"
)

// Ensure ListingSource implements the interface.
var _ driven.ListingSource = (*ListingSource)(nil)

// ListingSource is an in-memory implementation of driven.ListingSource.
type ListingSource struct {
	mu       sync.RWMutex
	listings []domain.Record
}

// NewListingSource creates a source serving the given listings.
func NewListingSource(listings ...domain.Record) *ListingSource {
	return &ListingSource{listings: listings}
}

// Add appends a listing.
func (s *ListingSource) Add(listing domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = append(s.listings, listing)
}

// Listings returns a copy of all listings in insertion order.
func (s *ListingSource) Listings(_ context.Context) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Record, len(s.listings))
	copy(result, s.listings)
	return result, nil
}
