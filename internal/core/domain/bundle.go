package domain

import (
	"fmt"
	"time"
)

// DefaultBundlePath is where the bundle is looked for, relative to the working directory.
const DefaultBundlePath = "internship_recommender.db"

// BundleFormatVersion is the schema version this build reads and writes.
const BundleFormatVersion = 1

// Metric names the distance function of the fitted nearest-neighbour index.
type Metric string

// Supported metrics.
const (
	// MetricCosine is 1 - cosine similarity.
	MetricCosine Metric = "cosine"

	// MetricEuclidean is the L2 distance.
	MetricEuclidean Metric = "euclidean"
)

// IsValid returns true if the metric is recognised.
func (m Metric) IsValid() bool {
	switch m {
	case MetricCosine, MetricEuclidean:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m Metric) String() string {
	return string(m)
}

// Norm names the row normalisation applied by the vectorizer.
type Norm string

// Supported norms.
const (
	NormL2   Norm = "l2"
	NormL1   Norm = "l1"
	NormNone Norm = "none"
)

// IsValid returns true if the norm is recognised.
func (n Norm) IsValid() bool {
	switch n {
	case NormL2, NormL1, NormNone:
		return true
	default:
		return false
	}
}

// VectorizerParams is the fitted state of the TF-IDF vectorizer.
type VectorizerParams struct {
	// Vocabulary maps a term to its feature index.
	Vocabulary map[string]int

	// IDF holds the inverse document frequency per feature index.
	IDF []float64

	// Lowercase folds the input before tokenising.
	Lowercase bool

	// SublinearTF replaces tf with 1 + ln(tf).
	SublinearTF bool

	// Norm is the row normalisation.
	Norm Norm
}

// Features returns the vector dimension produced by the vectorizer.
func (p VectorizerParams) Features() int {
	return len(p.IDF)
}

// DefaultVectorizerParams returns the defaults of the original pipeline's vectorizer.
func DefaultVectorizerParams() VectorizerParams {
	return VectorizerParams{
		Vocabulary: map[string]int{},
		Lowercase:  true,
		Norm:       NormL2,
	}
}

// IndexParams is the fitted state of the nearest-neighbour index.
type IndexParams struct {
	// Metric is the distance function.
	Metric Metric

	// Vectors holds one vector per listing, aligned with Bundle.Listings.
	Vectors [][]float32
}

// Bundle is a fitted pipeline plus the reference table it was fitted on.
type Bundle struct {
	Info       BundleInfo
	Vectorizer VectorizerParams
	Index      IndexParams

	// Columns is the reference table's column order.
	Columns []string

	// Listings are the reference rows, aligned with Index.Vectors.
	Listings []Record
}

// BundleInfo describes a bundle without its vectors.
type BundleInfo struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	FormatVersion  int       `json:"format_version"`
	Metric         Metric    `json:"metric"`
	Norm           Norm      `json:"norm"`
	VocabularySize int       `json:"vocabulary_size"`
	ListingCount   int       `json:"listing_count"`
	Columns        []string  `json:"columns"`
	Path           string    `json:"path,omitempty"`
}

// Validate checks that the fitted state and the reference table agree.
func (b *Bundle) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil bundle", ErrBundleInvalid)
	}
	if !b.Index.Metric.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedMetric, b.Index.Metric)
	}
	if !b.Vectorizer.Norm.IsValid() {
		return fmt.Errorf("%w: unknown norm %q", ErrBundleInvalid, b.Vectorizer.Norm)
	}

	features := b.Vectorizer.Features()
	if len(b.Vectorizer.Vocabulary) != features {
		return fmt.Errorf("%w: vocabulary has %d terms but %d idf weights",
			ErrBundleInvalid, len(b.Vectorizer.Vocabulary), features)
	}
	seen := make([]bool, features)
	for term, idx := range b.Vectorizer.Vocabulary {
		if idx < 0 || idx >= features || seen[idx] {
			return fmt.Errorf("%w: term %q has bad feature index %d", ErrBundleInvalid, term, idx)
		}
		seen[idx] = true
	}

	if len(b.Listings) != len(b.Index.Vectors) {
		return fmt.Errorf("%w: %d listings but %d vectors",
			ErrBundleInvalid, len(b.Listings), len(b.Index.Vectors))
	}
	for i, v := range b.Index.Vectors {
		if len(v) != features {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d",
				ErrBundleInvalid, i, len(v), features)
		}
	}
	for i, l := range b.Listings {
		if len(l.Values) != len(b.Columns) {
			return fmt.Errorf("%w: listing %d has %d fields for %d columns",
				ErrBundleInvalid, i, len(l.Values), len(b.Columns))
		}
	}
	return nil
}

// Describe fills the counts of Info from the bundle's contents.
func (b *Bundle) Describe() BundleInfo {
	info := b.Info
	info.Metric = b.Index.Metric
	info.Norm = b.Vectorizer.Norm
	info.VocabularySize = b.Vectorizer.Features()
	info.ListingCount = len(b.Listings)
	info.Columns = append([]string(nil), b.Columns...)
	if info.FormatVersion == 0 {
		info.FormatVersion = BundleFormatVersion
	}
	return info
}
