package domain

import "fmt"

// DefaultNeighbors is the number of recommendations returned.
const DefaultNeighbors = 5

// OutputFormat selects how recommendations are printed.
type OutputFormat string

// Available output formats.
const (
	// OutputFormatJSON prints a single line JSON array.
	OutputFormatJSON OutputFormat = "json"

	// OutputFormatTable prints a human-readable table.
	OutputFormatTable OutputFormat = "table"
)

// IsValid returns true if the output format is recognised.
func (f OutputFormat) IsValid() bool {
	return f == OutputFormatJSON || f == OutputFormatTable
}

// String returns the string representation.
func (f OutputFormat) String() string {
	return string(f)
}

// RecommenderSettings configures where the bundle lives and how many results are returned.
type RecommenderSettings struct {
	// BundlePath is the bundle file, relative to the working directory unless absolute.
	BundlePath string

	// Neighbors is the number of nearest listings to return.
	Neighbors int

	// FallbackCSV is an optional listings CSV used when the bundle cannot be loaded.
	// Empty disables the fallback.
	FallbackCSV string
}

// HasFallback returns true if the keyword fallback is configured.
func (s RecommenderSettings) HasFallback() bool {
	return s.FallbackCSV != ""
}

// OutputSettings configures result rendering.
type OutputSettings struct {
	Format OutputFormat
}

// AppSettings holds all user-configurable settings.
type AppSettings struct {
	Recommender RecommenderSettings
	Output      OutputSettings
}

// DefaultAppSettings returns the settings used when nothing is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Recommender: RecommenderSettings{
			BundlePath: DefaultBundlePath,
			Neighbors:  DefaultNeighbors,
		},
		Output: OutputSettings{
			Format: OutputFormatJSON,
		},
	}
}

// Validate checks the settings for values the recommender cannot run with.
func (s AppSettings) Validate() error {
	if s.Recommender.BundlePath == "" {
		return fmt.Errorf("%w: bundle path is empty", ErrInvalidInput)
	}
	if s.Recommender.Neighbors <= 0 {
		return fmt.Errorf("%w: neighbors must be positive, got %d", ErrInvalidInput, s.Recommender.Neighbors)
	}
	if !s.Output.Format.IsValid() {
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidInput, s.Output.Format)
	}
	return nil
}
