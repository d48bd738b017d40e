// Package domain defines the core business entities for internrec.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Query: The sector/location/technology triple a user asks about
//   - Record: One row of the bundle's reference table of internships
//   - Recommendation: A record plus its distance and similarity to the query
//   - Bundle: The fitted vectorizer, fitted index and reference table
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
