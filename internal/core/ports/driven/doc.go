// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - BundleStore: Fitted pipeline and reference table persistence (SQLite)
//   - PipelineBuilder: Builds a Vectorizer and VectorIndex from a loaded bundle
//   - Vectorizer: TF-IDF transform using fitted vocabulary and idf weights
//   - VectorIndex: Exact k-nearest-neighbour search over fitted vectors
//   - ConfigStore: Application configuration (TOML)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ListingSource: Raw listings for the keyword fallback. Without it a missing
//     bundle is a hard error.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
