// Package sqlite stores recommendation bundles in a single SQLite file.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. A bundle file holds:
//
//   - bundle_meta: bundle id, creation time, metric and vectorizer options
//   - bundle_columns: the reference table's column order
//   - vocabulary: fitted terms, feature indices and idf weights
//   - listings: reference rows (JSON arrays) and their fitted vectors (float32 BLOBs)
//
// # Schema
//
// The schema is managed through versioned migrations stored in the migrations/
// directory. The highest applied version must equal domain.BundleFormatVersion
// for a bundle to be readable.
//
// # Access Modes
//
// Open opens an existing bundle read-only; Create opens or creates one for writing.
// BundleStore wraps both behind driven.BundleStore, opening the file per call.
package sqlite
