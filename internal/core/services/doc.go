// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// RecommendService answers queries from the fitted bundle, optionally falling
// back to KeywordRecommender when the bundle cannot be loaded.
package services
