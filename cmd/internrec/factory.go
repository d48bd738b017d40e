package main

import (
	"github.com/custodia-labs/internrec/internal/adapters/driven/config/file"
	"github.com/custodia-labs/internrec/internal/adapters/driven/listings/csv"
	"github.com/custodia-labs/internrec/internal/adapters/driven/pipeline"
	"github.com/custodia-labs/internrec/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/internrec/internal/adapters/driving/cli"
	"github.com/custodia-labs/internrec/internal/core/domain"
	"github.com/custodia-labs/internrec/internal/core/ports/driving"
	"github.com/custodia-labs/internrec/internal/core/services"
)

// Ensure appFactory implements the interface.
var _ cli.ServiceFactory = (*appFactory)(nil)

// appFactory wires the production adapters into the core services.
type appFactory struct{}

func newAppFactory() *appFactory {
	return &appFactory{}
}

// Settings builds the settings service over the TOML config in configDir.
func (f *appFactory) Settings(configDir string) (driving.SettingsService, error) {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, err
	}
	return services.NewSettingsService(store), nil
}

// Recommender builds the recommend and bundle services for the resolved settings.
func (f *appFactory) Recommender(settings domain.RecommenderSettings) (driving.RecommendService, driving.BundleService) {
	bundles := sqlite.NewBundleStore(settings.BundlePath)

	var fallback driving.RecommendService
	if settings.HasFallback() {
		fallback = services.NewKeywordRecommender(csv.NewSource(settings.FallbackCSV), settings.Neighbors)
	}

	recommend := services.NewRecommendService(bundles, pipeline.NewBuilder(), fallback, settings.Neighbors)
	return recommend, services.NewBundleService(bundles)
}
