// Package cli implements the internrec command line.
//
// The root command is the recommender itself:
//
//	internrec <sector> <location> <tech>
//
// It prints the nearest listings as a single line of JSON on stdout. Diagnostics
// go to stderr and only with --verbose.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/internrec/internal/core/domain"
	"github.com/custodia-labs/internrec/internal/core/ports/driving"
	"github.com/custodia-labs/internrec/internal/logger"
)

// version is set at build time via -ldflags "-X .../cli.version=...".
var version = "dev"

// ServiceFactory builds services once flags are parsed.
type ServiceFactory interface {
	// Settings returns the settings service for configDir ("" for ~/.internrec).
	Settings(configDir string) (driving.SettingsService, error)

	// Recommender returns the services bound to resolved recommender settings.
	Recommender(settings domain.RecommenderSettings) (driving.RecommendService, driving.BundleService)
}

var factory ServiceFactory

// Services resolved in PersistentPreRunE.
var (
	settingsService  driving.SettingsService
	recommendService driving.RecommendService
	bundleService    driving.BundleService
	outputFormat     domain.OutputFormat
)

// Flags.
var (
	verbose     bool
	configDir   string
	bundlePath  string
	neighbors   int
	fallbackCSV string
	formatFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "internrec <sector> <location> <tech>",
	Short: "Recommend internships from a fitted bundle",
	Long: `internrec recommends internship listings similar to a sector, location
and technology.

The three arguments are joined into a query (the location counts three times),
vectorized with the bundle's fitted TF-IDF vocabulary and matched against every
listing in the bundle. The nearest listings are printed as a JSON array, each
with its original columns plus "similarity" (1 - distance).

Settings are read from flags, then INTERNREC_* environment variables (a .env
file in the working directory is honoured), then ~/.internrec/config.toml.`,
	Example: `  internrec fintech Berlin Python
  internrec "data science" Pune "Python, SQL" --neighbors 10 --format table`,
	Args:              cobra.ExactArgs(3),
	PersistentPreRunE: setupServices,
	RunE:              runRecommend,
	SilenceUsage:      true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline stages to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.internrec)")
	rootCmd.PersistentFlags().StringVar(&bundlePath, "bundle", domain.DefaultBundlePath, "bundle file")

	rootCmd.Flags().IntVarP(&neighbors, "neighbors", "k", domain.DefaultNeighbors, "number of listings to return")
	rootCmd.Flags().StringVar(&fallbackCSV, "fallback-csv", "", "listings CSV used when the bundle cannot be loaded")
	rootCmd.Flags().StringVar(&formatFlag, "format", string(domain.OutputFormatJSON), "output format: json or table")

	// Sectors are free text. Keep cobra's help and completion subcommands from
	// claiming them; --help still works.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
}

// SetFactory injects the service factory. Must be called before Execute.
func SetFactory(f ServiceFactory) {
	factory = f
}

// SetVersion overrides the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setupSettings enables logging and builds the settings service.
func setupSettings(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if factory == nil {
		return errors.New("service factory not configured")
	}

	var err error
	settingsService, err = factory.Settings(configDir)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	return nil
}

// setupServices resolves settings (flag > env > config > default) and builds services.
func setupServices(cmd *cobra.Command, args []string) error {
	if err := setupSettings(cmd, args); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if err := applyFlags(cmd, settings); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	logger.Debug("Config: %s", settingsService.ConfigPath())
	logger.Debug("Bundle: %s, neighbors: %d, fallback: %q, format: %s",
		settings.Recommender.BundlePath, settings.Recommender.Neighbors,
		settings.Recommender.FallbackCSV, settings.Output.Format)

	outputFormat = settings.Output.Format
	recommendService, bundleService = factory.Recommender(settings.Recommender)
	return nil
}

// applyFlags overrides settings with flags the user set explicitly.
func applyFlags(cmd *cobra.Command, settings *domain.AppSettings) error {
	flags := cmd.Flags()
	if flags.Changed("bundle") {
		settings.Recommender.BundlePath = bundlePath
	}
	if flags.Changed("neighbors") {
		settings.Recommender.Neighbors = neighbors
	}
	if flags.Changed("fallback-csv") {
		settings.Recommender.FallbackCSV = fallbackCSV
	}
	if flags.Changed("format") {
		f := domain.OutputFormat(formatFlag)
		if !f.IsValid() {
			return fmt.Errorf("%w: unknown output format %q (want json or table)", domain.ErrInvalidInput, formatFlag)
		}
		settings.Output.Format = f
	}
	return nil
}

func runRecommend(cmd *cobra.Command, args []string) error {
	if recommendService == nil {
		return errors.New("recommend service not configured")
	}

	query := domain.Query{Sector: args[0], Location: args[1], Tech: args[2]}

	results, err := recommendService.Recommend(context.Background(), query)
	if err != nil {
		return fmt.Errorf("recommendation failed: %w", err)
	}

	if outputFormat == domain.OutputFormatTable {
		return writeTable(cmd.OutOrStdout(), results)
	}
	return writeJSON(cmd.OutOrStdout(), results)
}
