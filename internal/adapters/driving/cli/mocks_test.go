package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/internrec/internal/core/domain"
	"github.com/custodia-labs/internrec/internal/core/ports/driving"
	"github.com/custodia-labs/internrec/internal/logger"
)

// mockFactory implements ServiceFactory for testing.
type mockFactory struct {
	settings    *mockSettingsService
	recommend   *mockRecommendService
	bundle      *mockBundleService
	settingsErr error

	gotConfigDir   string
	gotRecommender *domain.RecommenderSettings
}

func (m *mockFactory) Settings(configDir string) (driving.SettingsService, error) {
	m.gotConfigDir = configDir
	if m.settingsErr != nil {
		return nil, m.settingsErr
	}
	return m.settings, nil
}

func (m *mockFactory) Recommender(settings domain.RecommenderSettings) (driving.RecommendService, driving.BundleService) {
	m.gotRecommender = &settings
	return m.recommend, m.bundle
}

// mockRecommendService implements driving.RecommendService for testing.
type mockRecommendService struct {
	results   []domain.Recommendation
	err       error
	lastQuery domain.Query
}

func (m *mockRecommendService) Recommend(_ context.Context, query domain.Query) ([]domain.Recommendation, error) {
	m.lastQuery = query
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// mockBundleService implements driving.BundleService for testing.
type mockBundleService struct {
	info *domain.BundleInfo
	err  error
}

func (m *mockBundleService) Inspect(_ context.Context) (*domain.BundleInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.info, nil
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings   domain.AppSettings
	entries    []driving.SettingEntry
	getErr     error
	setErr     error
	setCalls   map[string]string
	configPath string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings:   domain.DefaultAppSettings(),
		setCalls:   make(map[string]string),
		configPath: "/home/test/.internrec/config.toml",
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.setCalls[key] = value
	return nil
}

func (m *mockSettingsService) Explain() ([]driving.SettingEntry, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.entries, nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"recommender.bundle_path", "recommender.neighbors", "recommender.fallback_csv", "output.format"}
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ConfigPath() string {
	return m.configPath
}

// setupTestServices installs a factory backed by mocks and returns it.
func setupTestServices(t *testing.T) *mockFactory {
	t.Helper()

	f := &mockFactory{
		settings:  newMockSettingsService(),
		recommend: &mockRecommendService{},
		bundle:    &mockBundleService{},
	}
	SetFactory(f)
	t.Cleanup(func() {
		factory = nil
		settingsService = nil
		recommendService = nil
		bundleService = nil
		outputFormat = ""
		logger.SetVerbose(false)
	})
	return f
}

// resetFlags restores every flag to its default so tests do not leak into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCommand runs the root command with args and returns stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	resetFlags(rootCmd)
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// testRecommendations returns n recommendations with descending similarity.
func testRecommendations(n int) []domain.Recommendation {
	columns := []string{"title", "company", "location", "stipend"}
	recs := make([]domain.Recommendation, n)
	for i := range recs {
		record := domain.Record{
			Columns: columns,
			Values:  []any{"Intern " + string(rune('A'+i)), "Acme", "Berlin", int64(1000 * (i + 1))},
		}
		recs[i] = domain.NewRecommendation(record, i, 0.1*float64(i+1))
	}
	return recs
}
