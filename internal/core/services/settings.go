package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/internrec/internal/core/domain"
	"github.com/custodia-labs/internrec/internal/core/ports/driven"
	"github.com/custodia-labs/internrec/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyBundlePath  = "recommender.bundle_path"
	KeyNeighbors   = "recommender.neighbors"
	KeyFallbackCSV = "recommender.fallback_csv"
	KeyFormat      = "output.format"
)

// Environment variables overriding the config file.
const (
	EnvBundlePath  = "INTERNREC_BUNDLE"
	EnvNeighbors   = "INTERNREC_NEIGHBORS"
	EnvFallbackCSV = "INTERNREC_FALLBACK_CSV"
	EnvFormat      = "INTERNREC_FORMAT"
)

// setting binds a config key and environment variable to a field of AppSettings.
type setting struct {
	key    string
	env    string
	apply  func(s *domain.AppSettings, value string) error
	format func(s domain.AppSettings) string
	// store converts a validated value to the type persisted in the config file.
	store func(value string) any
}

var settingDefs = []setting{
	{
		key: KeyBundlePath,
		env: EnvBundlePath,
		apply: func(s *domain.AppSettings, v string) error {
			s.Recommender.BundlePath = v
			return nil
		},
		format: func(s domain.AppSettings) string { return s.Recommender.BundlePath },
		store:  func(v string) any { return v },
	},
	{
		key: KeyNeighbors,
		env: EnvNeighbors,
		apply: func(s *domain.AppSettings, v string) error {
			n, err := parseNeighbors(v)
			if err != nil {
				return err
			}
			s.Recommender.Neighbors = n
			return nil
		},
		format: func(s domain.AppSettings) string { return strconv.Itoa(s.Recommender.Neighbors) },
		store: func(v string) any {
			n, _ := parseNeighbors(v)
			return n
		},
	},
	{
		key: KeyFallbackCSV,
		env: EnvFallbackCSV,
		apply: func(s *domain.AppSettings, v string) error {
			s.Recommender.FallbackCSV = v
			return nil
		},
		format: func(s domain.AppSettings) string { return s.Recommender.FallbackCSV },
		store:  func(v string) any { return v },
	},
	{
		key: KeyFormat,
		env: EnvFormat,
		apply: func(s *domain.AppSettings, v string) error {
			f, err := ParseOutputFormat(v)
			if err != nil {
				return err
			}
			s.Output.Format = f
			return nil
		},
		format: func(s domain.AppSettings) string { return s.Output.Format.String() },
		store:  func(v string) any { return strings.ToLower(strings.TrimSpace(v)) },
	},
}

// ParseOutputFormat parses an output format name, ignoring case.
func ParseOutputFormat(v string) (domain.OutputFormat, error) {
	f := domain.OutputFormat(strings.ToLower(strings.TrimSpace(v)))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: unknown output format %q (want json or table)", domain.ErrInvalidInput, v)
	}
	return f, nil
}

func parseNeighbors(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: neighbors must be a positive integer, got %q", domain.ErrInvalidInput, v)
	}
	return n, nil
}

// SettingsService resolves settings from defaults, the config store and the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service reading the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves the effective application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings, _, err := s.resolve()
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// Explain returns each setting's effective value and source.
func (s *SettingsService) Explain() ([]driving.SettingEntry, error) {
	settings, sources, err := s.resolve()
	if err != nil {
		return nil, err
	}

	entries := make([]driving.SettingEntry, 0, len(settingDefs))
	for _, def := range settingDefs {
		entries = append(entries, driving.SettingEntry{
			Key:    def.key,
			Value:  def.format(*settings),
			Source: sources[def.key],
			EnvVar: def.env,
		})
	}
	return entries, nil
}

// resolve applies config values then environment values over the defaults.
func (s *SettingsService) resolve() (*domain.AppSettings, map[string]driving.SettingSource, error) {
	settings := domain.DefaultAppSettings()
	sources := make(map[string]driving.SettingSource, len(settingDefs))

	for _, def := range settingDefs {
		sources[def.key] = driving.SourceDefault

		if v, ok := s.configValue(def.key); ok {
			if err := def.apply(&settings, v); err != nil {
				return nil, nil, fmt.Errorf("config %s: %w", def.key, err)
			}
			sources[def.key] = driving.SourceConfig
		}

		if v, ok := s.lookupEnv(def.env); ok && v != "" {
			if err := def.apply(&settings, v); err != nil {
				return nil, nil, fmt.Errorf("env %s: %w", def.env, err)
			}
			sources[def.key] = driving.SourceEnv
		}
	}

	return &settings, sources, nil
}

// configValue returns a config value formatted as a string. Empty strings count as unset.
func (s *SettingsService) configValue(key string) (string, bool) {
	raw, ok := s.configStore.Get(key)
	if !ok {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return v, v != ""
	case int64:
		return strconv.FormatInt(v, 10), true
	case int:
		return strconv.Itoa(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return fmt.Sprint(v), true
	}
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	for _, def := range settingDefs {
		if err := s.Set(def.key, def.format(*settings)); err != nil {
			return fmt.Errorf("save %s: %w", def.key, err)
		}
	}
	return nil
}

// Set validates and persists a single setting.
func (s *SettingsService) Set(key, value string) error {
	def, ok := lookupSetting(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q (known: %s)",
			domain.ErrInvalidInput, key, strings.Join(s.Keys(), ", "))
	}

	if value == "" {
		return s.configStore.Delete(key)
	}

	scratch := domain.DefaultAppSettings()
	if err := def.apply(&scratch, value); err != nil {
		return err
	}
	return s.configStore.Set(key, def.store(value))
}

// Keys returns the recognised setting keys.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingDefs))
	for i, def := range settingDefs {
		keys[i] = def.key
	}
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ConfigPath returns the config file location.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

func lookupSetting(key string) (setting, bool) {
	for _, def := range settingDefs {
		if def.key == key {
			return def, true
		}
	}
	return setting{}, false
}
