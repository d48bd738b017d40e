package driving

import "github.com/custodia-labs/internrec/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves the effective settings: defaults, overlaid by the config file,
	// overlaid by environment variables.
	Get() (*domain.AppSettings, error)

	// Save persists application settings to the config file.
	Save(settings *domain.AppSettings) error

	// Set parses and persists a single setting by key (e.g. "recommender.neighbors").
	// An empty value removes the key from the config file.
	Set(key, value string) error

	// Explain returns every setting with its effective value and where it came from.
	Explain() ([]SettingEntry, error)

	// Keys returns the recognised setting keys.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ConfigPath returns the config file location.
	ConfigPath() string
}

// SettingSource names where an effective setting value came from.
type SettingSource string

// Setting sources, lowest precedence first.
const (
	SourceDefault SettingSource = "default"
	SourceConfig  SettingSource = "config"
	SourceEnv     SettingSource = "env"
)

// SettingEntry is one effective setting.
type SettingEntry struct {
	// Key is the config key, e.g. "output.format".
	Key string

	// Value is the effective value formatted as a string.
	Value string

	// Source is where the value came from.
	Source SettingSource

	// EnvVar is the environment variable that overrides the key.
	EnvVar string
}
