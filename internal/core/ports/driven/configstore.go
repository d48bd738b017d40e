package driven

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files). Values come back as
// decoded: TOML integers are int64, values set in this process keep their type.
// Keys use dot notation for nested tables, e.g. "recommender.bundle_path".
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Delete removes a configuration value and persists the change.
	// Deleting a missing key is not an error.
	Delete(key string) error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
