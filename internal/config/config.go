// Package config loads and validates shopkeeper YAML configuration.
// It applies defaults so callers can rely on fully populated values.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Users backend selectors.
const (
	BackendRemote = "remote"
	BackendLocal  = "local"
)

// APIConfig holds the storefront endpoint settings.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	InsecureTLS    bool   `yaml:"insecure_tls"`
}

// CredentialsConfig holds the durable credential store settings.
type CredentialsConfig struct {
	Path string `yaml:"path"`
}

// UsersConfig selects the user directory backend.
type UsersConfig struct {
	Backend string `yaml:"backend"`
	Seed    string `yaml:"seed"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Config mirrors the shopkeeper.yaml schema.
type Config struct {
	API         APIConfig         `yaml:"api"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Users       UsersConfig       `yaml:"users"`
	Log         LogConfig         `yaml:"log"`
}

// Load reads a YAML config file, applies defaults, and validates it.
// An empty path yields the pure defaults.
func Load(path string) (Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, err
		}
	}
	applyDefaults(&c)
	if err := validate(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// applyDefaults populates zero-values with sane defaults.
func applyDefaults(c *Config) {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "https://fakestoreapi.com"
	}
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = 20
	}
	if c.Credentials.Path == "" {
		c.Credentials.Path = defaultCredentialsPath()
	}
	if c.Users.Backend == "" {
		c.Users.Backend = BackendRemote
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// validate performs basic sanity checks. It does not mutate the config.
func validate(c *Config) error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.TimeoutSeconds < 1 || c.API.TimeoutSeconds > 600 {
		return errors.New("api.timeout_seconds is invalid")
	}
	if c.Credentials.Path == "" {
		return errors.New("credentials.path is required")
	}
	if c.Users.Backend != BackendRemote && c.Users.Backend != BackendLocal {
		return errors.New("users.backend must be \"remote\" or \"local\"")
	}
	if c.Users.Seed != "" && c.Users.Backend != BackendLocal {
		return errors.New("users.seed requires users.backend local")
	}
	return nil
}

// defaultCredentialsPath places the credential database under the user's
// config directory, falling back to the working directory.
func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "shopkeeper-credentials.db"
	}
	return filepath.Join(dir, "shopkeeper", "credentials.db")
}
