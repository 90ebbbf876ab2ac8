package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Encoder  EncoderConfig
	Store    StoreConfig
	Migrate  MigrateConfig
	Defaults DefaultsConfig
}

type EncoderConfig struct {
	URL string // face encoding service base URL (e.g. http://localhost:8000)
}

type StoreConfig struct {
	SnapshotPath string // path to the face store snapshot file
}

type MigrateConfig struct {
	Driver string // sql driver: "mysql" or "postgres"
	DSN    string // source database connection string
	Query  string // optional override for the identity query
}

// DefaultsConfig holds tuning defaults shipped with the binary.
type DefaultsConfig struct {
	Matching struct {
		Tolerance float64 `yaml:"tolerance"`
	} `yaml:"matching"`
	Encoder struct {
		TimeoutSeconds int `yaml:"timeout_seconds"`
		MaxImageSize   int `yaml:"max_image_size"`
	} `yaml:"encoder"`
	Migrate struct {
		DownloadTimeoutSeconds int `yaml:"download_timeout_seconds"`
	} `yaml:"migrate"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString reads an environment variable with a fallback default.
func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	var defaults DefaultsConfig
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	cfg := &Config{
		Encoder: EncoderConfig{
			URL: os.Getenv("ENCODER_URL"),
		},
		Store: StoreConfig{
			SnapshotPath: envString("FACE_STORE_PATH", "face_store.snapshot"),
		},
		Migrate: MigrateConfig{
			Driver: envString("MIGRATE_DB_DRIVER", "mysql"),
			DSN:    os.Getenv("MIGRATE_DB_DSN"),
			Query:  os.Getenv("MIGRATE_QUERY"),
		},
		Defaults: defaults,
	}

	cfg.Defaults.Encoder.TimeoutSeconds = envInt("ENCODER_TIMEOUT_SECONDS", cfg.Defaults.Encoder.TimeoutSeconds)
	return cfg
}
