package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"datasynth/adapters/rng"
	"datasynth/internal/errors"
	"datasynth/internal/synth"

	"github.com/joho/godotenv"
)

// Environment variable names
const (
	EnvOutput    = "DATASYNTH_OUTPUT"
	EnvSeed      = "DATASYNTH_SEED"
	EnvRows      = "DATASYNTH_ROWS"
	EnvAlgorithm = "DATASYNTH_ALGORITHM"
	EnvFormat    = "DATASYNTH_FORMAT"
	EnvManifest  = "DATASYNTH_MANIFEST"
	EnvLedgerDSN = "DATASYNTH_LEDGER_DSN"
	EnvAddr      = "DATASYNTH_ADDR"
	EnvLogLevel  = "LOG_LEVEL"
)

// Config represents the complete application configuration
type Config struct {
	Synthesis SynthesisConfig
	Ledger    LedgerConfig
	Server    ServerConfig
	Log       LogConfig
}

// SynthesisConfig holds the parameters of one synthesis run
type SynthesisConfig struct {
	Output    string
	Seed      int64
	Rows      int
	Algorithm string
	Format    string // empty: infer from Output
	Manifest  bool
}

// LedgerConfig points at the Postgres database runs are recorded in.
// An empty DSN disables the ledger.
type LedgerConfig struct {
	DSN string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	gen := synth.DefaultConfig()
	return &Config{
		Synthesis: SynthesisConfig{
			Output:    "data.csv",
			Seed:      gen.Seed,
			Rows:      gen.Rows,
			Algorithm: gen.Algorithm,
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "INFO"},
	}
}

// LoadDotEnv loads variables from the given .env files (default ".env") without
// overriding ones already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Wrapf(errors.WithCode(errors.CodeConfigInvalid, err), "failed to load %s", f)
		}
	}
	return nil
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := Default()

	synthesis, err := loadSynthesisConfig(config.Synthesis)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load synthesis configuration")
	}
	config.Synthesis = *synthesis
	config.Ledger.DSN = getEnvOrDefault(EnvLedgerDSN, config.Ledger.DSN)
	config.Server.Addr = getEnvOrDefault(EnvAddr, config.Server.Addr)
	config.Log.Level = getEnvOrDefault(EnvLogLevel, config.Log.Level)

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadSynthesisConfig(defaults SynthesisConfig) (*SynthesisConfig, error) {
	seed, err := getEnvInt64OrDefault(EnvSeed, defaults.Seed)
	if err != nil {
		return nil, err
	}
	rows, err := getEnvIntOrDefault(EnvRows, defaults.Rows)
	if err != nil {
		return nil, err
	}
	manifest, err := getEnvBoolOrDefault(EnvManifest, defaults.Manifest)
	if err != nil {
		return nil, err
	}

	return &SynthesisConfig{
		Output:    getEnvOrDefault(EnvOutput, defaults.Output),
		Seed:      seed,
		Rows:      rows,
		Algorithm: strings.ToLower(getEnvOrDefault(EnvAlgorithm, defaults.Algorithm)),
		Format:    strings.ToLower(getEnvOrDefault(EnvFormat, defaults.Format)),
		Manifest:  manifest,
	}, nil
}

// Validate checks values that no run could succeed with
func (c *Config) Validate() error {
	s := c.Synthesis
	if strings.TrimSpace(s.Output) == "" {
		return errors.ConfigInvalid("output path is required")
	}
	if s.Rows <= 0 {
		return errors.ConfigInvalid(fmt.Sprintf("rows must be > 0, got %d", s.Rows))
	}
	if !rng.IsKnownAlgorithm(s.Algorithm) {
		return errors.ConfigInvalid(fmt.Sprintf("unknown algorithm %q", s.Algorithm))
	}
	if _, err := synth.InferFormat(s.Output, s.Format); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

// Helper functions for environment variable parsing. Set but malformed values
// are errors rather than silently falling back.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", key, value))
	}
	return intValue, nil
}

func getEnvInt64OrDefault(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s must be an integer, got %q", key, value))
	}
	return intValue, nil
}

func getEnvBoolOrDefault(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.ConfigInvalid(fmt.Sprintf("%s must be a boolean, got %q", key, value))
	}
	return boolValue, nil
}
