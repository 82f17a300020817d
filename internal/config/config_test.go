package config

import (
	"os"
	"path/filepath"
	"testing"

	"datasynth/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvOutput, EnvSeed, EnvRows, EnvAlgorithm, EnvFormat, EnvManifest, EnvLedgerDSN, EnvAddr, EnvLogLevel} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "data.csv", cfg.Synthesis.Output)
	assert.Equal(t, int64(0), cfg.Synthesis.Seed)
	assert.Equal(t, 100, cfg.Synthesis.Rows)
	assert.Equal(t, "mt19937", cfg.Synthesis.Algorithm)
	assert.Equal(t, "", cfg.Synthesis.Format)
	assert.False(t, cfg.Synthesis.Manifest)
	assert.Equal(t, "", cfg.Ledger.DSN)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "INFO", cfg.Log.Level)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvOutput, "out/table.xlsx")
	t.Setenv(EnvSeed, "1234")
	t.Setenv(EnvRows, "250")
	t.Setenv(EnvAlgorithm, "GO")
	t.Setenv(EnvManifest, "true")
	t.Setenv(EnvLedgerDSN, "postgres://localhost/datasynth?sslmode=disable")
	t.Setenv(EnvAddr, "127.0.0.1:9000")
	t.Setenv(EnvLogLevel, "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "out/table.xlsx", cfg.Synthesis.Output)
	assert.Equal(t, int64(1234), cfg.Synthesis.Seed)
	assert.Equal(t, 250, cfg.Synthesis.Rows)
	assert.Equal(t, "go", cfg.Synthesis.Algorithm)
	assert.True(t, cfg.Synthesis.Manifest)
	assert.Equal(t, "postgres://localhost/datasynth?sslmode=disable", cfg.Ledger.DSN)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvRows, "0"},
		{EnvRows, "many"},
		{EnvSeed, "1.5"},
		{EnvAlgorithm, "pcg64"},
		{EnvFormat, "parquet"},
		{EnvManifest, "sometimes"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	unset := func() {
		os.Unsetenv(EnvRows)
		os.Unsetenv(EnvSeed)
	}
	unset()
	t.Cleanup(unset)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DATASYNTH_ROWS=12\nDATASYNTH_SEED=9\n"), 0o644))

	require.NoError(t, LoadDotEnv(path))
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Synthesis.Rows)
	assert.Equal(t, int64(9), cfg.Synthesis.Seed)
}

func TestLoadDotEnvMissingFileIsIgnored(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
