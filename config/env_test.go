package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnvOverrides_ScalarFields(t *testing.T) {
	os.Setenv("APP_REPOSITORY__MEMORY_DB", "true")
	os.Setenv("APP_REPOSITORY__POSTGRESQL_URL", "postgres://test")
	os.Setenv("APP_CONFIRMATION_CHECKER__CHECK_INTERVAL_SECS", "45")
	defer os.Unsetenv("APP_REPOSITORY__MEMORY_DB")
	defer os.Unsetenv("APP_REPOSITORY__POSTGRESQL_URL")
	defer os.Unsetenv("APP_CONFIRMATION_CHECKER__CHECK_INTERVAL_SECS")

	cfg := Default()
	require.NoError(t, applyEnvOverrides(cfg))

	assert.True(t, cfg.Repository.MemoryDB)
	assert.Equal(t, "postgres://test", cfg.Repository.PostgresqlURL)
	assert.Equal(t, 45, cfg.ConfirmationChecker.CheckIntervalSecs)
}

func TestApplyEnvOverrides_MapField(t *testing.T) {
	os.Setenv("APP_BLOCKCHAIN__ETH__START_BLOCK", "100")
	defer os.Unsetenv("APP_BLOCKCHAIN__ETH__START_BLOCK")

	cfg := Default()
	cfg.Blockchain["ETH"] = ChainConfig{Api: "http://localhost"}
	require.NoError(t, applyEnvOverrides(cfg))

	assert.Equal(t, uint64(100), cfg.Blockchain["ETH"].StartBlock)
}

func TestApplyEnvOverrides_UnsetVarLeavesDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, applyEnvOverrides(cfg))
	assert.Equal(t, DefaultKVBackend, cfg.Repository.KVBackend)
}

func TestApplyEnvOverrides_InvalidBoolReturnsError(t *testing.T) {
	os.Setenv("APP_REPOSITORY__MEMORY_DB", "not-a-bool")
	defer os.Unsetenv("APP_REPOSITORY__MEMORY_DB")

	cfg := Default()
	err := applyEnvOverrides(cfg)
	assert.Error(t, err)
}

func TestEnvVarName(t *testing.T) {
	assert.Equal(t, "APP_REPOSITORY__MEMORY_DB", envVarName([]string{"repository", "memory_db"}))
}
