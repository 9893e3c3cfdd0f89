package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/schedule-engine/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad_OverridesDefaults(t *testing.T) {
	// GIVEN a config file that overrides addr and log level
	path := writeConfig(t, `
addr: ":9090"
dbPath: "/var/lib/schedule.db"
logLevel: debug
`)

	// WHEN it is loaded
	cfg, err := config.Load(path)
	require.NoError(t, err)

	// THEN the file values win and untouched fields keep their defaults
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "/var/lib/schedule.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.Default().AllowedOrigins, cfg.AllowedOrigins)
}

func TestLoad_RejectsBadLogLevel(t *testing.T) {
	path := writeConfig(t, `
addr: ":8080"
dbPath: "schedule.db"
logLevel: chatty
`)

	_, err := config.Load(path)

	assert.Error(t, err)
}

func TestLoad_RejectsMissingDBPath(t *testing.T) {
	path := writeConfig(t, `
addr: ":8080"
dbPath: ""
`)

	_, err := config.Load(path)

	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}

func TestLoad_AllowsWildcardOrigin(t *testing.T) {
	path := writeConfig(t, `
addr: ":8080"
dbPath: "schedule.db"
allowedOrigins: ["*"]
`)

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, config.Validate(config.Default()))
}
