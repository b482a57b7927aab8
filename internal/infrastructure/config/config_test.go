package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/infrastructure/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	// Arrange
	path := writeConfig(t, "")

	// Act
	cfg, err := config.LoadConfig(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "planner.db", cfg.Database.Path)
	assert.Equal(t, 500, cfg.Planner.MaxIterations)
	assert.Equal(t, 1e-9, cfg.Planner.Epsilon)
	assert.Equal(t, "waste", cfg.Planner.Cost.Strategy)
	assert.Equal(t, 100.0, cfg.Planner.Cost.Penalties["biomass"])
	assert.Equal(t, 30*time.Second, cfg.Daemon.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfig_FileValues(t *testing.T) {
	path := writeConfig(t, `
planner:
  catalog: recipes.yaml
  max_iterations: 200
  cost:
    strategy: uniform
    penalties:
      element:water: 5
logging:
  level: debug
  format: json
server:
  address: 0.0.0.0:7000
  rate_limit:
    requests: 3
    burst: 6
`)

	cfg, err := config.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "recipes.yaml", cfg.Planner.Catalog)
	assert.Equal(t, 200, cfg.Planner.MaxIterations)
	assert.Equal(t, "uniform", cfg.Planner.Cost.Strategy)
	assert.Equal(t, 5.0, cfg.Planner.Cost.Penalties["element:water"])
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "0.0.0.0:7000", cfg.Server.Address)
	assert.Equal(t, 3, cfg.Server.RateLimit.Requests)
}

func TestLoadConfig_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "planner:\n  max_iterations: 200\n")
	t.Setenv("PLANNER_PLANNER_MAX_ITERATIONS", "42")
	t.Setenv("PLANNER_LOGGING_LEVEL", "warn")

	cfg, err := config.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Planner.MaxIterations)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadConfig_DatabaseURLSelectsPostgres(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("DATABASE_URL", "postgresql://planner:secret@db:5432/planner")

	cfg, err := config.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "postgresql://planner:secret@db:5432/planner", cfg.Database.URL)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown log level", "logging:\n  level: loud\n", "Level"},
		{"file output without path", "logging:\n  output: file\n", "FilePath"},
		{"unknown cost strategy", "planner:\n  cost:\n    strategy: cheapest\n", "Strategy"},
		{"bad penalty reference", "planner:\n  cost:\n    penalties:\n      plasma:x: 1\n", "resource_ref"},
		{"negative penalty", "planner:\n  cost:\n    penalties:\n      ore: -1\n", "gte"},
		{"negative iterations", "planner:\n  max_iterations: -5\n", "MaxIterations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)

			_, err := config.LoadConfig(path)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfigOrDefault_FallsBackOnError(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: loud\n")

	cfg := config.LoadConfigOrDefault(path)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 500, cfg.Planner.MaxIterations)
}

func TestUserConfigHandler_RoundTrip(t *testing.T) {
	// Arrange
	handler := config.NewUserConfigHandlerAt(filepath.Join(t.TempDir(), "nested", "config.json"))

	// Act
	empty, err := handler.Load()
	require.NoError(t, err)
	require.NoError(t, handler.SetDefaultCatalog("catalog.yaml"))
	require.NoError(t, handler.SetDefaultOutput("json"))
	loaded, err := handler.Load()

	// Assert
	require.NoError(t, err)
	assert.Empty(t, empty.DefaultCatalog)
	assert.True(t, filepath.IsAbs(loaded.DefaultCatalog))
	assert.Equal(t, "json", loaded.DefaultOutput)
	assert.Error(t, handler.SetDefaultOutput("xml"))

	require.NoError(t, handler.Clear())
	cleared, err := handler.Load()
	require.NoError(t, err)
	assert.Empty(t, cleared.DefaultCatalog)
}
