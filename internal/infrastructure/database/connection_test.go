package database_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/persistence"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/infrastructure/config"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/infrastructure/database"
)

func TestOpen_SQLiteFileCreatesDirectoryAndTables(t *testing.T) {
	// Arrange
	cfg := &config.DatabaseConfig{
		Type: "sqlite",
		Path: filepath.Join(t.TempDir(), "nested", "planner.db"),
	}

	// Act
	db, err := database.Open(cfg)

	// Assert
	require.NoError(t, err)
	defer database.Close(db)
	for _, model := range persistence.AllModels() {
		assert.True(t, db.Migrator().HasTable(model))
	}
}

func TestOpen_RejectsUnknownType(t *testing.T) {
	_, err := database.Open(&config.DatabaseConfig{Type: "mysql"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database type: mysql")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.DatabaseConfig
		expected string
	}{
		{"sqlite default is in memory", config.DatabaseConfig{Type: "sqlite"}, ":memory:"},
		{"sqlite file", config.DatabaseConfig{Type: "sqlite", Path: "/tmp/p.db"}, "/tmp/p.db"},
		{"postgres url wins", config.DatabaseConfig{Type: "postgres", URL: "postgresql://u@h/db", Host: "ignored"}, "postgresql://u@h/db"},
		{
			"postgres fields",
			config.DatabaseConfig{Type: "postgres", Host: "db", Port: 5432, User: "planner", Password: "pw", Name: "plans", SSLMode: "disable"},
			"host=db port=5432 user=planner password=pw dbname=plans sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.DSN())
		})
	}
}
